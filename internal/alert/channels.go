package alert

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/wlin7245/remindly/internal/models"
)

// Notification is what the Notifier delivers for a fired alarm. One
// notification is live per reminder id; a later one replaces the earlier.
type Notification struct {
	ReminderID int
	UserID     int64
	Content    string
	Category   string
	Importance int
	Attempt    int
}

// Notifier posts the user-visible notification. This channel always runs,
// whatever the per-reminder channel toggles say.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Flasher runs a screen flash sequence.
type Flasher interface {
	Flash(ctx context.Context, plan FlashPlan) error
}

// Vibrator runs a vibration waveform.
type Vibrator interface {
	Vibrate(ctx context.Context, plan VibrationPlan) error
}

// Sounder plays an alert tone.
type Sounder interface {
	Play(ctx context.Context, cfg models.SoundConfig) error
}

// logDevice stands in for flash, vibration and sound hardware when no real
// device adapter is wired. It records the request and succeeds.
type logDevice struct{}

// NewLogDevice returns an adapter usable as Flasher, Vibrator and Sounder.
func NewLogDevice() interface {
	Flasher
	Vibrator
	Sounder
} {
	return logDevice{}
}

func (logDevice) Flash(_ context.Context, plan FlashPlan) error {
	log.Info().Str("color", plan.Color).Int("count", plan.Count).Msg("flash sequence")
	return nil
}

func (logDevice) Vibrate(_ context.Context, plan VibrationPlan) error {
	log.Info().Int("segments", len(plan.Waveform)).Str("intensity", string(plan.Intensity)).
		Msg("vibration sequence")
	return nil
}

func (logDevice) Play(_ context.Context, cfg models.SoundConfig) error {
	log.Info().Str("type", string(cfg.Type)).Float64("volume", cfg.Volume).Msg("alert tone")
	return nil
}
