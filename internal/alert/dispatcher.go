// Package alert turns fired alarm payloads into user-facing output: screen
// flash, vibration, sound, a notification and optional email fan-out. Every
// channel is isolated, a failing one is logged and the rest still run.
package alert

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wlin7245/remindly/internal/alarm"
	"github.com/wlin7245/remindly/internal/models"
)

// Emailer sends the email rendition of a fired reminder.
type Emailer interface {
	Send(ctx context.Context, snap models.Snapshot) error
}

// SeriesArmer re-arms the reserved series alarm slot.
type SeriesArmer interface {
	ArmSeries(snap models.Snapshot, at time.Time, attempt int)
}

// ReminderSource loads the current reminder row, used to check for an
// acknowledgement before re-arming a series.
type ReminderSource interface {
	GetByID(ctx context.Context, id int) (*models.Reminder, error)
}

const dispatchTimeout = 30 * time.Second

// Dispatcher fans one fired alarm out to all alert channels.
type Dispatcher struct {
	notifier  Notifier
	flasher   Flasher
	vibrator  Vibrator
	sounder   Sounder
	email     Emailer
	series    SeriesArmer
	reminders ReminderSource

	// One flash/vibrate/sound sequence runs at a time. The gate is plain
	// time-based state so a crashed sequence can never wedge it shut.
	mu        sync.Mutex
	busyUntil time.Time

	now func() time.Time
}

type DispatcherOption func(*Dispatcher)

// WithEmail enables email fan-out.
func WithEmail(e Emailer) DispatcherOption {
	return func(d *Dispatcher) { d.email = e }
}

// WithSeries enables repeat-until-acknowledged re-arming.
func WithSeries(armer SeriesArmer, src ReminderSource) DispatcherOption {
	return func(d *Dispatcher) {
		d.series = armer
		d.reminders = src
	}
}

// WithDispatcherClock overrides the time source.
func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(notifier Notifier, flasher Flasher, vibrator Vibrator, sounder Sounder, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		flasher:  flasher,
		vibrator: vibrator,
		sounder:  sounder,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HandleAlarm satisfies alarm.Handler. It never returns an error and never
// panics outward; per-channel failures are logged and swallowed.
func (d *Dispatcher) HandleAlarm(p alarm.Payload) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	snap, hasSnap := models.DecodeSnapshot(p.Snapshot)
	cfg := models.DefaultAlertConfig()
	if hasSnap {
		cfg = models.DecodeAlertConfig(snap.AlertConfig)
	}

	flash := FlashFor(p.TriggerKind)
	vib := VibrationFor(p.TriggerKind, cfg.Vibration)
	if cfg.Series.Escalation {
		flash, vib = Escalate(flash, vib, p.SeriesAttempt)
	}

	wantsSequence := p.Flash ||
		(p.Vibration && cfg.Vibration.Enabled) ||
		(p.Sound && cfg.Sound.Enabled)
	if wantsSequence {
		// A silent fire must not claim the gate.
		if d.acquire(flash.Total()) {
			if p.Flash {
				d.run("flash", func() error { return d.flasher.Flash(ctx, flash) })
			}
			if p.Vibration && cfg.Vibration.Enabled {
				d.run("vibration", func() error { return d.vibrator.Vibrate(ctx, vib) })
			}
			if p.Sound && cfg.Sound.Enabled {
				d.run("sound", func() error { return d.sounder.Play(ctx, cfg.Sound) })
			}
		} else {
			log.Debug().Int("reminder_id", p.ReminderID).Msg("alert sequence in flight, channels skipped")
		}
	}

	// The notification goes out regardless of the gate and the toggles.
	n := Notification{
		ReminderID: p.ReminderID,
		Content:    p.Content,
		Attempt:    p.SeriesAttempt,
	}
	if hasSnap {
		n.UserID = snap.UserID
		n.Category = snap.Category
		n.Importance = snap.Importance
	}
	d.run("notification", func() error { return d.notifier.Notify(ctx, n) })

	if hasSnap && d.email != nil {
		d.run("email", func() error { return d.email.Send(ctx, snap) })
	}

	if hasSnap {
		d.maybeArmSeries(ctx, snap, cfg.Series, p.SeriesAttempt)
	}
}

// run executes one channel, converting a panic or error into a log line so
// no channel can take down its siblings.
func (d *Dispatcher) run(channel string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("channel", channel).Msg("alert channel panicked")
		}
	}()
	if err := fn(); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("alert channel failed")
	}
}

// acquire claims the single in-flight sequence slot for the given duration.
// It reports false when another sequence is still running.
func (d *Dispatcher) acquire(total time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if now.Before(d.busyUntil) {
		return false
	}
	d.busyUntil = now.Add(total)
	return true
}

func (d *Dispatcher) maybeArmSeries(ctx context.Context, snap models.Snapshot, series models.AlertSeries, attempt int) {
	if d.series == nil || !series.Enabled {
		return
	}
	next := attempt + 1
	if next > series.MaxAttempts {
		log.Debug().Int("reminder_id", snap.ID).Msg("alert series exhausted")
		return
	}
	if series.StopOnAcknowledge && d.reminders != nil {
		r, err := d.reminders.GetByID(ctx, snap.ID)
		if err != nil {
			log.Warn().Err(err).Int("reminder_id", snap.ID).Msg("acknowledge check failed, re-arming anyway")
		} else if r == nil || !r.Active || r.AcknowledgedAt != nil {
			log.Debug().Int("reminder_id", snap.ID).Msg("alert series stopped")
			return
		}
	}
	d.series.ArmSeries(snap, d.now().Add(time.Duration(series.IntervalMinutes)*time.Minute), next)
}
