package models

import "encoding/json"

// VibrationPattern selects the waveform used for a vibration request.
type VibrationPattern string

const (
	VibrationSingle VibrationPattern = "SINGLE"
	VibrationDouble VibrationPattern = "DOUBLE"
	VibrationTriple VibrationPattern = "TRIPLE"
	VibrationLong   VibrationPattern = "LONG"
	VibrationPulse  VibrationPattern = "PULSE"
)

// VibrationIntensity selects how strong a vibration request is.
type VibrationIntensity string

const (
	IntensityLight  VibrationIntensity = "LIGHT"
	IntensityMedium VibrationIntensity = "MEDIUM"
	IntensityStrong VibrationIntensity = "STRONG"
)

// SoundType selects the tone played for a sound request.
type SoundType string

const (
	SoundDefault SoundType = "DEFAULT"
	SoundAlarm   SoundType = "ALARM"
	SoundGentle  SoundType = "GENTLE"
	SoundUrgent  SoundType = "URGENT"
)

// VibrationConfig configures the vibration channel of a reminder.
type VibrationConfig struct {
	Enabled        bool               `json:"enabled"`
	Pattern        VibrationPattern   `json:"pattern"`
	Intensity      VibrationIntensity `json:"intensity"`
	SeriesCount    int                `json:"series_count"`
	SeriesInterval int                `json:"series_interval_ms"`
}

// SoundConfig configures the sound channel of a reminder.
type SoundConfig struct {
	Enabled        bool      `json:"enabled"`
	Type           SoundType `json:"type"`
	Volume         float64   `json:"volume"`
	SeriesCount    int       `json:"series_count"`
	SeriesInterval int       `json:"series_interval_ms"`
}

// AlertSeries configures repeat-until-acknowledged behavior: when enabled,
// the alert re-fires every IntervalMinutes up to MaxAttempts, escalating
// intensity when Escalation is set, and stops early once the user
// acknowledges the reminder if StopOnAcknowledge is set.
type AlertSeries struct {
	Enabled           bool `json:"enabled"`
	MaxAttempts       int  `json:"max_attempts"`
	IntervalMinutes   int  `json:"interval_minutes"`
	Escalation        bool `json:"escalation"`
	StopOnAcknowledge bool `json:"stop_on_acknowledge"`
}

// AlertConfig is the nested alert configuration embedded in a reminder.
type AlertConfig struct {
	Vibration VibrationConfig `json:"vibration"`
	Sound     SoundConfig     `json:"sound"`
	Series    AlertSeries     `json:"series"`
}

// DefaultAlertConfig mirrors the defaults applied when a reminder carries no
// explicit alert configuration.
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		Vibration: VibrationConfig{
			Enabled:        true,
			Pattern:        VibrationSingle,
			Intensity:      IntensityMedium,
			SeriesCount:    1,
			SeriesInterval: 1000,
		},
		Sound: SoundConfig{
			Enabled:        true,
			Type:           SoundDefault,
			Volume:         0.8,
			SeriesCount:    1,
			SeriesInterval: 2000,
		},
		Series: AlertSeries{
			Enabled:           false,
			MaxAttempts:       3,
			IntervalMinutes:   5,
			Escalation:        true,
			StopOnAcknowledge: true,
		},
	}
}

type alertEnvelope struct {
	Version int         `json:"v"`
	Config  AlertConfig `json:"config"`
}

const alertVersion = 1

// EncodeAlertConfig serializes the config for storage in the reminder row.
func EncodeAlertConfig(c AlertConfig) string {
	data, err := json.Marshal(alertEnvelope{Version: alertVersion, Config: c})
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeAlertConfig parses a stored config. Corrupt or absent data decodes to
// the default configuration; this function never fails past its boundary.
func DecodeAlertConfig(raw string) AlertConfig {
	if raw == "" {
		return DefaultAlertConfig()
	}

	var env alertEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return DefaultAlertConfig()
	}
	if env.Version == 0 && env.Config == (AlertConfig{}) {
		return DefaultAlertConfig()
	}

	cfg := env.Config
	if cfg.Series.MaxAttempts < 1 {
		cfg.Series.MaxAttempts = 1
	}
	if cfg.Series.IntervalMinutes < 1 {
		cfg.Series.IntervalMinutes = 1
	}
	return cfg
}
