package models

import (
	"encoding/json"
	"time"
)

// Reminder is the central entity. DueAt is the single source of truth for
// scheduling; the WhenDay/WhenTime strings are display cache only.
type Reminder struct {
	ID             int        `json:"reminder_id"`
	UserID         int64      `json:"user_id"`
	Content        string     `json:"content"`
	Category       string     `json:"category"`
	Importance     int        `json:"importance"` // 1-10
	DueAt          time.Time  `json:"due_at"`
	WhenDay        string     `json:"when_day,omitempty"`
	WhenTime       string     `json:"when_time,omitempty"`
	RepeatKind     string     `json:"repeat_kind"`     // legacy simple field, superseded by RepeatRule
	RepeatInterval int        `json:"repeat_interval"` // legacy simple field
	Active         bool       `json:"active"`
	VoiceInput     string     `json:"voice_input,omitempty"`
	Processed      bool       `json:"processed"`
	TriggerPoints  string     `json:"trigger_points"` // serialized, see DecodeTriggerPoints
	RepeatRule     string     `json:"repeat_rule"`    // serialized, see DecodeRepeatPattern
	AlertConfig    string     `json:"alert_config"`   // serialized, see DecodeAlertConfig
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	LastMessageID  *int       `json:"last_message_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Triggers decodes the reminder's trigger points, defaulting to a single
// at-due-time trigger when none are configured or the data is corrupt.
func (r *Reminder) Triggers() []TriggerPoint {
	return DecodeTriggerPoints(r.TriggerPoints)
}

// Repeat decodes the reminder's structured repeat pattern.
func (r *Reminder) Repeat() RepeatPattern {
	return DecodeRepeatPattern(r.RepeatRule)
}

// Alerts decodes the reminder's alert configuration.
func (r *Reminder) Alerts() AlertConfig {
	return DecodeAlertConfig(r.AlertConfig)
}

// IsRecurring reports whether the reminder has a recurrence rule.
func (r *Reminder) IsRecurring() bool {
	return r.Repeat().IsRecurring()
}

// Acknowledged reports whether the user confirmed the reminder since the
// given instant. The series re-arm logic uses this to stop escalation.
func (r *Reminder) Acknowledged(since time.Time) bool {
	return r.AcknowledgedAt != nil && r.AcknowledgedAt.After(since)
}

// Snapshot is the portable subset of a reminder attached to an alarm payload
// so the alert dispatcher can format notifications and emails without a
// storage round trip.
type Snapshot struct {
	ID          int       `json:"id"`
	UserID      int64     `json:"user_id"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	Importance  int       `json:"importance"`
	DueAt       time.Time `json:"due_at"`
	RepeatRule  string    `json:"repeat_rule,omitempty"`
	AlertConfig string    `json:"alert_config,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Snapshot captures the reminder's portable state.
func (r *Reminder) Snapshot() Snapshot {
	return Snapshot{
		ID:          r.ID,
		UserID:      r.UserID,
		Content:     r.Content,
		Category:    r.Category,
		Importance:  r.Importance,
		DueAt:       r.DueAt,
		RepeatRule:  r.RepeatRule,
		AlertConfig: r.AlertConfig,
		CreatedAt:   r.CreatedAt,
	}
}

// EncodeSnapshot serializes a snapshot for an alarm payload.
func EncodeSnapshot(s Snapshot) string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeSnapshot parses an alarm payload snapshot. The second return is false
// when the data is absent or corrupt; callers skip snapshot-dependent work
// (email fan-out) in that case rather than failing.
func DecodeSnapshot(raw string) (Snapshot, bool) {
	if raw == "" {
		return Snapshot{}, false
	}
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.ID == 0 {
		return Snapshot{}, false
	}
	return s, true
}
