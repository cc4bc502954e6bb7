package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TriggerKind identifies how a trigger point relates to a reminder's due time.
type TriggerKind string

const (
	TriggerAtDueTime     TriggerKind = "AT_DUE_TIME"
	TriggerMinutesBefore TriggerKind = "MINUTES_BEFORE"
	TriggerHoursBefore   TriggerKind = "HOURS_BEFORE"
	TriggerDaysBefore    TriggerKind = "DAYS_BEFORE"
	TriggerWeeksBefore   TriggerKind = "WEEKS_BEFORE"
	TriggerCustomOffset  TriggerKind = "CUSTOM_OFFSET"
)

// Valid reports whether the kind is one of the known trigger kinds.
func (k TriggerKind) Valid() bool {
	switch k {
	case TriggerAtDueTime, TriggerMinutesBefore, TriggerHoursBefore,
		TriggerDaysBefore, TriggerWeeksBefore, TriggerCustomOffset:
		return true
	}
	return false
}

// TriggerPoint describes one alert instant relative to a reminder's due time,
// together with the alert channels enabled for that instant.
type TriggerPoint struct {
	Kind      TriggerKind `json:"kind"`
	Value     int         `json:"value,omitempty"`     // minutes/hours/days/weeks, meaning depends on Kind
	OffsetMs  int64       `json:"offset_ms,omitempty"` // for CUSTOM_OFFSET
	Flash     bool        `json:"flash"`
	Sound     bool        `json:"sound"`
	Vibration bool        `json:"vibration"`
}

// DefaultTriggerPoint fires exactly at the due time with all channels on.
func DefaultTriggerPoint() TriggerPoint {
	return TriggerPoint{Kind: TriggerAtDueTime, Flash: true, Sound: true, Vibration: true}
}

// TriggerTime computes the absolute instant this trigger fires for the given
// due time. The math is purely linear: minute, hour, day and week are fixed
// millisecond units, never calendar-aware. The result may be in the past;
// discarding past triggers is the scheduler's job.
func (t TriggerPoint) TriggerTime(due time.Time) time.Time {
	switch t.Kind {
	case TriggerMinutesBefore:
		return due.Add(-time.Duration(t.Value) * time.Minute)
	case TriggerHoursBefore:
		return due.Add(-time.Duration(t.Value) * time.Hour)
	case TriggerDaysBefore:
		return due.Add(-time.Duration(t.Value) * 24 * time.Hour)
	case TriggerWeeksBefore:
		return due.Add(-time.Duration(t.Value) * 7 * 24 * time.Hour)
	case TriggerCustomOffset:
		return due.Add(-time.Duration(t.OffsetMs) * time.Millisecond)
	default:
		return due
	}
}

// Describe returns a short human-readable description of the trigger point.
func (t TriggerPoint) Describe() string {
	switch t.Kind {
	case TriggerMinutesBefore:
		return fmt.Sprintf("%d %s before", t.Value, plural("minute", t.Value))
	case TriggerHoursBefore:
		return fmt.Sprintf("%d %s before", t.Value, plural("hour", t.Value))
	case TriggerDaysBefore:
		return fmt.Sprintf("%d %s before", t.Value, plural("day", t.Value))
	case TriggerWeeksBefore:
		return fmt.Sprintf("%d %s before", t.Value, plural("week", t.Value))
	case TriggerCustomOffset:
		return fmt.Sprintf("%ds before", t.OffsetMs/1000)
	default:
		return "at due time"
	}
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// triggerPointsEnvelope is the versioned on-disk form of a trigger list.
type triggerPointsEnvelope struct {
	Version  int            `json:"v"`
	Triggers []TriggerPoint `json:"triggers"`
}

const triggerPointsVersion = 1

// EncodeTriggerPoints serializes a trigger list for storage in the reminder row.
func EncodeTriggerPoints(points []TriggerPoint) string {
	data, err := json.Marshal(triggerPointsEnvelope{Version: triggerPointsVersion, Triggers: points})
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeTriggerPoints parses a stored trigger list. Corrupt data, unknown
// kinds and empty input all resolve to the single default at-due-time
// trigger; this function never fails past its boundary.
func DecodeTriggerPoints(raw string) []TriggerPoint {
	if raw == "" {
		return []TriggerPoint{DefaultTriggerPoint()}
	}

	var env triggerPointsEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.Triggers == nil {
		// Earlier builds stored a bare array without the envelope.
		var bare []TriggerPoint
		if err := json.Unmarshal([]byte(raw), &bare); err != nil {
			return []TriggerPoint{DefaultTriggerPoint()}
		}
		env.Triggers = bare
	}

	valid := make([]TriggerPoint, 0, len(env.Triggers))
	for _, tp := range env.Triggers {
		if tp.Kind.Valid() {
			valid = append(valid, tp)
		}
	}
	if len(valid) == 0 {
		return []TriggerPoint{DefaultTriggerPoint()}
	}
	return valid
}
