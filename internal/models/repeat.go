package models

import (
	"encoding/json"
	"time"
)

// RepeatKind identifies the recurrence rule of a reminder.
type RepeatKind string

const (
	RepeatNone     RepeatKind = "NONE"
	RepeatMinutely RepeatKind = "MINUTELY"
	RepeatHourly   RepeatKind = "HOURLY"
	RepeatDaily    RepeatKind = "DAILY"
	RepeatWeekly   RepeatKind = "WEEKLY"
	RepeatMonthly  RepeatKind = "MONTHLY"
	RepeatYearly   RepeatKind = "YEARLY"
	RepeatCustom   RepeatKind = "CUSTOM"
)

// Valid reports whether the kind is one of the known repeat kinds.
func (k RepeatKind) Valid() bool {
	switch k {
	case RepeatNone, RepeatMinutely, RepeatHourly, RepeatDaily,
		RepeatWeekly, RepeatMonthly, RepeatYearly, RepeatCustom:
		return true
	}
	return false
}

// RepeatPattern describes recurrence independent of any specific occurrence.
// It is used only to project future occurrences for display; it never
// materializes new reminder rows.
type RepeatPattern struct {
	Kind     RepeatKind     `json:"kind"`
	Interval int            `json:"interval"` // every N units
	Weekdays []time.Weekday `json:"weekdays,omitempty"`
	EndDate  string         `json:"end_date,omitempty"` // YYYY-MM-DD, inclusive
}

// IsRecurring reports whether the pattern produces occurrences at all.
// Kind NONE wins regardless of interval or end date.
func (p RepeatPattern) IsRecurring() bool {
	return p.Kind != RepeatNone && p.Kind != ""
}

// Step returns the normalized interval, treating zero and negatives as 1.
func (p RepeatPattern) Step() int {
	if p.Interval < 1 {
		return 1
	}
	return p.Interval
}

// EndBoundary returns the end-of-day instant of the pattern's end date in the
// given location. Occurrences must fall strictly before it. The second return
// is false when no end date is set or it does not parse.
func (p RepeatPattern) EndBoundary(loc *time.Location) (time.Time, bool) {
	if p.EndDate == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", p.EndDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d.AddDate(0, 0, 1), true
}

// OnWeekday reports whether the weekday belongs to the pattern's set.
func (p RepeatPattern) OnWeekday(d time.Weekday) bool {
	for _, w := range p.Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

type repeatEnvelope struct {
	Version int           `json:"v"`
	Pattern RepeatPattern `json:"pattern"`
}

const repeatVersion = 1

// EncodeRepeatPattern serializes a pattern for storage in the reminder row.
func EncodeRepeatPattern(p RepeatPattern) string {
	data, err := json.Marshal(repeatEnvelope{Version: repeatVersion, Pattern: p})
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeRepeatPattern parses a stored pattern. Corrupt or absent data decodes
// to kind NONE; this function never fails past its boundary.
func DecodeRepeatPattern(raw string) RepeatPattern {
	none := RepeatPattern{Kind: RepeatNone, Interval: 1}
	if raw == "" {
		return none
	}

	var env repeatEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.Pattern.Kind == "" {
		var bare RepeatPattern
		if err := json.Unmarshal([]byte(raw), &bare); err != nil || bare.Kind == "" {
			return none
		}
		env.Pattern = bare
	}

	if !env.Pattern.Kind.Valid() {
		return none
	}
	if env.Pattern.Interval < 1 {
		env.Pattern.Interval = 1
	}
	return env.Pattern
}
