// Package parse extracts scheduling hints from free text (typed or arriving
// from speech transcription). Everything here is best-effort: extracted
// values only pre-fill fields the user confirms, and no function in this
// package fails past its boundary.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Default hours for vague times of day.
const (
	hourMorning   = 9
	hourAfternoon = 14
	hourEvening   = 18
	hourNight     = 20
	hourWakeUp    = 7
)

var (
	dayWordAlt = `tomorrow|today|tonight|tonite|` +
		`(?:next\s+)?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|wed|thu|fri|sat|sun)`

	reExplicit = regexp.MustCompile(`(?i)\b(` + dayWordAlt + `)\s+(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	reDuration = regexp.MustCompile(`(?i)\bin\s+(?:(an?)\s+hour|(\d+)\s+hours?|(\d+)\s+minutes?)\b`)
	reBareTime = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	reDayWord  = regexp.MustCompile(`(?i)\b(` + dayWordAlt + `|next\s+week|morning|afternoon|evening|night)\b`)
)

var weekdayByName = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

// DateTime extracts an absolute timestamp from free text, trying stages in
// order of specificity: explicit day+time phrases, "in N hours/minutes"
// durations, bare times of day, relative day words, and finally idioms like
// "remind me". The second return is false when nothing matched; the caller
// keeps whatever default it already had.
func DateTime(text string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return time.Time{}, false
	}

	if t, ok := parseExplicit(lower, now); ok {
		return t, true
	}
	if t, ok := parseDuration(lower, now); ok {
		return t, true
	}
	if t, ok := parseBareTime(lower, now); ok {
		return t, true
	}
	if t, ok := parseDayWord(lower, now); ok {
		return t, true
	}
	return parseIdiom(lower, now)
}

// ResolveHour converts an hour plus optional meridiem to 24-hour form.
// Without a meridiem, hours 1-6 are taken as PM and 7-12 as AM; this is a
// deliberate, pinned policy ("3" means 15:00, "9" means 09:00), not a
// guarantee of intent. Hours above 12 are already 24-hour form.
func ResolveHour(hour int, meridiem string) int {
	switch strings.ToLower(meridiem) {
	case "am":
		if hour == 12 {
			return 0
		}
		return hour
	case "pm":
		if hour != 12 {
			return hour + 12
		}
		return hour
	}
	if hour >= 1 && hour <= 6 {
		return hour + 12
	}
	return hour
}

func parseExplicit(text string, now time.Time) (time.Time, bool) {
	m := reExplicit.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, false
	}
	minute := 0
	if m[3] != "" {
		minute, _ = strconv.Atoi(m[3])
	}
	return atDayAndTime(now, m[1], hour, minute, m[4])
}

func parseDuration(text string, now time.Time) (time.Time, bool) {
	m := reDuration.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	switch {
	case m[1] != "": // "in an hour"
		return now.Add(time.Hour), true
	case m[2] != "":
		n, _ := strconv.Atoi(m[2])
		return now.Add(time.Duration(n) * time.Hour), true
	default:
		n, _ := strconv.Atoi(m[3])
		return now.Add(time.Duration(n) * time.Minute), true
	}
}

func parseBareTime(text string, now time.Time) (time.Time, bool) {
	m := reBareTime.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	return atDayAndTime(now, "", hour, minute, m[3])
}

func parseDayWord(text string, now time.Time) (time.Time, bool) {
	m := reDayWord.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	word := strings.Join(strings.Fields(m[1]), " ")

	switch word {
	case "tomorrow":
		return dayAt(now.AddDate(0, 0, 1), hourMorning, 0), true
	case "today":
		return todayOrTomorrow(now, hourAfternoon), true
	case "tonight", "tonite", "night":
		return todayOrTomorrow(now, hourNight), true
	case "next week":
		return now.AddDate(0, 0, 7), true
	case "morning":
		return todayOrTomorrow(now, hourMorning), true
	case "afternoon":
		return todayOrTomorrow(now, hourAfternoon), true
	case "evening":
		return todayOrTomorrow(now, hourEvening), true
	}

	if wd, ok := weekdayByName[strings.TrimPrefix(word, "next ")]; ok {
		return nextWeekday(dayAt(now, hourMorning, 0), now, wd), true
	}
	return time.Time{}, false
}

func parseIdiom(text string, now time.Time) (time.Time, bool) {
	switch {
	case strings.Contains(text, "wake me up") || strings.Contains(text, "wake up"):
		return dayAt(now.AddDate(0, 0, 1), hourWakeUp, 0), true
	case strings.Contains(text, "remind me"):
		return dayAt(now.AddDate(0, 0, 1), hourMorning, 0), true
	}
	return time.Time{}, false
}

// atDayAndTime combines an optional day word with an hour/minute/meridiem.
// When the resolved instant has already passed and no explicit day was
// given, it rolls over to tomorrow.
func atDayAndTime(now time.Time, dayWord string, hour, minute int, meridiem string) (time.Time, bool) {
	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	h := hour
	if hour <= 12 {
		h = ResolveHour(hour, meridiem)
	}

	result := dayAt(now, h, minute)

	word := strings.Join(strings.Fields(strings.ToLower(dayWord)), " ")
	switch word {
	case "tomorrow":
		return result.AddDate(0, 0, 1), true
	case "today", "tonight", "tonite", "":
		if !result.After(now) {
			result = result.AddDate(0, 0, 1)
		}
		return result, true
	}

	if wd, ok := weekdayByName[strings.TrimPrefix(word, "next ")]; ok {
		return nextWeekday(result, now, wd), true
	}
	return result, true
}

// todayOrTomorrow puts the hour on today's date, rolling to tomorrow when
// that instant has already passed.
func todayOrTomorrow(now time.Time, hour int) time.Time {
	t := dayAt(now, hour, 0)
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// dayAt returns the given day with the clock set to hour:minute.
func dayAt(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// nextWeekday moves t forward to the next occurrence of the target weekday,
// always at least one day ahead of now.
func nextWeekday(t, now time.Time, target time.Weekday) time.Time {
	days := int(target - now.Weekday())
	if days <= 0 {
		days += 7
	}
	return dayAt(now.AddDate(0, 0, days), t.Hour(), t.Minute())
}
