// Package recurrence projects future occurrences of a repeat pattern.
// Results are computed fresh on every call; nothing here keeps cursor state
// and nothing here creates reminder rows.
package recurrence

import (
	"time"

	"github.com/wlin7245/remindly/internal/models"
)

// Advancing a candidate past this many steps without clearing `after` means
// the pattern is degenerate; give up instead of spinning.
const maxSteps = 100000

// Next returns the first occurrence of the pattern strictly after `after`,
// starting the candidate walk at the due time itself. The second return is
// false when the pattern never produces another occurrence (kind NONE, past
// the end date, or a degenerate walk).
func Next(p models.RepeatPattern, due, after time.Time) (time.Time, bool) {
	if !p.IsRecurring() {
		return time.Time{}, false
	}

	end, hasEnd := p.EndBoundary(due.Location())

	candidate := due
	for i := 0; i < maxSteps; i++ {
		if hasEnd && !candidate.Before(end) {
			return time.Time{}, false
		}
		if candidate.After(after) && matches(p, candidate) {
			return candidate, true
		}
		next, ok := advance(p, candidate)
		if !ok {
			return time.Time{}, false
		}
		candidate = next
	}
	return time.Time{}, false
}

// Future returns up to limit occurrences strictly after now, in order.
func Future(p models.RepeatPattern, due, now time.Time, limit int) []time.Time {
	if limit <= 0 || !p.IsRecurring() {
		return nil
	}

	var out []time.Time
	after := now
	for len(out) < limit {
		next, ok := Next(p, due, after)
		if !ok {
			break
		}
		out = append(out, next)
		after = next
	}
	return out
}

// matches reports whether the candidate is a real occurrence. Only the
// custom kind filters candidates; every other kind's walk lands exactly on
// occurrences.
func matches(p models.RepeatPattern, t time.Time) bool {
	if p.Kind != models.RepeatCustom || len(p.Weekdays) == 0 {
		return true
	}
	return p.OnWeekday(t.Weekday())
}

// advance moves the candidate one pattern step forward.
func advance(p models.RepeatPattern, t time.Time) (time.Time, bool) {
	n := p.Step()
	switch p.Kind {
	case models.RepeatMinutely:
		return t.Add(time.Duration(n) * time.Minute), true
	case models.RepeatHourly:
		return t.Add(time.Duration(n) * time.Hour), true
	case models.RepeatDaily:
		return t.AddDate(0, 0, n), true
	case models.RepeatWeekly:
		return t.AddDate(0, 0, 7*n), true
	case models.RepeatMonthly:
		return addMonthsClamped(t, n), true
	case models.RepeatYearly:
		return addMonthsClamped(t, 12*n), true
	case models.RepeatCustom:
		if len(p.Weekdays) > 0 {
			// Walk day by day; matches() filters to the weekday set.
			return t.AddDate(0, 0, 1), true
		}
		return t.AddDate(0, 0, n), true
	default:
		return time.Time{}, false
	}
}

// addMonthsClamped adds months calendar-aware, clamping the day of month to
// the last valid day of the target month so Jan 31 + 1 month lands on
// Feb 29 (leap) or Feb 28, never overflows into March.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	first = first.AddDate(0, months, 0)

	if last := daysInMonth(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
