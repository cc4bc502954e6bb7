// Package rrule converts between the app's repeat patterns and RFC 5545
// RRULE strings, for calendar export and for describing recurrence in
// bot replies. Occurrence projection itself lives in internal/recurrence,
// which needs month-end clamping that RRULE semantics do not provide.
package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/wlin7245/remindly/internal/models"
)

var freqByKind = map[models.RepeatKind]rrule.Frequency{
	models.RepeatMinutely: rrule.MINUTELY,
	models.RepeatHourly:   rrule.HOURLY,
	models.RepeatDaily:    rrule.DAILY,
	models.RepeatWeekly:   rrule.WEEKLY,
	models.RepeatMonthly:  rrule.MONTHLY,
	models.RepeatYearly:   rrule.YEARLY,
}

var weekdayByGo = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// ToRRule builds an rrule-go rule from the pattern, anchored at dtstart.
// Patterns of kind NONE have no rule; the second return is false.
func ToRRule(p models.RepeatPattern, dtstart time.Time) (*rrule.RRule, bool, error) {
	if !p.IsRecurring() {
		return nil, false, nil
	}

	opt := rrule.ROption{
		Interval: p.Step(),
		Dtstart:  dtstart,
	}

	switch p.Kind {
	case models.RepeatCustom:
		if len(p.Weekdays) > 0 {
			opt.Freq = rrule.WEEKLY
			opt.Interval = 1
			for _, d := range p.Weekdays {
				opt.Byweekday = append(opt.Byweekday, weekdayByGo[d])
			}
		} else {
			opt.Freq = rrule.DAILY
		}
	default:
		freq, ok := freqByKind[p.Kind]
		if !ok {
			return nil, false, fmt.Errorf("no RRULE frequency for kind %s", p.Kind)
		}
		opt.Freq = freq
	}

	if end, ok := p.EndBoundary(dtstart.Location()); ok {
		opt.Until = end.Add(-time.Second)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, false, fmt.Errorf("build RRULE: %w", err)
	}
	return rule, true, nil
}

// String renders the pattern as an RRULE string, or "" for kind NONE.
func String(p models.RepeatPattern, dtstart time.Time) string {
	rule, ok, err := ToRRule(p, dtstart)
	if err != nil || !ok {
		return ""
	}
	return rule.String()
}

// Parse converts an RRULE string into a repeat pattern, for calendar import.
// Only the subset the app models is mapped; anything unmappable errors.
func Parse(ruleStr string) (models.RepeatPattern, error) {
	ruleStr = strings.TrimPrefix(strings.TrimSpace(ruleStr), "RRULE:")
	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return models.RepeatPattern{Kind: models.RepeatNone}, fmt.Errorf("parse RRULE: %w", err)
	}

	p := models.RepeatPattern{Interval: opt.Interval}
	if p.Interval < 1 {
		p.Interval = 1
	}

	switch opt.Freq {
	case rrule.MINUTELY:
		p.Kind = models.RepeatMinutely
	case rrule.HOURLY:
		p.Kind = models.RepeatHourly
	case rrule.DAILY:
		p.Kind = models.RepeatDaily
	case rrule.WEEKLY:
		p.Kind = models.RepeatWeekly
	case rrule.MONTHLY:
		p.Kind = models.RepeatMonthly
	case rrule.YEARLY:
		p.Kind = models.RepeatYearly
	default:
		return models.RepeatPattern{Kind: models.RepeatNone}, fmt.Errorf("unsupported RRULE frequency %v", opt.Freq)
	}

	if len(opt.Byweekday) > 0 {
		p.Kind = models.RepeatCustom
		for _, wd := range opt.Byweekday {
			for gd, rd := range weekdayByGo {
				if rd == wd {
					p.Weekdays = append(p.Weekdays, gd)
				}
			}
		}
	}

	if !opt.Until.IsZero() {
		p.EndDate = opt.Until.Format("2006-01-02")
	}
	return p, nil
}

var kindNames = map[models.RepeatKind]string{
	models.RepeatMinutely: "minute",
	models.RepeatHourly:   "hour",
	models.RepeatDaily:    "day",
	models.RepeatWeekly:   "week",
	models.RepeatMonthly:  "month",
	models.RepeatYearly:   "year",
}

// Describe returns a short human-readable recurrence description, e.g.
// "every 2 weeks", "every Monday, Friday", "every day until 2024-03-01".
func Describe(p models.RepeatPattern) string {
	if !p.IsRecurring() {
		return "one-time"
	}

	var b strings.Builder
	switch {
	case p.Kind == models.RepeatCustom && len(p.Weekdays) > 0:
		names := make([]string, len(p.Weekdays))
		for i, d := range p.Weekdays {
			names[i] = d.String()
		}
		b.WriteString("every " + strings.Join(names, ", "))
	case p.Step() == 1:
		b.WriteString("every " + kindNames[kindOrDaily(p.Kind)])
	default:
		b.WriteString(fmt.Sprintf("every %d %ss", p.Step(), kindNames[kindOrDaily(p.Kind)]))
	}

	if p.EndDate != "" {
		b.WriteString(" until " + p.EndDate)
	}
	return b.String()
}

// Custom patterns without a weekday set behave like daily repeats.
func kindOrDaily(k models.RepeatKind) models.RepeatKind {
	if k == models.RepeatCustom {
		return models.RepeatDaily
	}
	return k
}
