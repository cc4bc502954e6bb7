package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/wlin7245/remindly/internal/models"
)

// Draft is the structured best-guess extracted from one piece of free text.
// Nothing in a draft is authoritative; the user confirms or edits every
// field before a reminder is created.
type Draft struct {
	Task       string
	Category   string
	Priority   int
	DueAt      time.Time
	HasDue     bool
	Repeat     models.RepeatPattern
	Confidence float64
}

// rule is one tagged pattern in an ordered rule list. Rules are evaluated
// in declaration order and the first match wins within its list.
type rule struct {
	tag string
	re  *regexp.Regexp
}

var categoryRules = []rule{
	{"Work", regexp.MustCompile(`(?i)\b(work|meeting|office|boss|client|deadline|report)\b`)},
	{"Family", regexp.MustCompile(`(?i)\b(family|home|mom|dad|kids?|wife|husband)\b`)},
	{"Health", regexp.MustCompile(`(?i)\b(doctor|dentist|gym|medicine|pills?|workout)\b`)},
}

var priorityRules = []struct {
	tag      string
	priority int
	re       *regexp.Regexp
}{
	{"urgent", 9, regexp.MustCompile(`(?i)\b(urgent|asap|emergency|critical)\b`)},
	{"high", 8, regexp.MustCompile(`(?i)\b(important|high priority|soon)\b`)},
	{"low", 3, regexp.MustCompile(`(?i)\b(low priority|when possible|eventually)\b`)},
}

var repeatRules = []struct {
	tag   string
	build func(m []string) models.RepeatPattern
	re    *regexp.Regexp
}{
	{"weekday", func(m []string) models.RepeatPattern {
		return models.RepeatPattern{
			Kind:     models.RepeatCustom,
			Interval: 1,
			Weekdays: []time.Weekday{weekdayByName[strings.ToLower(m[2])]},
		}
	}, regexp.MustCompile(`(?i)\b(every|each)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)},
	{"daily", func([]string) models.RepeatPattern {
		return models.RepeatPattern{Kind: models.RepeatDaily, Interval: 1}
	}, regexp.MustCompile(`(?i)\b(every|each)\s+(day|morning|evening|night)\b|\bdaily\b`)},
	{"weekly", func([]string) models.RepeatPattern {
		return models.RepeatPattern{Kind: models.RepeatWeekly, Interval: 1}
	}, regexp.MustCompile(`(?i)\b(every|each)\s+week\b|\bweekly\b`)},
	{"monthly", func([]string) models.RepeatPattern {
		return models.RepeatPattern{Kind: models.RepeatMonthly, Interval: 1}
	}, regexp.MustCompile(`(?i)\b(every|each)\s+month\b|\bmonthly\b`)},
	{"yearly", func([]string) models.RepeatPattern {
		return models.RepeatPattern{Kind: models.RepeatYearly, Interval: 1}
	}, regexp.MustCompile(`(?i)\b(every|each)\s+year\b|\byearly\b|\bannually\b`)},
}

var (
	reLeadIn    = regexp.MustCompile(`(?i)^\s*(remind me to|remember to|don't forget to|i need to|i have to)\s+`)
	reTimeNoise = regexp.MustCompile(`(?i)\b(at\s+)?\d{1,2}(:\d{2})?\s*(am|pm)?\b`)
	reDayNoise  = regexp.MustCompile(`(?i)\b(today|tonight|tomorrow|next\s+week|` +
		`(next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)|` +
		`in\s+\d+\s+(hours?|minutes?)|morning|afternoon|evening|night)\b`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// Process runs the ordered rule lists over raw free text and assembles a
// reminder draft: task text with scheduling words stripped, a category and
// priority guess, a repeat pattern, and a due time via DateTime.
func Process(raw string, now time.Time) Draft {
	text := strings.TrimSpace(raw)
	d := Draft{Task: text, Category: "Personal", Priority: 5}
	if text == "" {
		d.Task = "Reminder"
		return d
	}

	if due, ok := DateTime(text, now); ok {
		d.DueAt = due
		d.HasDue = true
		d.Confidence += 0.4
	}

	for _, r := range categoryRules {
		if r.re.MatchString(text) {
			d.Category = r.tag
			d.Confidence += 0.1
			break
		}
	}

	for _, r := range priorityRules {
		if r.re.MatchString(text) {
			d.Priority = r.priority
			d.Confidence += 0.1
			break
		}
	}

	d.Repeat = models.RepeatPattern{Kind: models.RepeatNone, Interval: 1}
	for _, r := range repeatRules {
		if m := r.re.FindStringSubmatch(text); m != nil {
			d.Repeat = r.build(m)
			d.Confidence += 0.2
			break
		}
	}

	d.Task = extractTask(text)
	if d.Confidence > 1 {
		d.Confidence = 1
	}
	return d
}

// extractTask strips lead-in phrases and scheduling noise, leaving the part
// of the text that says what to do.
func extractTask(text string) string {
	task := reLeadIn.ReplaceAllString(text, "")
	for _, r := range repeatRules {
		task = r.re.ReplaceAllString(task, "")
	}
	task = reDayNoise.ReplaceAllString(task, "")
	task = reTimeNoise.ReplaceAllString(task, "")
	for _, r := range priorityRules {
		task = r.re.ReplaceAllString(task, "")
	}
	task = strings.Trim(reSpaces.ReplaceAllString(task, " "), " ,.!")
	if task == "" {
		return "Reminder"
	}
	return task
}
