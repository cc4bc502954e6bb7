// Package email renders reminders as email messages and sends them through
// whichever transport the user prefers.
package email

import (
	"fmt"
	"strings"

	"github.com/wlin7245/remindly/internal/models"
	"github.com/wlin7245/remindly/internal/rrule"
)

// Message is a rendered reminder email.
type Message struct {
	Subject string
	Body    string
}

const subjectLimit = 50

// Compose renders the subject and body for a reminder snapshot.
func Compose(snap models.Snapshot) Message {
	subject := snap.Content
	if runes := []rune(subject); len(runes) > subjectLimit {
		subject = string(runes[:subjectLimit])
	}

	var b strings.Builder
	b.WriteString("Hello,\n\nThis is your reminder:\n\n")
	b.WriteString(snap.Content)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Time: %s\n", snap.DueAt.Format("15:04"))
	fmt.Fprintf(&b, "Date: %s\n", snap.DueAt.Format("Monday, January 2, 2006"))

	pattern := models.DecodeRepeatPattern(snap.RepeatRule)
	if pattern.IsRecurring() {
		fmt.Fprintf(&b, "Repeats: %s\n", rrule.Describe(pattern))
	}
	if snap.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", snap.Category)
	}
	if snap.Importance > 0 {
		fmt.Fprintf(&b, "Priority: %d/10\n", snap.Importance)
	}

	b.WriteString("\nBest regards,\nRemindly")

	return Message{
		Subject: "Reminder: " + subject,
		Body:    b.String(),
	}
}
