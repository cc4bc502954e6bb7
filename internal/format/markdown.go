// Package format converts lightweight Markdown into Telegram message
// entities. Telegram rejects whole messages with malformed parse-mode
// markup, so notifications are sent as plain text plus explicit entities.
package format

import (
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message is plain text plus the entities describing its styling.
type Message struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

// UTF16Len returns the UTF-16 code unit length of s. Telegram entity
// offsets count UTF-16 units, not bytes or runes.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r > 0xFFFF {
			n++
		}
	}
	return n
}

var (
	headerRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)$`)
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	codeRe   = regexp.MustCompile("`([^`]+)`")
)

// Render parses **bold**, `code` and # headers (treated as bold lines) into
// a Message. Unmatched markers pass through as literal text.
func Render(text string) Message {
	text = headerRe.ReplaceAllString(text, "**$1**")

	m := Message{Text: text}
	m.strip(boldRe, "bold")
	m.strip(codeRe, "code")
	return m
}

// strip removes the markers of one style, recording an entity per match.
func (m *Message) strip(re *regexp.Regexp, kind string) {
	for {
		loc := re.FindStringSubmatchIndex(m.Text)
		if loc == nil {
			return
		}
		inner := m.Text[loc[2]:loc[3]]
		m.Entities = append(m.Entities, tgbotapi.MessageEntity{
			Type:   kind,
			Offset: UTF16Len(m.Text[:loc[0]]),
			Length: UTF16Len(inner),
		})
		m.Text = m.Text[:loc[0]] + inner + m.Text[loc[1]:]
	}
}

// Plain strips all supported markers without recording entities.
func Plain(text string) string {
	return Render(text).Text
}

// EscapeCode wraps s in backticks after dropping any it contains.
func EscapeCode(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "") + "`"
}
