package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/wlin7245/remindly/internal/models"
	"github.com/wlin7245/remindly/internal/parse"
	"github.com/wlin7245/remindly/internal/rrule"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// reminderResult is the structured output the model is constrained to.
type reminderResult struct {
	Task       string   `json:"task"`
	Category   string   `json:"category"`
	Priority   int      `json:"priority"`
	DueTime    string   `json:"due_time"`
	Repeat     string   `json:"repeat"`
	Weekdays   []string `json:"weekdays"`
	Confidence float64  `json:"confidence"`
}

const systemPromptTemplate = `You are the parsing assistant of a reminder app. Extract a structured
reminder from the user's free-text or transcribed voice input.

Current time: %s

Rules:
1. task: the thing to be reminded about, stripped of lead-in phrases
   ("remind me to", "don't forget to") and of date/time words.
2. category: one of Personal, Work, Family, Health. Default Personal.
3. priority: 1-10. Words like "urgent"/"asap" mean 9, "important" 8,
   "low priority"/"whenever" 3. Default 5.
4. due_time: resolve relative expressions ("tomorrow", "next monday",
   "in 2 hours") against the current time and output YYYY-MM-DD HH:MM.
   Empty string when the input names no time at all.
5. repeat: one of none, minutely, hourly, daily, weekly, monthly, yearly,
   custom. Use custom with weekdays (monday..sunday) for patterns like
   "every tuesday and thursday".
6. confidence: 0-1, how sure you are about the extraction overall.`

func systemPrompt(now time.Time) string {
	return fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 15:04 (Monday)"))
}

var reminderSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"task": {"type": "string", "description": "What to remind about"},
		"category": {"type": "string", "enum": ["Personal", "Work", "Family", "Health"]},
		"priority": {"type": "integer", "minimum": 1, "maximum": 10},
		"due_time": {"type": "string", "description": "YYYY-MM-DD HH:MM or empty"},
		"repeat": {"type": "string", "enum": ["none", "minutely", "hourly", "daily", "weekly", "monthly", "yearly", "custom"]},
		"weekdays": {
			"type": "array",
			"items": {"type": "string", "enum": ["monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"]}
		},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	},
	"required": ["task", "category", "priority", "due_time", "repeat", "confidence"],
	"additionalProperties": false
}`)

// ParseReminder extracts a reminder draft from free text. Callers fall back
// to the rule-based extractor when this returns an error.
func (c *Client) ParseReminder(ctx context.Context, text string, now time.Time) (parse.Draft, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(now)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "reminder",
				Schema: reminderSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return parse.Draft{}, fmt.Errorf("call AI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return parse.Draft{}, fmt.Errorf("no response from AI")
	}

	var result reminderResult
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return parse.Draft{}, fmt.Errorf("parse AI response: %w", err)
	}
	return toDraft(result, now)
}

var weekdayByName = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

func toDraft(result reminderResult, now time.Time) (parse.Draft, error) {
	draft := parse.Draft{
		Task:       strings.TrimSpace(result.Task),
		Category:   result.Category,
		Priority:   result.Priority,
		Confidence: result.Confidence,
		Repeat:     models.RepeatPattern{Kind: models.RepeatNone, Interval: 1},
	}
	if draft.Task == "" {
		return parse.Draft{}, fmt.Errorf("empty task in AI response")
	}
	if draft.Category == "" {
		draft.Category = "Personal"
	}
	if draft.Priority < 1 || draft.Priority > 10 {
		draft.Priority = 5
	}

	if result.DueTime != "" {
		due, err := time.ParseInLocation("2006-01-02 15:04", result.DueTime, now.Location())
		if err != nil {
			return parse.Draft{}, fmt.Errorf("bad due_time %q: %w", result.DueTime, err)
		}
		draft.DueAt = due
		draft.HasDue = true
	}

	// Some models answer with a full RRULE string instead of a kind name.
	if strings.Contains(strings.ToUpper(result.Repeat), "FREQ=") {
		if p, err := rrule.Parse(result.Repeat); err == nil {
			draft.Repeat = p
			return draft, nil
		}
	}

	kind := models.RepeatKind(strings.ToUpper(result.Repeat))
	if result.Repeat != "" && result.Repeat != "none" && kind.Valid() {
		draft.Repeat.Kind = kind
		for _, name := range result.Weekdays {
			if d, ok := weekdayByName[strings.ToLower(name)]; ok {
				draft.Repeat.Weekdays = append(draft.Repeat.Weekdays, d)
			}
		}
	}
	return draft, nil
}
