// Package handlers implements the Telegram command, message and callback
// surface of the reminder bot.
package handlers

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/wlin7245/remindly/internal/ai"
	"github.com/wlin7245/remindly/internal/format"
	"github.com/wlin7245/remindly/internal/models"
	"github.com/wlin7245/remindly/internal/parse"
)

// Sender is the slice of the Telegram client the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ReminderStore is the persistence surface the handlers need.
type ReminderStore interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	GetByID(ctx context.Context, id int) (*models.Reminder, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Reminder, error)
	GetUpcoming(ctx context.Context, userID int64, until time.Time) ([]*models.Reminder, error)
	GetByCategory(ctx context.Context, userID int64, category string) ([]*models.Reminder, error)
	GetByMinImportance(ctx context.Context, userID int64, min int) ([]*models.Reminder, error)
	Update(ctx context.Context, reminder *models.Reminder) error
	SetDueAt(ctx context.Context, id int, dueAt time.Time) error
	SetActive(ctx context.Context, id int, userID int64, active bool) error
	SetAcknowledged(ctx context.Context, id int, at time.Time) error
	Delete(ctx context.Context, id int, userID int64) error
}

// Rescheduler keeps registered alarms in sync after every mutation.
type Rescheduler interface {
	ScheduleReminder(r *models.Reminder)
	CancelReminder(reminderID int)
}

// DraftParser is the optional AI-backed extractor. The rule-based one runs
// when it is absent or fails.
type DraftParser interface {
	ParseReminder(ctx context.Context, text string, now time.Time) (parse.Draft, error)
}

const confirmTTL = 5 * time.Minute

// upcomingLimit caps the projected occurrences per reminder in /upcoming so
// a minutely pattern cannot flood the reply.
const upcomingLimit = 10

type pendingDraft struct {
	reminder  *models.Reminder
	expiresAt time.Time
}

type Handlers struct {
	api   Sender
	store ReminderStore
	sched Rescheduler
	ai    DraftParser

	mu      sync.Mutex
	pending map[int64]pendingDraft

	now func() time.Time
}

func New(api Sender, store ReminderStore, sched Rescheduler, aiClient *ai.Client) *Handlers {
	h := &Handlers{
		api:     api,
		store:   store,
		sched:   sched,
		pending: make(map[int64]pendingDraft),
		now:     time.Now,
	}
	if aiClient != nil {
		h.ai = aiClient
	}
	return h
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.handleStart(msg)
	case "help":
		h.handleHelp(msg)
	case "remind":
		h.handleRemind(ctx, msg)
	case "reminders":
		h.handleList(ctx, msg)
	case "upcoming":
		h.handleUpcoming(ctx, msg)
	case "export":
		h.handleExport(ctx, msg)
	case "delete":
		h.handleDelete(ctx, msg)
	case "pause":
		h.handleSetActive(ctx, msg, false)
	case "resume":
		h.handleSetActive(ctx, msg, true)
	default:
		h.sendMessage(msg.Chat.ID, "Unknown command, see /help")
	}
}

// HandleMessage treats any non-command text as a reminder to extract.
func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.draftFromText(ctx, msg.Chat.ID, msg.From.ID, msg.Text, false)
}

func (h *Handlers) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := h.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Warn().Err(err).Msg("failed to answer callback")
	}

	parts := strings.Split(callback.Data, ":")
	if len(parts) != 2 {
		return
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return
	}

	switch parts[0] {
	case "confirm":
		h.handleConfirm(ctx, callback, id)
	case "cancel":
		h.handleCancel(callback, id)
	case "remind_ack":
		h.handleAcknowledge(ctx, callback, int(id))
	}
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	rendered := format.Render(text)
	msg := tgbotapi.NewMessage(chatID, rendered.Text)
	msg.Entities = rendered.Entities
	if _, err := h.api.Send(msg); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (h *Handlers) editMessageText(chatID int64, messageID int, text string) {
	rendered := format.Render(text)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, rendered.Text)
	edit.Entities = rendered.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to edit message")
	}
}

func (h *Handlers) handleStart(msg *tgbotapi.Message) {
	h.sendMessage(msg.Chat.ID,
		"👋 Hi! Send me anything you want to be reminded about, like\n"+
			"`remind me to call mom tomorrow at 3pm`\n\nSee /help for commands.")
}

func (h *Handlers) handleHelp(msg *tgbotapi.Message) {
	h.sendMessage(msg.Chat.ID, `**Commands**
/remind <text> - create a reminder from free text
/reminders [category or min importance] - list your reminders
/upcoming - reminders due in the next 7 days
/export - reminders as calendar (RFC 5545) lines
/delete <id> - delete a reminder
/pause <id> - stop a reminder's alarms
/resume <id> - re-enable a paused reminder

You can also just type what you want, no command needed.`)
}
