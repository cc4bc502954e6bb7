package handlers

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/wlin7245/remindly/internal/format"
	"github.com/wlin7245/remindly/internal/models"
	"github.com/wlin7245/remindly/internal/parse"
	"github.com/wlin7245/remindly/internal/recurrence"
	"github.com/wlin7245/remindly/internal/rrule"
)

func (h *Handlers) handleRemind(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		h.sendMessage(msg.Chat.ID, "Tell me what to remind you about\nExample: `/remind call mom tomorrow at 3pm`")
		return
	}
	h.draftFromText(ctx, msg.Chat.ID, msg.From.ID, args, true)
}

// draftFromText extracts a reminder from free text and asks the user to
// confirm it. The AI extractor runs first when configured; the rule-based
// one is the fallback and also handles voice transcripts.
func (h *Handlers) draftFromText(ctx context.Context, chatID, userID int64, text string, explicit bool) {
	now := h.now()

	var draft parse.Draft
	parsed := false
	if h.ai != nil {
		d, err := h.ai.ParseReminder(ctx, text, now)
		if err != nil {
			log.Warn().Err(err).Msg("AI extraction failed, using rule-based parser")
		} else {
			draft = d
			parsed = true
		}
	}
	if !parsed {
		draft = parse.Process(text, now)
	}

	if !draft.HasDue {
		if !explicit {
			h.sendMessage(chatID, "I couldn't find a time in that. Try something like `call mom tomorrow at 3pm`.")
			return
		}
		// Explicit /remind without a parseable time defaults to an hour out.
		draft.DueAt = now.Add(time.Hour)
		draft.HasDue = true
	}

	reminder := reminderFromDraft(draft, userID, text)

	h.mu.Lock()
	h.pending[userID] = pendingDraft{reminder: reminder, expiresAt: now.Add(confirmTTL)}
	h.mu.Unlock()

	text = fmt.Sprintf("📝 **%s**\n📅 %s\n📂 %s  ⭐ %d/10",
		reminder.Content,
		reminder.DueAt.Format("Mon, Jan 2 at 15:04"),
		reminder.Category,
		reminder.Importance,
	)
	if pattern := reminder.Repeat(); pattern.IsRecurring() {
		text += "\n🔁 " + rrule.Describe(pattern)
	}
	text += "\n\nShall I set this reminder?"

	rendered := newConfirmMessage(chatID, text, userID)
	if _, err := h.api.Send(rendered); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send confirmation")
	}
}

func reminderFromDraft(draft parse.Draft, userID int64, raw string) *models.Reminder {
	return &models.Reminder{
		UserID:         userID,
		Content:        draft.Task,
		Category:       draft.Category,
		Importance:     draft.Priority,
		DueAt:          draft.DueAt,
		WhenDay:        draft.DueAt.Format("2006-01-02"),
		WhenTime:       draft.DueAt.Format("15:04"),
		RepeatKind:     string(draft.Repeat.Kind),
		RepeatInterval: draft.Repeat.Step(),
		Active:         true,
		VoiceInput:     raw,
		Processed:      true,
		TriggerPoints:  models.EncodeTriggerPoints([]models.TriggerPoint{models.DefaultTriggerPoint()}),
		RepeatRule:     models.EncodeRepeatPattern(draft.Repeat),
		AlertConfig:    models.EncodeAlertConfig(models.DefaultAlertConfig()),
	}
}

func (h *Handlers) handleConfirm(ctx context.Context, callback *tgbotapi.CallbackQuery, userID int64) {
	if callback.From.ID != userID {
		return
	}

	h.mu.Lock()
	pending, ok := h.pending[userID]
	delete(h.pending, userID)
	h.mu.Unlock()

	chatID := callback.Message.Chat.ID
	if !ok || h.now().After(pending.expiresAt) {
		h.editMessageText(chatID, callback.Message.MessageID, "⏰ Confirmation expired, send the reminder again")
		return
	}

	if err := h.store.Create(ctx, pending.reminder); err != nil {
		log.Error().Err(err).Msg("failed to create reminder")
		h.editMessageText(chatID, callback.Message.MessageID, "Something went wrong, please try again")
		return
	}
	h.sched.ScheduleReminder(pending.reminder)

	h.editMessageText(chatID, callback.Message.MessageID,
		fmt.Sprintf("✅ Reminder #%d set for %s", pending.reminder.ID,
			pending.reminder.DueAt.Format("Mon, Jan 2 at 15:04")))
}

func (h *Handlers) handleCancel(callback *tgbotapi.CallbackQuery, userID int64) {
	if callback.From.ID != userID {
		return
	}
	h.mu.Lock()
	delete(h.pending, userID)
	h.mu.Unlock()
	h.editMessageText(callback.Message.Chat.ID, callback.Message.MessageID, "❌ Cancelled")
}

// handleAcknowledge records the ack that stops an alert series, then rolls a
// recurring reminder to its next occurrence or retires a one-time one.
func (h *Handlers) handleAcknowledge(ctx context.Context, callback *tgbotapi.CallbackQuery, reminderID int) {
	now := h.now()
	if err := h.store.SetAcknowledged(ctx, reminderID, now); err != nil {
		log.Error().Err(err).Int("reminder_id", reminderID).Msg("failed to acknowledge reminder")
		return
	}

	r, err := h.store.GetByID(ctx, reminderID)
	if err != nil || r == nil {
		return
	}
	if callback.From.ID != r.UserID {
		return
	}

	chatID := callback.Message.Chat.ID
	if next, ok := recurrence.Next(r.Repeat(), r.DueAt, now); ok {
		if err := h.store.SetDueAt(ctx, reminderID, next); err != nil {
			log.Error().Err(err).Int("reminder_id", reminderID).Msg("failed to roll reminder forward")
			return
		}
		r.DueAt = next
		r.AcknowledgedAt = nil
		h.sched.ScheduleReminder(r)
		h.editMessageText(chatID, callback.Message.MessageID,
			fmt.Sprintf("✅ Done. Next: %s", next.Format("Mon, Jan 2 at 15:04")))
		return
	}

	h.sched.CancelReminder(reminderID)
	if err := h.store.SetActive(ctx, reminderID, r.UserID, false); err != nil {
		log.Error().Err(err).Int("reminder_id", reminderID).Msg("failed to retire reminder")
	}
	h.editMessageText(chatID, callback.Message.MessageID, "✅ Done")
}

// handleList shows all reminders, or a filtered view: a numeric argument is
// a minimum importance, anything else is a category name.
func (h *Handlers) handleList(ctx context.Context, msg *tgbotapi.Message) {
	var (
		reminders []*models.Reminder
		err       error
	)
	switch arg := strings.TrimSpace(msg.CommandArguments()); {
	case arg == "":
		reminders, err = h.store.GetByUserID(ctx, msg.From.ID)
	default:
		if min, convErr := strconv.Atoi(arg); convErr == nil {
			reminders, err = h.store.GetByMinImportance(ctx, msg.From.ID, min)
		} else {
			reminders, err = h.store.GetByCategory(ctx, msg.From.ID, arg)
		}
	}
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Failed to load reminders, please try again")
		return
	}
	if len(reminders) == 0 {
		h.sendMessage(msg.Chat.ID, "⏰ No reminders yet")
		return
	}

	var sb strings.Builder
	sb.WriteString("⏰ **Your reminders**\n\n")
	for _, r := range reminders {
		status := "✅"
		if !r.Active {
			status = "⏸"
		}
		sb.WriteString(fmt.Sprintf("%s **%d.** %s\n", status, r.ID, r.Content))
		sb.WriteString(fmt.Sprintf("   📅 %s", r.DueAt.Format("Mon, Jan 2 at 15:04")))
		if pattern := r.Repeat(); pattern.IsRecurring() {
			sb.WriteString("  🔁 " + rrule.Describe(pattern))
		}
		sb.WriteString("\n\n")
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

// handleUpcoming lists everything firing within the next 7 days. Recurring
// reminders are projected onto their occurrences inside the window, so a
// daily reminder shows one line per day.
func (h *Handlers) handleUpcoming(ctx context.Context, msg *tgbotapi.Message) {
	now := h.now()
	until := now.AddDate(0, 0, 7)
	reminders, err := h.store.GetUpcoming(ctx, msg.From.ID, until)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Failed to load reminders, please try again")
		return
	}

	type occurrence struct {
		at time.Time
		r  *models.Reminder
	}
	var occs []occurrence
	for _, r := range reminders {
		pattern := r.Repeat()
		if !pattern.IsRecurring() {
			if r.DueAt.After(now) {
				occs = append(occs, occurrence{r.DueAt, r})
			}
			continue
		}
		for _, at := range recurrence.Future(pattern, r.DueAt, now, upcomingLimit) {
			if !at.Before(until) {
				break
			}
			occs = append(occs, occurrence{at, r})
		}
	}
	if len(occs) == 0 {
		h.sendMessage(msg.Chat.ID, "📅 Nothing due in the next 7 days")
		return
	}
	sort.Slice(occs, func(i, j int) bool { return occs[i].at.Before(occs[j].at) })

	var sb strings.Builder
	sb.WriteString("📅 **Next 7 days**\n\n")
	for _, o := range occs {
		sb.WriteString(fmt.Sprintf("**%d.** %s - %s\n", o.r.ID, o.r.Content, o.at.Format("Mon 15:04")))
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

// handleExport renders active reminders as RFC 5545 lines (DTSTART plus an
// RRULE for recurring ones) so they can be pasted into a calendar app.
func (h *Handlers) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	reminders, err := h.store.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Failed to load reminders, please try again")
		return
	}

	var sb strings.Builder
	sb.WriteString("📤 **Calendar export**\n\n")
	count := 0
	for _, r := range reminders {
		if !r.Active {
			continue
		}
		count++
		sb.WriteString(fmt.Sprintf("**%d.** %s\n", r.ID, r.Content))
		rule := rrule.String(r.Repeat(), r.DueAt)
		if rule == "" {
			rule = "DTSTART:" + r.DueAt.UTC().Format("20060102T150405Z")
		}
		for _, line := range strings.Split(rule, "\n") {
			sb.WriteString(format.EscapeCode(line) + "\n")
		}
	}
	if count == 0 {
		h.sendMessage(msg.Chat.ID, "📤 Nothing to export")
		return
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := h.parseID(msg)
	if !ok {
		return
	}
	if err := h.store.Delete(ctx, id, msg.From.ID); err != nil {
		h.sendMessage(msg.Chat.ID, "Failed to delete, please try again")
		return
	}
	h.sched.CancelReminder(id)
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 Reminder #%d deleted", id))
}

func (h *Handlers) handleSetActive(ctx context.Context, msg *tgbotapi.Message, active bool) {
	id, ok := h.parseID(msg)
	if !ok {
		return
	}
	if err := h.store.SetActive(ctx, id, msg.From.ID, active); err != nil {
		h.sendMessage(msg.Chat.ID, "Failed to update, please try again")
		return
	}

	if !active {
		h.sched.CancelReminder(id)
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("⏸ Reminder #%d paused", id))
		return
	}
	if r, err := h.store.GetByID(ctx, id); err == nil && r != nil {
		h.sched.ScheduleReminder(r)
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("▶️ Reminder #%d resumed", id))
}

func (h *Handlers) parseID(msg *tgbotapi.Message) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil || id <= 0 {
		h.sendMessage(msg.Chat.ID, "Give me a reminder id, e.g. `/delete 3`")
		return 0, false
	}
	return id, true
}

func newConfirmMessage(chatID int64, text string, userID int64) tgbotapi.MessageConfig {
	rendered := format.Render(text)
	msg := tgbotapi.NewMessage(chatID, rendered.Text)
	msg.Entities = rendered.Entities
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", fmt.Sprintf("confirm:%d", userID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", fmt.Sprintf("cancel:%d", userID)),
		),
	)
	return msg
}
