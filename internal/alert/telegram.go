package alert

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/wlin7245/remindly/internal/format"
	"github.com/wlin7245/remindly/internal/models"
)

// MessageStore remembers the last notification message per reminder so a
// re-fire replaces it instead of stacking up in the chat.
type MessageStore interface {
	GetByID(ctx context.Context, id int) (*models.Reminder, error)
	SetLastMessageID(ctx context.Context, id int, messageID int) error
}

// BotSender is the slice of the Telegram client the notifier uses.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// TelegramNotifier delivers reminder notifications as Telegram messages with
// an acknowledge button.
type TelegramNotifier struct {
	bot   BotSender
	store MessageStore
}

func NewTelegramNotifier(bot BotSender, store MessageStore) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, store: store}
}

func (t *TelegramNotifier) Notify(ctx context.Context, n Notification) error {
	t.deletePrevious(ctx, n.ReminderID)

	text := fmt.Sprintf("🔔 **%s**", n.Content)
	if n.Category != "" {
		text += fmt.Sprintf("\n📂 %s", n.Category)
	}
	if n.Importance > 0 {
		text += fmt.Sprintf("  ⭐ %d/10", n.Importance)
	}
	if n.Attempt > 1 {
		text += fmt.Sprintf("\n⏰ reminder %d", n.Attempt)
	}

	rendered := format.Render(text)
	msg := tgbotapi.NewMessage(n.UserID, rendered.Text)
	msg.Entities = rendered.Entities
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Got it", fmt.Sprintf("remind_ack:%d", n.ReminderID)),
		),
	)

	sent, err := t.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if t.store != nil {
		if err := t.store.SetLastMessageID(ctx, n.ReminderID, sent.MessageID); err != nil {
			log.Warn().Err(err).Int("reminder_id", n.ReminderID).Msg("failed to remember notification message")
		}
	}
	return nil
}

// deletePrevious drops the prior notification message for the reminder, if
// one is recorded. Failures are expected (already deleted, too old) and only
// logged at debug.
func (t *TelegramNotifier) deletePrevious(ctx context.Context, reminderID int) {
	if t.store == nil {
		return
	}
	r, err := t.store.GetByID(ctx, reminderID)
	if err != nil || r == nil || r.LastMessageID == nil {
		return
	}
	if _, err := t.bot.Request(tgbotapi.NewDeleteMessage(r.UserID, *r.LastMessageID)); err != nil {
		log.Debug().Err(err).Int("reminder_id", reminderID).Msg("previous notification not deleted")
	}
}
