package alert

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlin7245/remindly/internal/models"
)

type fakeBot struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeStore struct {
	reminder *models.Reminder
	saved    map[int]int
}

func (f *fakeStore) GetByID(context.Context, int) (*models.Reminder, error) {
	return f.reminder, nil
}

func (f *fakeStore) SetLastMessageID(_ context.Context, id, messageID int) error {
	if f.saved == nil {
		f.saved = map[int]int{}
	}
	f.saved[id] = messageID
	return nil
}

func TestNotifySendsWithAckButton(t *testing.T) {
	bot := &fakeBot{}
	store := &fakeStore{reminder: &models.Reminder{ID: 1, UserID: 42}}
	n := NewTelegramNotifier(bot, store)

	err := n.Notify(context.Background(), Notification{
		ReminderID: 1,
		UserID:     42,
		Content:    "call dentist",
		Category:   "Health",
		Importance: 7,
	})
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)

	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "call dentist")
	assert.Contains(t, msg.Text, "Health")
	assert.NotContains(t, msg.Text, "**", "markdown markers stripped into entities")
	require.NotEmpty(t, msg.Entities)

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "remind_ack:1", *kb.InlineKeyboard[0][0].CallbackData)

	assert.Equal(t, 1, store.saved[1], "sent message id remembered")
}

func TestNotifyDeletesPreviousMessage(t *testing.T) {
	prev := 99
	bot := &fakeBot{}
	store := &fakeStore{reminder: &models.Reminder{ID: 2, UserID: 42, LastMessageID: &prev}}
	n := NewTelegramNotifier(bot, store)

	err := n.Notify(context.Background(), Notification{ReminderID: 2, UserID: 42, Content: "x"})
	require.NoError(t, err)
	require.Len(t, bot.requests, 1)

	del, ok := bot.requests[0].(tgbotapi.DeleteMessageConfig)
	require.True(t, ok)
	assert.Equal(t, prev, del.MessageID)
	assert.Equal(t, int64(42), del.ChatID)
}
