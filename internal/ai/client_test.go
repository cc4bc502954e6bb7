package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlin7245/remindly/internal/models"
)

func TestToDraft(t *testing.T) {
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

	draft, err := toDraft(reminderResult{
		Task:       "call the client",
		Category:   "Work",
		Priority:   9,
		DueTime:    "2024-06-13 15:00",
		Repeat:     "none",
		Confidence: 0.95,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "call the client", draft.Task)
	assert.Equal(t, "Work", draft.Category)
	assert.Equal(t, 9, draft.Priority)
	require.True(t, draft.HasDue)
	assert.Equal(t, time.Date(2024, 6, 13, 15, 0, 0, 0, time.UTC), draft.DueAt)
	assert.Equal(t, models.RepeatNone, draft.Repeat.Kind)
}

func TestToDraftDefaults(t *testing.T) {
	now := time.Now()

	draft, err := toDraft(reminderResult{Task: "water plants", Priority: 0}, now)
	require.NoError(t, err)
	assert.Equal(t, "Personal", draft.Category)
	assert.Equal(t, 5, draft.Priority)
	assert.False(t, draft.HasDue)
}

func TestToDraftCustomWeekdays(t *testing.T) {
	draft, err := toDraft(reminderResult{
		Task:     "gym",
		Repeat:   "custom",
		Weekdays: []string{"tuesday", "thursday"},
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.RepeatCustom, draft.Repeat.Kind)
	assert.Equal(t, []time.Weekday{time.Tuesday, time.Thursday}, draft.Repeat.Weekdays)
}

func TestToDraftAcceptsRRuleString(t *testing.T) {
	draft, err := toDraft(reminderResult{
		Task:   "standup",
		Repeat: "FREQ=WEEKLY;INTERVAL=2",
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.RepeatWeekly, draft.Repeat.Kind)
	assert.Equal(t, 2, draft.Repeat.Interval)
}

func TestToDraftRejectsBadInput(t *testing.T) {
	_, err := toDraft(reminderResult{Task: "   "}, time.Now())
	assert.Error(t, err)

	_, err = toDraft(reminderResult{Task: "x", DueTime: "tomorrowish"}, time.Now())
	assert.Error(t, err)
}
