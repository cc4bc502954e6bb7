package rrule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlin7245/remindly/internal/models"
)

func TestStringRendersRRule(t *testing.T) {
	dtstart := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	s := String(models.RepeatPattern{Kind: models.RepeatWeekly, Interval: 2}, dtstart)
	assert.Contains(t, s, "FREQ=WEEKLY")
	assert.Contains(t, s, "INTERVAL=2")

	s = String(models.RepeatPattern{
		Kind:     models.RepeatCustom,
		Weekdays: []time.Weekday{time.Monday, time.Friday},
	}, dtstart)
	assert.Contains(t, s, "FREQ=WEEKLY")
	assert.Contains(t, s, "BYDAY=MO,FR")

	assert.Empty(t, String(models.RepeatPattern{Kind: models.RepeatNone}, dtstart))
}

func TestParseRoundTrip(t *testing.T) {
	p, err := Parse("RRULE:FREQ=DAILY;INTERVAL=3")
	require.NoError(t, err)
	assert.Equal(t, models.RepeatDaily, p.Kind)
	assert.Equal(t, 3, p.Interval)

	p, err = Parse("FREQ=WEEKLY;BYDAY=MO,FR")
	require.NoError(t, err)
	assert.Equal(t, models.RepeatCustom, p.Kind)
	assert.ElementsMatch(t, []time.Weekday{time.Monday, time.Friday}, p.Weekdays)

	_, err = Parse("FREQ=SOMETIMES")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		p    models.RepeatPattern
		want string
	}{
		{"none", models.RepeatPattern{Kind: models.RepeatNone}, "one-time"},
		{"daily", models.RepeatPattern{Kind: models.RepeatDaily, Interval: 1}, "every day"},
		{"every 2 weeks", models.RepeatPattern{Kind: models.RepeatWeekly, Interval: 2}, "every 2 weeks"},
		{"weekday set", models.RepeatPattern{
			Kind:     models.RepeatCustom,
			Weekdays: []time.Weekday{time.Monday, time.Friday},
		}, "every Monday, Friday"},
		{"with end date", models.RepeatPattern{
			Kind: models.RepeatDaily, Interval: 1, EndDate: "2024-03-01",
		}, "every day until 2024-03-01"},
		{"custom without weekdays reads daily", models.RepeatPattern{
			Kind: models.RepeatCustom, Interval: 2,
		}, "every 2 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.p))
		})
	}
}
