package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlin7245/remindly/internal/models"
)

func TestNextNone(t *testing.T) {
	due := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	_, ok := Next(models.RepeatPattern{Kind: models.RepeatNone, Interval: 3}, due, due)
	assert.False(t, ok, "kind NONE never recurs, whatever the interval says")

	_, ok = Next(models.RepeatPattern{}, due, due)
	assert.False(t, ok)
}

func TestNextDailyInterval(t *testing.T) {
	due := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := models.RepeatPattern{Kind: models.RepeatDaily, Interval: 2}

	next, ok := Next(p, due, due)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC), next)

	// An `after` before the due time yields the due time itself.
	next, ok = Next(p, due, due.Add(-time.Hour))
	require.True(t, ok)
	assert.Equal(t, due, next)
}

func TestNextLinearKinds(t *testing.T) {
	due := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		p    models.RepeatPattern
		want time.Time
	}{
		{"minutely x30", models.RepeatPattern{Kind: models.RepeatMinutely, Interval: 30}, due.Add(30 * time.Minute)},
		{"hourly", models.RepeatPattern{Kind: models.RepeatHourly, Interval: 1}, due.Add(time.Hour)},
		{"weekly x2", models.RepeatPattern{Kind: models.RepeatWeekly, Interval: 2}, due.AddDate(0, 0, 14)},
		{"yearly", models.RepeatPattern{Kind: models.RepeatYearly, Interval: 1}, due.AddDate(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := Next(tt.p, due, due)
			require.True(t, ok)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestNextMonthlyClampsToMonthEnd(t *testing.T) {
	due := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	p := models.RepeatPattern{Kind: models.RepeatMonthly, Interval: 1}

	next, ok := Next(p, due, due)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC), next, "2024 is a leap year")

	// Non-leap year clamps to Feb 28.
	due23 := time.Date(2023, 1, 31, 9, 0, 0, 0, time.UTC)
	next, ok = Next(p, due23, due23)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 2, 28, 9, 0, 0, 0, time.UTC), next)
}

func TestNextYearlyLeapDay(t *testing.T) {
	due := time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)
	p := models.RepeatPattern{Kind: models.RepeatYearly, Interval: 1}

	next, ok := Next(p, due, due)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 2, 28, 8, 0, 0, 0, time.UTC), next)
}

func TestNextCustomWeekdays(t *testing.T) {
	// 2024-01-01 is a Monday.
	due := time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC)
	p := models.RepeatPattern{
		Kind:     models.RepeatCustom,
		Interval: 1,
		Weekdays: []time.Weekday{time.Wednesday, time.Friday},
	}

	next, ok := Next(p, due, due)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 3, 18, 30, 0, 0, time.UTC), next, "Wednesday")

	next, ok = Next(p, due, next)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 18, 30, 0, 0, time.UTC), next, "Friday")

	next, ok = Next(p, due, next)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC), next, "next Wednesday")
}

func TestNextCustomWithoutWeekdaysFallsBackToDaily(t *testing.T) {
	due := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := models.RepeatPattern{Kind: models.RepeatCustom, Interval: 3}

	next, ok := Next(p, due, due)
	require.True(t, ok)
	assert.Equal(t, due.AddDate(0, 0, 3), next)
}

func TestNextRespectsEndDate(t *testing.T) {
	due := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := models.RepeatPattern{Kind: models.RepeatDaily, Interval: 1, EndDate: "2024-01-03"}

	// Jan 3 09:00 is still before end-of-day Jan 3.
	next, ok := Next(p, due, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC), next)

	_, ok = Next(p, due, next)
	assert.False(t, ok, "no occurrences past the end date")
}

func TestFuture(t *testing.T) {
	due := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := models.RepeatPattern{Kind: models.RepeatDaily, Interval: 1}
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	got := Future(p, due, now, 5)
	require.Len(t, got, 5)
	for i, occ := range got {
		assert.True(t, occ.After(now), "occurrence %d must be strictly after now", i)
	}
	assert.Equal(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC), got[0])
	assert.Equal(t, time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC), got[4])
}

func TestFutureBoundedByEndDate(t *testing.T) {
	due := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := models.RepeatPattern{Kind: models.RepeatDaily, Interval: 1, EndDate: "2024-01-04"}

	got := Future(p, due, due, 10)
	assert.Len(t, got, 3, "Jan 2, 3, 4 then the end date cuts off")
}

func TestFutureEmptyCases(t *testing.T) {
	due := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	assert.Nil(t, Future(models.RepeatPattern{Kind: models.RepeatNone}, due, due, 5))
	assert.Nil(t, Future(models.RepeatPattern{Kind: models.RepeatDaily, Interval: 1}, due, due, 0))
}
