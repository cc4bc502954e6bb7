package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlin7245/remindly/internal/alarm"
	"github.com/wlin7245/remindly/internal/models"
)

type fakeChannels struct {
	mu       sync.Mutex
	flashes  int
	vibes    int
	sounds   int
	notifies []Notification
	emails   []models.Snapshot

	flashErr  error
	notifyErr error
}

func (f *fakeChannels) Flash(context.Context, FlashPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flashes++
	return f.flashErr
}

func (f *fakeChannels) Vibrate(context.Context, VibrationPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vibes++
	return nil
}

func (f *fakeChannels) Play(context.Context, models.SoundConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sounds++
	return nil
}

func (f *fakeChannels) Notify(_ context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifies = append(f.notifies, n)
	return f.notifyErr
}

func (f *fakeChannels) Send(_ context.Context, snap models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, snap)
	return nil
}

type fakeArmer struct {
	mu       sync.Mutex
	attempts []int
	at       []time.Time
}

func (f *fakeArmer) ArmSeries(_ models.Snapshot, at time.Time, attempt int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, attempt)
	f.at = append(f.at, at)
}

type fakeSource struct {
	reminder *models.Reminder
	err      error
}

func (f *fakeSource) GetByID(context.Context, int) (*models.Reminder, error) {
	return f.reminder, f.err
}

func payloadFor(snap models.Snapshot, kind models.TriggerKind) alarm.Payload {
	return alarm.Payload{
		ReminderID:  snap.ID,
		Content:     snap.Content,
		Snapshot:    models.EncodeSnapshot(snap),
		TriggerKind: kind,
		Flash:       true,
		Sound:       true,
		Vibration:   true,
	}
}

func seriesSnapshot(id int, series models.AlertSeries) models.Snapshot {
	cfg := models.DefaultAlertConfig()
	cfg.Series = series
	return models.Snapshot{
		ID:          id,
		UserID:      100,
		Content:     "take medication",
		Category:    "Health",
		Importance:  8,
		DueAt:       time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		AlertConfig: models.EncodeAlertConfig(cfg),
	}
}

func TestDispatchRunsEveryChannel(t *testing.T) {
	ch := &fakeChannels{}
	d := NewDispatcher(ch, ch, ch, ch, WithEmail(ch))

	snap := seriesSnapshot(1, models.AlertSeries{})
	d.HandleAlarm(payloadFor(snap, models.TriggerAtDueTime))

	assert.Equal(t, 1, ch.flashes)
	assert.Equal(t, 1, ch.vibes)
	assert.Equal(t, 1, ch.sounds)
	require.Len(t, ch.notifies, 1)
	assert.Equal(t, "take medication", ch.notifies[0].Content)
	assert.Equal(t, int64(100), ch.notifies[0].UserID)
	require.Len(t, ch.emails, 1)
	assert.Equal(t, 1, ch.emails[0].ID)
}

func TestFailingChannelDoesNotBlockOthers(t *testing.T) {
	ch := &fakeChannels{flashErr: errors.New("bulb burned out")}
	d := NewDispatcher(ch, ch, ch, ch, WithEmail(ch))

	d.HandleAlarm(payloadFor(seriesSnapshot(2, models.AlertSeries{}), models.TriggerAtDueTime))

	assert.Equal(t, 1, ch.flashes)
	assert.Equal(t, 1, ch.vibes)
	assert.Equal(t, 1, ch.sounds)
	assert.Len(t, ch.notifies, 1)
	assert.Len(t, ch.emails, 1)
}

func TestDisabledChannelsSkipped(t *testing.T) {
	ch := &fakeChannels{}
	d := NewDispatcher(ch, ch, ch, ch)

	p := payloadFor(seriesSnapshot(3, models.AlertSeries{}), models.TriggerAtDueTime)
	p.Flash = false
	p.Vibration = false
	d.HandleAlarm(p)

	assert.Equal(t, 0, ch.flashes)
	assert.Equal(t, 0, ch.vibes)
	assert.Equal(t, 1, ch.sounds)
	assert.Len(t, ch.notifies, 1, "notification is unconditional")
}

func TestBusyGateDropsConcurrentSequences(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ch := &fakeChannels{}
	d := NewDispatcher(ch, ch, ch, ch, WithDispatcherClock(func() time.Time { return now }))

	p := payloadFor(seriesSnapshot(4, models.AlertSeries{}), models.TriggerAtDueTime)
	d.HandleAlarm(p)
	d.HandleAlarm(p)

	assert.Equal(t, 1, ch.flashes, "second sequence dropped while first in flight")
	assert.Len(t, ch.notifies, 2, "notifications bypass the gate")

	// Past the sequence window the gate opens again.
	now = now.Add(FlashFor(models.TriggerAtDueTime).Total() + time.Second)
	d.HandleAlarm(p)
	assert.Equal(t, 2, ch.flashes)
}

func TestSilentFireLeavesGateOpen(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ch := &fakeChannels{}
	d := NewDispatcher(ch, ch, ch, ch, WithDispatcherClock(func() time.Time { return now }))

	silent := payloadFor(seriesSnapshot(8, models.AlertSeries{}), models.TriggerAtDueTime)
	silent.Flash = false
	silent.Sound = false
	silent.Vibration = false
	d.HandleAlarm(silent)

	d.HandleAlarm(payloadFor(seriesSnapshot(9, models.AlertSeries{}), models.TriggerAtDueTime))

	assert.Equal(t, 1, ch.flashes, "silent fire must not claim the sequence gate")
	assert.Len(t, ch.notifies, 2)
}

func TestCorruptSnapshotStillNotifies(t *testing.T) {
	ch := &fakeChannels{}
	d := NewDispatcher(ch, ch, ch, ch, WithEmail(ch))

	d.HandleAlarm(alarm.Payload{
		ReminderID:  5,
		Content:     "water plants",
		Snapshot:    "{not json",
		TriggerKind: models.TriggerAtDueTime,
		Flash:       true,
	})

	require.Len(t, ch.notifies, 1)
	assert.Equal(t, "water plants", ch.notifies[0].Content)
	assert.Empty(t, ch.emails, "no email without a snapshot")
}

func TestSeriesReArmsUntilMaxAttempts(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ch := &fakeChannels{}
	armer := &fakeArmer{}
	src := &fakeSource{reminder: &models.Reminder{ID: 6, Active: true}}
	d := NewDispatcher(ch, ch, ch, ch,
		WithSeries(armer, src),
		WithDispatcherClock(func() time.Time { return now }))

	snap := seriesSnapshot(6, models.AlertSeries{
		Enabled:           true,
		MaxAttempts:       2,
		IntervalMinutes:   5,
		StopOnAcknowledge: true,
	})

	p := payloadFor(snap, models.TriggerAtDueTime)
	d.HandleAlarm(p)
	require.Equal(t, []int{1}, armer.attempts)
	assert.Equal(t, now.Add(5*time.Minute), armer.at[0])

	p.SeriesAttempt = 1
	d.HandleAlarm(p)
	require.Equal(t, []int{1, 2}, armer.attempts)

	p.SeriesAttempt = 2
	d.HandleAlarm(p)
	assert.Equal(t, []int{1, 2}, armer.attempts, "stops after max attempts")
}

func TestSeriesStopsOnAcknowledge(t *testing.T) {
	ack := time.Now()
	ch := &fakeChannels{}
	armer := &fakeArmer{}
	src := &fakeSource{reminder: &models.Reminder{ID: 7, Active: true, AcknowledgedAt: &ack}}
	d := NewDispatcher(ch, ch, ch, ch, WithSeries(armer, src))

	snap := seriesSnapshot(7, models.AlertSeries{
		Enabled:           true,
		MaxAttempts:       3,
		IntervalMinutes:   5,
		StopOnAcknowledge: true,
	})
	d.HandleAlarm(payloadFor(snap, models.TriggerAtDueTime))

	assert.Empty(t, armer.attempts)
	assert.Len(t, ch.notifies, 1, "the fired alert itself still goes out")
}

func TestSeriesDisabledNeverArms(t *testing.T) {
	ch := &fakeChannels{}
	armer := &fakeArmer{}
	d := NewDispatcher(ch, ch, ch, ch, WithSeries(armer, &fakeSource{}))

	d.HandleAlarm(payloadFor(seriesSnapshot(8, models.AlertSeries{}), models.TriggerAtDueTime))
	assert.Empty(t, armer.attempts)
}
