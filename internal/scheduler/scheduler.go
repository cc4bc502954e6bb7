// Package scheduler keeps the set of registered alarms consistent with the
// stored reminders: on every create, edit or delete it cancels every alarm
// slot for the reminder and re-registers one alarm per future trigger point.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wlin7245/remindly/internal/alarm"
	"github.com/wlin7245/remindly/internal/models"
)

// Registrar is the alarm facility the scheduler drives.
type Registrar interface {
	Register(key alarm.SlotKey, at time.Time, payload alarm.Payload)
	Cancel(key alarm.SlotKey)
	CancelAll(reminderID int)
}

// ActiveLister supplies the active reminders for boot-time re-registration.
type ActiveLister interface {
	GetActive(ctx context.Context) ([]*models.Reminder, error)
}

type Scheduler struct {
	alarms   Registrar
	repo     ActiveLister
	notifyCh chan struct{}
	now      func() time.Time
}

func New(alarms Registrar, repo ActiveLister) *Scheduler {
	return &Scheduler{
		alarms:   alarms,
		repo:     repo,
		notifyCh: make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Notify triggers a full resync. Non-blocking if one is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Start re-registers alarms for every active reminder (the process just came
// up, so nothing is registered yet), then resyncs on Notify until ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	s.resync(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return
		case <-s.notifyCh:
			s.resync(ctx)
		}
	}
}

func (s *Scheduler) resync(ctx context.Context) {
	if s.repo == nil {
		return
	}
	reminders, err := s.repo.GetActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load active reminders for resync")
		return
	}
	for _, r := range reminders {
		s.ScheduleReminder(r)
	}
	log.Info().Int("count", len(reminders)).Msg("rescheduled active reminders")
}

// ScheduleReminder cancels every alarm slot for the reminder, then registers
// one alarm per trigger point whose computed time is still in the future.
// Past triggers are skipped silently. After this returns, the live alarms
// for the id are exactly its current future trigger points.
func (s *Scheduler) ScheduleReminder(r *models.Reminder) {
	s.CancelReminder(r.ID)
	if !r.Active {
		return
	}

	now := s.now()
	snapshot := models.EncodeSnapshot(r.Snapshot())

	for i, tp := range r.Triggers() {
		if i >= alarm.SeriesSlot {
			log.Warn().Int("reminder_id", r.ID).Int("extra", len(r.Triggers())-alarm.SeriesSlot).
				Msg("trigger points beyond slot capacity ignored")
			break
		}

		at := tp.TriggerTime(r.DueAt)
		if !at.After(now) {
			log.Debug().Int("reminder_id", r.ID).Int("slot", i).Str("trigger", tp.Describe()).
				Msg("skipping past trigger point")
			continue
		}

		s.alarms.Register(alarm.SlotKey{ReminderID: r.ID, Slot: i}, at, alarm.Payload{
			ReminderID:  r.ID,
			Content:     r.Content,
			Snapshot:    snapshot,
			TriggerKind: tp.Kind,
			Flash:       tp.Flash,
			Sound:       tp.Sound,
			Vibration:   tp.Vibration,
		})
		log.Debug().Int("reminder_id", r.ID).Int("slot", i).Time("at", at).
			Str("trigger", tp.Describe()).Msg("alarm registered")
	}
}

// CancelReminder unregisters every possible alarm slot for the id, however
// many trigger points the reminder currently has.
func (s *Scheduler) CancelReminder(reminderID int) {
	s.alarms.CancelAll(reminderID)
}

// ArmSeries registers the reserved series slot for a repeat-until-
// acknowledged re-fire. The payload keeps the attempt counter so the
// dispatcher can stop at the configured maximum.
func (s *Scheduler) ArmSeries(snap models.Snapshot, at time.Time, attempt int) {
	s.alarms.Register(alarm.SlotKey{ReminderID: snap.ID, Slot: alarm.SeriesSlot}, at, alarm.Payload{
		ReminderID:    snap.ID,
		Content:       snap.Content,
		Snapshot:      models.EncodeSnapshot(snap),
		TriggerKind:   models.TriggerAtDueTime,
		Flash:         true,
		Sound:         true,
		Vibration:     true,
		SeriesAttempt: attempt,
	})
	log.Debug().Int("reminder_id", snap.ID).Int("attempt", attempt).Time("at", at).
		Msg("alert series re-armed")
}
