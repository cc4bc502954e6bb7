// Package alarm provides slot-keyed registration of absolute-time callbacks,
// standing in for a platform alarm facility. Exact registrations get a
// dedicated timer each; when exact scheduling is unavailable the service
// degrades to a coarse scan queue checked once a minute, and a registration
// is dropped (logged, never surfaced) only when every tier fails.
package alarm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wlin7245/remindly/internal/models"
)

// MaxSlots is the number of alarm slots reserved per reminder id. Cancelling
// a reminder sweeps every slot unconditionally so edits that reduce the
// trigger count can never leave a stale alarm behind.
const MaxSlots = 10

// SeriesSlot is reserved for alert-series re-arms; trigger points may only
// occupy slots below it.
const SeriesSlot = MaxSlots - 1

// SlotKey identifies one alarm registration. Keys are deterministic per
// (reminder, slot) pair, so re-registering a slot replaces it.
type SlotKey struct {
	ReminderID int
	Slot       int
}

// Payload is the opaque data carried from registration to firing.
type Payload struct {
	ReminderID    int                `json:"reminder_id"`
	Content       string             `json:"content"`
	Snapshot      string             `json:"snapshot,omitempty"`
	TriggerKind   models.TriggerKind `json:"trigger_kind"`
	Flash         bool               `json:"flash"`
	Sound         bool               `json:"sound"`
	Vibration     bool               `json:"vibration"`
	SeriesAttempt int                `json:"series_attempt,omitempty"`
}

// Handler receives fired payloads. It runs on its own goroutine and must not
// assume any other component is alive.
type Handler func(Payload)

var errExactUnavailable = errors.New("exact scheduling unavailable")

type entry struct {
	at      time.Time
	payload Payload
}

// Service owns all live registrations.
type Service struct {
	handler Handler

	mu     sync.Mutex
	timers map[SlotKey]*time.Timer
	coarse map[SlotKey]entry
	closed bool

	// allowExact and maxExact model the platform's exact-alarm permission
	// and budget; exceeding either routes registrations to the coarse tier.
	allowExact bool
	maxExact   int

	scanEvery time.Duration
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithExactAlarms toggles the exact tier; when off, everything lands in the
// coarse queue.
func WithExactAlarms(allowed bool) Option {
	return func(s *Service) { s.allowExact = allowed }
}

// WithExactBudget caps the number of concurrent exact timers.
func WithExactBudget(n int) Option {
	return func(s *Service) { s.maxExact = n }
}

// WithScanInterval overrides the coarse queue scan cadence.
func WithScanInterval(d time.Duration) Option {
	return func(s *Service) { s.scanEvery = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service delivering fired payloads to handler.
func New(handler Handler, opts ...Option) *Service {
	s := &Service{
		handler:    handler,
		timers:     make(map[SlotKey]*time.Timer),
		coarse:     make(map[SlotKey]entry),
		allowExact: true,
		maxExact:   256,
		scanEvery:  time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the coarse queue scan loop until ctx is cancelled, then stops
// every live timer.
func (s *Service) Start(ctx context.Context) {
	ticker := time.NewTicker(s.scanEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case <-ticker.C:
			s.scan()
		}
	}
}

// Register schedules the payload to fire at the given instant, replacing any
// existing registration for the key. Registration cascades through exact,
// coarse and basic tiers; only total exhaustion drops it, with a log line.
func (s *Service) Register(key SlotKey, at time.Time, payload Payload) {
	s.Cancel(key)

	if err := s.registerExact(key, at, payload); err == nil {
		return
	} else if !errors.Is(err, errExactUnavailable) {
		log.Warn().Err(err).Int("reminder_id", key.ReminderID).Int("slot", key.Slot).
			Msg("exact alarm registration failed, falling back")
	}

	if err := s.registerCoarse(key, at, payload); err != nil {
		log.Error().Err(err).Int("reminder_id", key.ReminderID).Int("slot", key.Slot).
			Msg("all alarm registration tiers failed, dropping trigger")
	}
}

func (s *Service) registerExact(key SlotKey, at time.Time, payload Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("alarm service stopped")
	}
	if !s.allowExact || len(s.timers) >= s.maxExact {
		return errExactUnavailable
	}

	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.fire(key, payload)
	})
	return nil
}

func (s *Service) registerCoarse(key SlotKey, at time.Time, payload Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("alarm service stopped")
	}
	s.coarse[key] = entry{at: at, payload: payload}
	return nil
}

// Cancel removes the registration for the key, if any.
func (s *Service) Cancel(key SlotKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	delete(s.coarse, key)
}

// CancelAll removes every possible slot for the reminder id, independent of
// how many are actually registered.
func (s *Service) CancelAll(reminderID int) {
	for slot := 0; slot < MaxSlots; slot++ {
		s.Cancel(SlotKey{ReminderID: reminderID, Slot: slot})
	}
}

// Live returns the number of live registrations for the reminder id.
func (s *Service) Live(reminderID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for slot := 0; slot < MaxSlots; slot++ {
		key := SlotKey{ReminderID: reminderID, Slot: slot}
		if _, ok := s.timers[key]; ok {
			n++
		}
		if _, ok := s.coarse[key]; ok {
			n++
		}
	}
	return n
}

func (s *Service) fire(key SlotKey, payload Payload) {
	s.mu.Lock()
	delete(s.timers, key)
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		handler(payload)
	}
}

func (s *Service) scan() {
	now := s.now()

	s.mu.Lock()
	var due []Payload
	for key, e := range s.coarse {
		if !e.at.After(now) {
			due = append(due, e.payload)
			delete(s.coarse, key)
		}
	}
	handler := s.handler
	s.mu.Unlock()

	for _, p := range due {
		if handler != nil {
			go handler(p)
		}
	}
}

func (s *Service) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	for key := range s.coarse {
		delete(s.coarse, key)
	}
	log.Info().Msg("alarm service stopped")
}
