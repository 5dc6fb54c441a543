package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"WorkshopNotifier/internal/domain"
)

// memoryStore is the degraded in-process backend used when MongoDB is
// unreachable at startup. Data does not survive a restart.
type memoryStore struct {
	mu            sync.RWMutex
	schedules     map[string]*domain.Schedule
	events        map[string]*domain.Event
	registrations map[string]*domain.Registration
	bindings      map[string]*domain.ChatBinding
}

// NewMemory returns an empty in-process store.
func NewMemory() Store {
	return &memoryStore{
		schedules:     make(map[string]*domain.Schedule),
		events:        make(map[string]*domain.Event),
		registrations: make(map[string]*domain.Registration),
		bindings:      make(map[string]*domain.ChatBinding),
	}
}

func (s *memoryStore) Backend() string { return "memory" }

func (s *memoryStore) CreateSchedule(ctx context.Context, sc *domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	cp := *sc
	s.schedules[sc.ID] = &cp
	return nil
}

func (s *memoryStore) Schedule(ctx context.Context, id string) (*domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

func (s *memoryStore) Schedules(ctx context.Context, eventID string) ([]*domain.Schedule, error) {
	return s.filterSchedules(func(sc *domain.Schedule) bool {
		return eventID == "" || sc.EventID == eventID
	}), nil
}

func (s *memoryStore) PendingSchedules(ctx context.Context) ([]*domain.Schedule, error) {
	return s.filterSchedules(func(sc *domain.Schedule) bool {
		return sc.Enabled && !sc.Fired
	}), nil
}

func (s *memoryStore) filterSchedules(keep func(*domain.Schedule) bool) []*domain.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Schedule
	for _, sc := range s.schedules {
		if keep(sc) {
			cp := *sc
			out = append(out, &cp)
		}
	}
	// Stored order for maps is arbitrary; creation time keeps ticks deterministic.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *memoryStore) UpdateSchedule(ctx context.Context, id string, upd domain.ScheduleUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[id]
	if !ok {
		return ErrNotFound
	}
	if upd.EventTitle != nil {
		sc.EventTitle = *upd.EventTitle
	}
	if upd.EventDate != nil {
		sc.EventDate = *upd.EventDate
	}
	if upd.DaysBefore != nil {
		sc.DaysBefore = *upd.DaysBefore
	}
	if upd.DaysAfter != nil {
		sc.DaysAfter = *upd.DaysAfter
	}
	if upd.Hour != nil {
		sc.Hour = *upd.Hour
	}
	if upd.Minute != nil {
		sc.Minute = *upd.Minute
	}
	if upd.Enabled != nil {
		sc.Enabled = *upd.Enabled
	}
	return nil
}

func (s *memoryStore) DeleteSchedule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		return ErrNotFound
	}
	delete(s.schedules, id)
	return nil
}

func (s *memoryStore) MarkFired(ctx context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[id]
	if !ok {
		return false, ErrNotFound
	}
	if sc.Fired {
		return false, nil
	}
	sc.Fired = true
	sc.FiredAt = &at
	return true, nil
}

func (s *memoryStore) CreateEvent(ctx context.Context, e *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *memoryStore) Event(ctx context.Context, id string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memoryStore) Events(ctx context.Context) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Event, 0, len(s.events))
	for _, e := range s.events {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) UpdateEvent(ctx context.Context, id string, upd domain.EventUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.Time != nil {
		e.Time = *upd.Time
	}
	if upd.EndTime != nil {
		e.EndTime = *upd.EndTime
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.MaxParticipants != nil {
		e.MaxParticipants = *upd.MaxParticipants
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}
	if upd.InstructorName != nil {
		e.InstructorName = *upd.InstructorName
	}
	e.Registrations += upd.RegistrationsDelta
	e.Notifications += upd.NotificationsDelta
	return nil
}

func (s *memoryStore) CreateRegistration(ctx context.Context, r *domain.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	cp := *r
	s.registrations[r.ID] = &cp
	return nil
}

func (s *memoryStore) Registrations(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Registration
	for _, r := range s.registrations {
		if eventID == "" || r.EventID == eventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) CreateChatBinding(ctx context.Context, b *domain.ChatBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	cp := *b
	s.bindings[b.ID] = &cp
	return nil
}

func (s *memoryStore) ChatBindings(ctx context.Context) ([]*domain.ChatBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ChatBinding, 0, len(s.bindings))
	for _, b := range s.bindings {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}
