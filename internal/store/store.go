// Package store persists schedules, events and registrations behind one
// interface with two backends: MongoDB when reachable at startup, an
// in-process store otherwise. Callers never know which backend served a call.
package store

import (
	"context"
	"errors"
	"time"

	"WorkshopNotifier/internal/domain"
)

// ErrNotFound is returned for lookups of records that do not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the single data-access surface shared by the dispatch loop and the
// operator HTTP handlers.
type Store interface {
	// Backend names the active implementation, for the status endpoint.
	Backend() string

	CreateSchedule(ctx context.Context, s *domain.Schedule) error
	Schedule(ctx context.Context, id string) (*domain.Schedule, error)
	Schedules(ctx context.Context, eventID string) ([]*domain.Schedule, error)
	// PendingSchedules returns enabled, not-yet-fired schedules in stored order.
	PendingSchedules(ctx context.Context) ([]*domain.Schedule, error)
	UpdateSchedule(ctx context.Context, id string, upd domain.ScheduleUpdate) error
	DeleteSchedule(ctx context.Context, id string) error
	// MarkFired consumes a schedule. It only matches fired=false, so it
	// reports false when the schedule was already consumed by a racing
	// dispatch; it never unsets the flag.
	MarkFired(ctx context.Context, id string, at time.Time) (bool, error)

	CreateEvent(ctx context.Context, e *domain.Event) error
	Event(ctx context.Context, id string) (*domain.Event, error)
	Events(ctx context.Context) ([]*domain.Event, error)
	UpdateEvent(ctx context.Context, id string, upd domain.EventUpdate) error

	CreateRegistration(ctx context.Context, r *domain.Registration) error
	Registrations(ctx context.Context, eventID string) ([]*domain.Registration, error)

	CreateChatBinding(ctx context.Context, b *domain.ChatBinding) error
	ChatBindings(ctx context.Context) ([]*domain.ChatBinding, error)
}
