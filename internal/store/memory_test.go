package store

import (
	"context"
	"testing"
	"time"

	"WorkshopNotifier/internal/domain"
)

func TestMemoryPendingSchedules(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id string, enabled, fired bool, at time.Time) *domain.Schedule {
		return &domain.Schedule{ID: id, Kind: domain.KindReminder, Enabled: enabled, Fired: fired, CreatedAt: at}
	}
	for _, sc := range []*domain.Schedule{
		mk("b", true, false, base.Add(2*time.Hour)),
		mk("a", true, false, base.Add(time.Hour)),
		mk("disabled", false, false, base),
		mk("fired", true, true, base),
	} {
		if err := s.CreateSchedule(ctx, sc); err != nil {
			t.Fatalf("create %s: %v", sc.ID, err)
		}
	}

	pending, err := s.PendingSchedules(ctx)
	if err != nil {
		t.Fatalf("PendingSchedules: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("want 2 pending, got %d", len(pending))
	}
	// Creation order, not map order.
	if pending[0].ID != "a" || pending[1].ID != "b" {
		t.Fatalf("want [a b], got [%s %s]", pending[0].ID, pending[1].ID)
	}
}

func TestMemoryMarkFired(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	sc := &domain.Schedule{ID: "s1", Kind: domain.KindStart, Enabled: true}
	if err := s.CreateSchedule(ctx, sc); err != nil {
		t.Fatalf("create: %v", err)
	}

	at := time.Now()
	ok, err := s.MarkFired(ctx, "s1", at)
	if err != nil || !ok {
		t.Fatalf("first MarkFired: ok=%v err=%v", ok, err)
	}
	// Terminal: the second consumption attempt must not match.
	ok, err = s.MarkFired(ctx, "s1", at.Add(time.Minute))
	if err != nil {
		t.Fatalf("second MarkFired: %v", err)
	}
	if ok {
		t.Fatal("second MarkFired matched an already-fired schedule")
	}

	got, err := s.Schedule(ctx, "s1")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !got.Fired || got.FiredAt == nil || !got.FiredAt.Equal(at) {
		t.Fatalf("fired state not persisted: %+v", got)
	}

	pending, _ := s.PendingSchedules(ctx)
	if len(pending) != 0 {
		t.Fatalf("fired schedule still pending: %d", len(pending))
	}

	if _, err := s.MarkFired(ctx, "nope", at); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestMemoryEventCounters(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	ev := &domain.Event{ID: "e1", Title: "AI 繪圖入門工作坊", Status: domain.EventStatusActive}
	if err := s.CreateEvent(ctx, ev); err != nil {
		t.Fatalf("create event: %v", err)
	}
	if err := s.UpdateEvent(ctx, "e1", domain.EventUpdate{RegistrationsDelta: 1}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.UpdateEvent(ctx, "e1", domain.EventUpdate{NotificationsDelta: 1, RegistrationsDelta: 1}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Event(ctx, "e1")
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	if got.Registrations != 2 || got.Notifications != 1 {
		t.Fatalf("counters: regs=%d notifs=%d", got.Registrations, got.Notifications)
	}
}

func TestMemoryCopiesOnRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	if err := s.CreateSchedule(ctx, &domain.Schedule{ID: "s1", Kind: domain.KindReminder, Enabled: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _ := s.Schedule(ctx, "s1")
	got.Fired = true // mutate the copy
	again, _ := s.Schedule(ctx, "s1")
	if again.Fired {
		t.Fatal("read returned shared state")
	}
}
