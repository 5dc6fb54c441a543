package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"WorkshopNotifier/internal/content"
	"WorkshopNotifier/internal/domain"
	"WorkshopNotifier/internal/store"
)

type fakeGen struct {
	res  content.Result
	err  error
	hits int
}

func (g *fakeGen) Generate(ctx context.Context, prompt string) (content.Result, error) {
	g.hits++
	return g.res, g.err
}

type fakeEmail struct {
	disabled bool
	fail     map[string]bool
	sent     []string
}

func (e *fakeEmail) Enabled() bool { return !e.disabled }

func (e *fakeEmail) Send(ctx context.Context, to, subject, html string) error {
	if e.fail[to] {
		return errors.New("mailbox unavailable")
	}
	e.sent = append(e.sent, to)
	return nil
}

type fakeChat struct {
	disabled bool
	fail     map[int64]bool
	pushes   []int64
}

func (c *fakeChat) Enabled() bool { return !c.disabled }

func (c *fakeChat) Push(ctx context.Context, chatID int64, text string) error {
	if c.fail[chatID] {
		return errors.New("chat unreachable")
	}
	c.pushes = append(c.pushes, chatID)
	return nil
}

func testNow() time.Time {
	return time.Date(2026, time.January, 14, 10, 0, 0, 0, domain.TargetZone)
}

func newTestService(st store.Store, gen content.Generator, email *fakeEmail, chat *fakeChat, admins []int64) *Service {
	s := &Service{
		store:   st,
		gen:     gen,
		email:   email,
		chat:    chat,
		admins:  admins,
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     zap.NewNop(),
		now:     testNow,
	}
	return s
}

func seedEvent(t *testing.T, st store.Store) *domain.Event {
	t.Helper()
	ev := &domain.Event{
		ID:       "e1",
		Title:    "AI 繪圖入門工作坊",
		Date:     "2026-01-15",
		Time:     "14:00",
		EndTime:  "17:00",
		Location: "線上 Google Meet",
		Status:   domain.EventStatusActive,
	}
	if err := st.CreateEvent(context.Background(), ev); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return ev
}

func seedSchedule(t *testing.T, st store.Store, id string) *domain.Schedule {
	t.Helper()
	sc := &domain.Schedule{
		ID:         id,
		EventID:    "e1",
		EventTitle: "AI 繪圖入門工作坊",
		EventDate:  "2026-01-15",
		Kind:       domain.KindReminder,
		DaysBefore: 1,
		Hour:       9,
		Minute:     0,
		Enabled:    true,
		CreatedAt:  testNow().Add(-time.Hour),
	}
	if err := st.CreateSchedule(context.Background(), sc); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	return sc
}

func seedRegistration(t *testing.T, st store.Store, id, email, status string) {
	t.Helper()
	err := st.CreateRegistration(context.Background(), &domain.Registration{
		ID: id, EventID: "e1", Name: id, Email: email, Status: status,
	})
	if err != nil {
		t.Fatalf("seed registration: %v", err)
	}
}

func TestExecutePartialFailure(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedEvent(t, st)
	seedSchedule(t, st, "s1")
	seedRegistration(t, st, "r1", "a@example.com", domain.RegistrationConfirmed)
	seedRegistration(t, st, "r2", "b@example.com", domain.RegistrationConfirmed)
	seedRegistration(t, st, "r3", "c@example.com", domain.RegistrationConfirmed)

	email := &fakeEmail{fail: map[string]bool{"b@example.com": true}}
	svc := newTestService(st, &fakeGen{res: content.Result{Text: "通知", Provider: "OpenAI"}}, email, &fakeChat{}, nil)

	res, err := svc.Execute(ctx, "s1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.SentCount != 2 || res.TotalCount != 3 {
		t.Fatalf("counts: sent=%d total=%d", res.SentCount, res.TotalCount)
	}
	if len(res.Errors) != 1 || res.Errors[0].Recipient != "b@example.com" || res.Errors[0].Channel != "email" {
		t.Fatalf("errors: %+v", res.Errors)
	}
	if res.Provider != "OpenAI" {
		t.Fatalf("provider: %q", res.Provider)
	}

	// Partial delivery still consumes the schedule.
	got, _ := st.Schedule(ctx, "s1")
	if !got.Fired || got.FiredAt == nil {
		t.Fatalf("schedule not consumed: %+v", got)
	}
	ev, _ := st.Event(ctx, "e1")
	if ev.Notifications != 1 {
		t.Fatalf("notification counter: %d", ev.Notifications)
	}
}

func TestExecuteAlreadyFiredIsNoOp(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedEvent(t, st)
	seedSchedule(t, st, "s1")
	seedRegistration(t, st, "r1", "a@example.com", domain.RegistrationConfirmed)

	email := &fakeEmail{}
	svc := newTestService(st, &fakeGen{res: content.Result{Text: "通知", Provider: "OpenAI"}}, email, &fakeChat{}, nil)

	if _, err := svc.Execute(ctx, "s1"); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if _, err := svc.Execute(ctx, "s1"); !errors.Is(err, ErrAlreadyFired) {
		t.Fatalf("want ErrAlreadyFired, got %v", err)
	}
	if len(email.sent) != 1 {
		t.Fatalf("second execution delivered: %d sends", len(email.sent))
	}
}

func TestExecuteMissingEventDoesNotConsume(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedSchedule(t, st, "s1") // no event seeded

	svc := newTestService(st, &fakeGen{}, &fakeEmail{}, &fakeChat{}, nil)
	if _, err := svc.Execute(ctx, "s1"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("want ErrEventNotFound, got %v", err)
	}
	got, _ := st.Schedule(ctx, "s1")
	if got.Fired {
		t.Fatal("schedule consumed despite missing event")
	}
}

func TestExecuteNoConfirmedRecipients(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedEvent(t, st)
	seedSchedule(t, st, "s1")
	seedRegistration(t, st, "r1", "a@example.com", domain.RegistrationPending)
	seedRegistration(t, st, "r2", "b@example.com", domain.RegistrationCancelled)

	svc := newTestService(st, &fakeGen{}, &fakeEmail{}, &fakeChat{}, nil)
	if _, err := svc.Execute(ctx, "s1"); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("want ErrNoRecipients, got %v", err)
	}
	got, _ := st.Schedule(ctx, "s1")
	if got.Fired {
		t.Fatal("schedule consumed despite empty recipient set")
	}
}

func TestExecuteTemplateFallback(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedEvent(t, st)
	seedSchedule(t, st, "s1")
	seedRegistration(t, st, "r1", "a@example.com", domain.RegistrationConfirmed)

	email := &fakeEmail{}
	svc := newTestService(st, &fakeGen{err: content.ErrNoProviders}, email, &fakeChat{}, nil)

	res, err := svc.Execute(ctx, "s1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// Delivery proceeds on the fixed template; no provider identity.
	if res.SentCount != 1 || res.Provider != "" {
		t.Fatalf("sent=%d provider=%q", res.SentCount, res.Provider)
	}
}

func TestExecuteChannelsFailIndependently(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedEvent(t, st)
	seedSchedule(t, st, "s1")
	seedRegistration(t, st, "r1", "a@example.com", domain.RegistrationConfirmed)
	seedRegistration(t, st, "r2", "b@example.com", domain.RegistrationConfirmed)
	if err := st.CreateChatBinding(ctx, &domain.ChatBinding{ID: "cb1", Email: "A@Example.com", ChatID: 42}); err != nil {
		t.Fatalf("seed binding: %v", err)
	}

	// Email fails for the bound recipient, chat succeeds: independent outcomes.
	email := &fakeEmail{fail: map[string]bool{"a@example.com": true}}
	chat := &fakeChat{}
	svc := newTestService(st, &fakeGen{res: content.Result{Text: "hi", Provider: "Gemini"}}, email, chat, nil)

	res, err := svc.Execute(ctx, "s1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.SentCount != 1 || res.TotalCount != 2 {
		t.Fatalf("email counts: %d/%d", res.SentCount, res.TotalCount)
	}
	// Binding matched case-insensitively and chat went through.
	if res.ChatSent != 1 || res.ChatTotal != 1 {
		t.Fatalf("chat counts: %d/%d", res.ChatSent, res.ChatTotal)
	}
	if len(chat.pushes) != 1 || chat.pushes[0] != 42 {
		t.Fatalf("chat pushes: %v", chat.pushes)
	}
}

func TestExecuteAdminSummary(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedEvent(t, st)
	seedSchedule(t, st, "s1")
	seedRegistration(t, st, "r1", "a@example.com", domain.RegistrationConfirmed)

	chat := &fakeChat{}
	svc := newTestService(st, &fakeGen{res: content.Result{Text: "ok", Provider: "OpenAI"}}, &fakeEmail{}, chat, []int64{7, 8})

	if _, err := svc.Execute(ctx, "s1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(chat.pushes) != 2 {
		t.Fatalf("admin pushes: %v", chat.pushes)
	}
}

func TestRunDueFiltersAndIsolates(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedEvent(t, st)
	seedRegistration(t, st, "r1", "a@example.com", domain.RegistrationConfirmed)

	seedSchedule(t, st, "due")

	// Due but pointing at a missing event: must fail without aborting the scan.
	broken := &domain.Schedule{
		ID: "broken", EventID: "ghost", EventTitle: "ghost", EventDate: "2026-01-15",
		Kind: domain.KindReminder, DaysBefore: 1, Hour: 9, Enabled: true,
		CreatedAt: testNow().Add(-2 * time.Hour),
	}
	if err := st.CreateSchedule(ctx, broken); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Not yet due: fires the day after testNow.
	future := &domain.Schedule{
		ID: "future", EventID: "e1", EventTitle: "t", EventDate: "2026-01-20",
		Kind: domain.KindReminder, DaysBefore: 1, Hour: 9, Enabled: true,
		CreatedAt: testNow(),
	}
	if err := st.CreateSchedule(ctx, future); err != nil {
		t.Fatalf("seed: %v", err)
	}

	email := &fakeEmail{}
	svc := newTestService(st, &fakeGen{res: content.Result{Text: "ok", Provider: "OpenAI"}}, email, &fakeChat{}, nil)

	scanned, fired := svc.RunDue(ctx)
	if scanned != 3 || fired != 1 {
		t.Fatalf("scanned=%d fired=%d", scanned, fired)
	}

	got, _ := st.Schedule(ctx, "due")
	if !got.Fired {
		t.Fatal("due schedule not consumed")
	}
	for _, id := range []string{"broken", "future"} {
		got, _ := st.Schedule(ctx, id)
		if got.Fired {
			t.Fatalf("schedule %s wrongly consumed", id)
		}
	}

	// A second scan no longer sees the fired schedule and sends nothing new.
	scanned, fired = svc.RunDue(ctx)
	if scanned != 2 || fired != 0 {
		t.Fatalf("second scan: scanned=%d fired=%d", scanned, fired)
	}
	if len(email.sent) != 1 {
		t.Fatalf("sends after two scans: %d", len(email.sent))
	}
}

func TestExecuteEmailDisabled(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedEvent(t, st)
	seedSchedule(t, st, "s1")
	seedRegistration(t, st, "r1", "a@example.com", domain.RegistrationConfirmed)

	svc := newTestService(st, &fakeGen{res: content.Result{Text: "ok", Provider: "OpenAI"}}, &fakeEmail{disabled: true}, &fakeChat{}, nil)

	res, err := svc.Execute(ctx, "s1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// The capability is skipped, the dispatch still completes and consumes.
	if res.SentCount != 0 || res.TotalCount != 1 || len(res.Errors) != 1 {
		t.Fatalf("result: %+v", res)
	}
	got, _ := st.Schedule(ctx, "s1")
	if !got.Fired {
		t.Fatal("schedule not consumed with email disabled")
	}
}
