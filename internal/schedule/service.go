// Package schedule implements the notification dispatch engine: the trigger
// poller, the executor shared by automatic and manual dispatch, and the
// operator HTTP surface.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"WorkshopNotifier/internal/config"
	"WorkshopNotifier/internal/content"
	"WorkshopNotifier/internal/delivery"
	"WorkshopNotifier/internal/domain"
	"WorkshopNotifier/internal/store"
)

var (
	// ErrAlreadyFired rejects dispatch of a consumed schedule.
	ErrAlreadyFired = errors.New("schedule already fired")
	// ErrEventNotFound aborts dispatch without consuming the schedule.
	ErrEventNotFound = errors.New("event not found")
	// ErrNoRecipients aborts dispatch without consuming the schedule, so the
	// schedule stays pending until registrations confirm or an operator acts.
	ErrNoRecipients = errors.New("no confirmed recipients")
)

// emailSendInterval is the fixed spacing between consecutive emails of one
// batch, respecting the provider's throughput ceiling. The first email of a
// batch is not delayed.
const emailSendInterval = 1500 * time.Millisecond

// Service executes schedules. The poller and the operator "run now" endpoint
// both go through Execute/dispatch, so manual and automatic dispatch cannot
// diverge.
type Service struct {
	store   store.Store
	gen     content.Generator
	email   delivery.EmailProvider
	chat    delivery.ChatProvider
	admins  []int64
	limiter *rate.Limiter
	log     *zap.Logger
	now     func() time.Time
}

func NewService(
	st store.Store,
	gen content.Generator,
	email delivery.EmailProvider,
	chat delivery.ChatProvider,
	chatCfg *config.ChatConfig,
	log *zap.Logger,
) *Service {
	return &Service{
		store:   st,
		gen:     gen,
		email:   email,
		chat:    chat,
		admins:  chatCfg.AdminChatIDs,
		limiter: rate.NewLimiter(rate.Every(emailSendInterval), 1),
		log:     log,
		now:     time.Now,
	}
}

// Execute runs one schedule by id on behalf of an operator. A schedule that
// already fired is a no-op.
func (s *Service) Execute(ctx context.Context, id string) (*domain.DispatchResult, error) {
	sc, err := s.store.Schedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc.Fired {
		return nil, ErrAlreadyFired
	}
	return s.dispatch(ctx, sc)
}

// RunDue scans pending schedules, dispatches the due ones sequentially and
// reports how many were scanned and fired. One schedule's failure never
// aborts the scan or consumes that schedule.
func (s *Service) RunDue(ctx context.Context) (scanned, fired int) {
	pending, err := s.store.PendingSchedules(ctx)
	if err != nil {
		s.log.Error("load pending schedules", zap.Error(err))
		return 0, 0
	}
	now := s.now()
	for _, sc := range pending {
		due, err := sc.Due(now)
		if err != nil {
			s.log.Warn("skipping schedule with bad event date",
				zap.String("schedule", sc.ID), zap.String("event_date", sc.EventDate), zap.Error(err))
			continue
		}
		if !due {
			continue
		}
		res, err := s.dispatch(ctx, sc)
		if err != nil {
			s.log.Warn("dispatch failed",
				zap.String("schedule", sc.ID), zap.String("event", sc.EventTitle), zap.Error(err))
			continue
		}
		fired++
		s.log.Info("schedule dispatched",
			zap.String("schedule", sc.ID),
			zap.String("event", sc.EventTitle),
			zap.String("kind", string(sc.Kind)),
			zap.String("provider", res.Provider),
			zap.Int("sent", res.SentCount),
			zap.Int("total", res.TotalCount),
			zap.Int("chat_sent", res.ChatSent))
	}
	return len(pending), fired
}

// dispatch is the single execution path for a due schedule: resolve, compose,
// fan out, consume. Partial delivery failures are counted, not retried; the
// schedule is consumed as a process once fan-out completes.
func (s *Service) dispatch(ctx context.Context, sc *domain.Schedule) (*domain.DispatchResult, error) {
	ev, err := s.store.Event(ctx, sc.EventID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, sc.EventID)
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}

	recipients, err := s.resolveRecipients(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: event %s", ErrNoRecipients, ev.ID)
	}

	body, provider := s.composeBody(ctx, sc.Kind, ev)
	subject := subjectFor(sc.Kind, ev.Title)
	html := renderEmailHTML(subject, body)
	chatMsg := chatText(ev, body)

	res := &domain.DispatchResult{Provider: provider, TotalCount: len(recipients)}
	for _, r := range recipients {
		s.deliverOne(ctx, r, subject, html, chatMsg, res)
	}

	firedAt := s.now()
	consumed, err := s.store.MarkFired(ctx, sc.ID, firedAt)
	if err != nil {
		// Delivery already happened; surface the broken guard loudly but
		// still hand the caller its counts.
		s.log.Error("failed to mark schedule fired", zap.String("schedule", sc.ID), zap.Error(err))
	} else if !consumed {
		s.log.Warn("schedule was consumed concurrently", zap.String("schedule", sc.ID))
	} else {
		if err := s.store.UpdateEvent(ctx, ev.ID, domain.EventUpdate{NotificationsDelta: 1}); err != nil {
			s.log.Warn("failed to bump event notification counter", zap.String("event", ev.ID), zap.Error(err))
		}
	}
	res.Success = true

	s.notifyAdmins(ctx, sc, ev, res)
	return res, nil
}

// deliverOne attempts email and, when a chat binding exists, chat push for a
// single recipient. The two channels fail independently and one recipient's
// failure never touches the rest of the batch.
func (s *Service) deliverOne(ctx context.Context, r recipient, subject, html, chatMsg string, res *domain.DispatchResult) {
	if s.email.Enabled() {
		if err := s.limiter.Wait(ctx); err != nil {
			res.Errors = append(res.Errors, domain.DeliveryError{Recipient: r.Email, Channel: "email", Reason: err.Error()})
		} else if err := s.email.Send(ctx, r.Email, subject, html); err != nil {
			s.log.Warn("email delivery failed", zap.String("to", r.Email), zap.Error(err))
			res.Errors = append(res.Errors, domain.DeliveryError{Recipient: r.Email, Channel: "email", Reason: err.Error()})
		} else {
			res.SentCount++
		}
	} else {
		res.Errors = append(res.Errors, domain.DeliveryError{Recipient: r.Email, Channel: "email", Reason: delivery.ErrNotConfigured.Error()})
	}

	if r.ChatID != 0 && s.chat.Enabled() {
		res.ChatTotal++
		if err := s.chat.Push(ctx, r.ChatID, chatMsg); err != nil {
			s.log.Warn("chat delivery failed", zap.String("to", r.Email), zap.Int64("chat_id", r.ChatID), zap.Error(err))
			res.Errors = append(res.Errors, domain.DeliveryError{Recipient: r.Email, Channel: "chat", Reason: err.Error()})
		} else {
			res.ChatSent++
		}
	}
}

// composeBody asks the provider chain for the notification text and falls
// back to the fixed template on total failure.
func (s *Service) composeBody(ctx context.Context, kind domain.ScheduleKind, ev *domain.Event) (body, provider string) {
	out, err := s.gen.Generate(ctx, buildPrompt(kind, ev))
	if err != nil {
		s.log.Warn("content generation failed, using template", zap.String("event", ev.ID), zap.Error(err))
		return fallbackBody(kind, ev), ""
	}
	return out.Text, out.Provider
}

func (s *Service) notifyAdmins(ctx context.Context, sc *domain.Schedule, ev *domain.Event, res *domain.DispatchResult) {
	if !s.chat.Enabled() || len(s.admins) == 0 {
		return
	}
	summary := fmt.Sprintf("📨 排程通知已送出\n%s（%s）\nEmail：%d/%d",
		ev.Title, sc.Kind.Label(), res.SentCount, res.TotalCount)
	if res.ChatTotal > 0 {
		summary += fmt.Sprintf("\n推播：%d/%d", res.ChatSent, res.ChatTotal)
	}
	for _, id := range s.admins {
		if err := s.chat.Push(ctx, id, summary); err != nil {
			s.log.Warn("admin summary push failed", zap.Int64("chat_id", id), zap.Error(err))
		}
	}
}
