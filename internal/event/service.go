// Package event manages workshop events and registrations, including the
// signup-time notifications (confirmation email to the registrant, push to
// the operators).
package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"WorkshopNotifier/internal/config"
	"WorkshopNotifier/internal/content"
	"WorkshopNotifier/internal/delivery"
	"WorkshopNotifier/internal/domain"
	"WorkshopNotifier/internal/store"
)

type Service struct {
	store  store.Store
	gen    content.Generator
	email  delivery.EmailProvider
	chat   delivery.ChatProvider
	admins []int64
	log    *zap.Logger
}

func NewService(
	st store.Store,
	gen content.Generator,
	email delivery.EmailProvider,
	chat delivery.ChatProvider,
	chatCfg *config.ChatConfig,
	log *zap.Logger,
) *Service {
	return &Service{store: st, gen: gen, email: email, chat: chat, admins: chatCfg.AdminChatIDs, log: log}
}

func (s *Service) CreateEvent(ctx context.Context, ev *domain.Event) error {
	if ev.Status == "" {
		ev.Status = domain.EventStatusDraft
	}
	ev.Registrations = 0
	ev.Notifications = 0
	ev.CreatedAt = time.Now()
	return s.store.CreateEvent(ctx, ev)
}

// Register creates a pending registration, bumps the event counter and sends
// the signup notifications in the background so the response is not blocked
// on provider latency.
func (s *Service) Register(ctx context.Context, reg *domain.Registration) (*domain.Registration, error) {
	ev, err := s.store.Event(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}

	reg.Status = domain.RegistrationPending
	reg.CreatedAt = time.Now()
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}
	if err := s.store.UpdateEvent(ctx, ev.ID, domain.EventUpdate{RegistrationsDelta: 1}); err != nil {
		s.log.Warn("failed to bump registration counter", zap.String("event", ev.ID), zap.Error(err))
	}

	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.sendRegistrationNotices(bg, reg, ev)
	}()
	return reg, nil
}

// sendRegistrationNotices mirrors dispatch-time channel discipline: both
// notices are attempted, each failure is logged and isolated.
func (s *Service) sendRegistrationNotices(ctx context.Context, reg *domain.Registration, ev *domain.Event) {
	if s.email.Enabled() {
		subject := "✅ 報名成功 - " + ev.Title
		if err := s.email.Send(ctx, reg.Email, subject, confirmationHTML(reg, ev)); err != nil {
			s.log.Warn("confirmation email failed", zap.String("to", reg.Email), zap.Error(err))
		}
	}
	if s.chat.Enabled() {
		text := fmt.Sprintf("🔔 <b>新報名通知</b>\n👤 %s\n📧 %s\n\n📅 %s\n報名人數：%d/%d",
			reg.Name, reg.Email, ev.Title, ev.Registrations+1, ev.MaxParticipants)
		for _, id := range s.admins {
			if err := s.chat.Push(ctx, id, text); err != nil {
				s.log.Warn("admin registration push failed", zap.Int64("chat_id", id), zap.Error(err))
			}
		}
	}
}

// GeneratePoster produces promotional copy for an event through the
// completion chain.
func (s *Service) GeneratePoster(ctx context.Context, ev *domain.Event, style string) (content.Result, error) {
	if style == "" {
		style = "社群貼文風格，活潑有趣，包含 emoji 和 hashtag"
	}
	prompt := fmt.Sprintf(`你是活動文案專家。請為以下工作坊撰寫%s的宣傳文案。

活動：%s
說明：%s
時間：%s %s
地點：%s
名額：%d 人

直接輸出文案，約150-250字。`,
		style, ev.Title, ev.Description, ev.Date, eventTimeRange(ev), ev.Location, ev.MaxParticipants)
	return s.gen.Generate(ctx, prompt)
}

func eventTimeRange(ev *domain.Event) string {
	if ev.EndTime != "" {
		return ev.Time + " - " + ev.EndTime
	}
	return ev.Time
}

func confirmationHTML(reg *domain.Registration, ev *domain.Event) string {
	body := fmt.Sprintf(`親愛的 %s 您好，
感謝您報名參加我們的活動，以下是您的報名資訊：

📅 %s
📆 日期：%s
⏰ 時間：%s
📍 地點：%s

如有任何問題，請回覆此信件聯繫我們。
期待在活動中見到您！`,
		reg.Name, ev.Title, ev.Date, eventTimeRange(ev), ev.Location)
	return fmt.Sprintf(`<div style="font-family: 'Segoe UI', sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #6366f1, #a855f7); color: white; padding: 30px; border-radius: 16px 16px 0 0; text-align: center;">
    <h1 style="margin: 0;">🎉 報名成功！</h1>
  </div>
  <div style="background: #f8fafc; padding: 30px; border-radius: 0 0 16px 16px;">
    <p>%s</p>
    <hr style="border: none; border-top: 1px solid #e2e8f0; margin: 20px 0;">
    <p style="color: #94a3b8; font-size: 12px; text-align: center;">此信件由工作坊管理系統自動發送</p>
  </div>
</div>`, strings.ReplaceAll(body, "\n", "<br>"))
}
