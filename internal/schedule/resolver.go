package schedule

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"WorkshopNotifier/internal/domain"
)

// recipient is one delivery target: a confirmed registrant, with the chat
// identity joined in when a binding exists for the registrant's email.
type recipient struct {
	Name   string
	Email  string
	ChatID int64 // 0 when no binding
}

// resolveRecipients filters the event's registrations to confirmed ones and
// widens each with an optional chat binding (case-insensitive email match).
// A binding lookup failure degrades to email-only delivery.
func (s *Service) resolveRecipients(ctx context.Context, eventID string) ([]recipient, error) {
	regs, err := s.store.Registrations(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}

	byEmail := map[string]int64{}
	bindings, err := s.store.ChatBindings(ctx)
	if err != nil {
		s.log.Warn("chat bindings unavailable, email-only delivery", zap.Error(err))
	} else {
		for _, b := range bindings {
			byEmail[strings.ToLower(b.Email)] = b.ChatID
		}
	}

	var out []recipient
	for _, r := range regs {
		if r.Status != domain.RegistrationConfirmed {
			continue
		}
		out = append(out, recipient{
			Name:   r.Name,
			Email:  r.Email,
			ChatID: byEmail[strings.ToLower(r.Email)],
		})
	}
	return out, nil
}
