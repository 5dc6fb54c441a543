// Package delivery implements the outbound channels: email (Resend or SMTP)
// and chat push (Telegram). Each send is one attempt against one recipient;
// callers own batching, spacing and failure accounting.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"WorkshopNotifier/internal/config"
)

// ErrNotConfigured is returned by a channel whose credentials are absent.
var ErrNotConfigured = errors.New("delivery: channel not configured")

// EmailProvider sends one HTML email to one recipient.
type EmailProvider interface {
	Enabled() bool
	Send(ctx context.Context, to, subject, html string) error
}

// NewEmailProvider picks the backend once at startup: Resend when an API key
// is set, SMTP when a host is set, otherwise a disabled stub. Missing
// credentials degrade the capability instead of failing the process.
func NewEmailProvider(cfg *config.EmailConfig, log *zap.Logger) EmailProvider {
	switch {
	case cfg.ResendAPIKey != "":
		log.Info("email channel enabled", zap.String("backend", "resend"), zap.String("from", cfg.From))
		return &resendProvider{client: resend.NewClient(cfg.ResendAPIKey), from: cfg.From}
	case cfg.SMTPHost != "":
		log.Info("email channel enabled", zap.String("backend", "smtp"), zap.String("host", cfg.SMTPHost))
		return &smtpProvider{
			dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
			from:   cfg.From,
		}
	default:
		log.Warn("email channel disabled, no RESEND_API_KEY or SMTP_HOST")
		return disabledEmail{}
	}
}

type resendProvider struct {
	client *resend.Client
	from   string
}

func (p *resendProvider) Enabled() bool { return true }

func (p *resendProvider) Send(ctx context.Context, to, subject, html string) error {
	sent, err := p.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    p.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	// The API can answer 200 with an error-shaped body; a response without a
	// message id did not send anything.
	if sent == nil || sent.Id == "" {
		return errors.New("resend: response carried no message id")
	}
	return nil
}

type smtpProvider struct {
	dialer *gomail.Dialer
	from   string
}

func (p *smtpProvider) Enabled() bool { return true }

func (p *smtpProvider) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)
	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

type disabledEmail struct{}

func (disabledEmail) Enabled() bool { return false }

func (disabledEmail) Send(context.Context, string, string, string) error {
	return ErrNotConfigured
}
