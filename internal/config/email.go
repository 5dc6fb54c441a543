package config

import (
	"os"
	"strconv"
)

// EmailConfig selects the email provider: Resend when an API key is present,
// SMTP when a host is configured, otherwise email delivery is disabled.
type EmailConfig struct {
	ResendAPIKey string
	From         string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

func NewEmailConfig() *EmailConfig {
	from := os.Getenv("SENDER_EMAIL")
	if from == "" {
		from = "onboarding@resend.dev"
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	return &EmailConfig{
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		From:         from,
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     port,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
	}
}
