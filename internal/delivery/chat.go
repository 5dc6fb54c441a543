package delivery

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v4"

	"WorkshopNotifier/internal/config"
)

// ChatProvider pushes one message to one chat identity.
type ChatProvider interface {
	Enabled() bool
	Push(ctx context.Context, chatID int64, text string) error
}

// NewChatProvider returns the Telegram push channel, or a disabled stub when
// no bot token is configured.
func NewChatProvider(cfg *config.ChatConfig, log *zap.Logger) ChatProvider {
	if cfg.TelegramToken == "" {
		log.Warn("chat channel disabled, no TELEGRAM_BOT_TOKEN")
		return disabledChat{}
	}
	bot, err := tele.NewBot(tele.Settings{
		Token: cfg.TelegramToken,
		// Offline skips the getMe probe so startup does not depend on the
		// Telegram API being reachable.
		Offline: true,
		Client:  &http.Client{Timeout: 10 * time.Second},
	})
	if err != nil {
		log.Warn("chat channel disabled, bot init failed", zap.Error(err))
		return disabledChat{}
	}
	log.Info("chat channel enabled", zap.String("backend", "telegram"))
	return &telegramProvider{bot: bot}
}

type telegramProvider struct {
	bot *tele.Bot
}

func (p *telegramProvider) Enabled() bool { return true }

func (p *telegramProvider) Push(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.bot.Send(tele.ChatID(chatID), text, tele.ModeHTML); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}

type disabledChat struct{}

func (disabledChat) Enabled() bool { return false }

func (disabledChat) Push(context.Context, int64, string) error {
	return ErrNotConfigured
}
