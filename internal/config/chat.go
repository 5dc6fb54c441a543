package config

import (
	"os"
	"strconv"
	"strings"
)

// ChatConfig carries the push-channel credentials and the operator chat IDs
// that receive dispatch summaries and registration notices.
type ChatConfig struct {
	TelegramToken string
	AdminChatIDs  []int64
}

func NewChatConfig() *ChatConfig {
	cfg := &ChatConfig{TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN")}
	for _, part := range strings.Split(os.Getenv("ADMIN_CHAT_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		cfg.AdminChatIDs = append(cfg.AdminChatIDs, id)
	}
	return cfg
}
