package config

import "os"

const (
	defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"
	defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
)

// AIConfig carries the completion-provider credentials. Either key may be
// absent; an unconfigured provider is simply skipped by the chain.
type AIConfig struct {
	OpenAIKey string
	OpenAIURL string
	GeminiKey string
	GeminiURL string
}

func NewAIConfig() *AIConfig {
	cfg := &AIConfig{
		OpenAIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIURL: os.Getenv("OPENAI_API_URL"),
		GeminiKey: os.Getenv("GEMINI_API_KEY"),
		GeminiURL: os.Getenv("GEMINI_API_URL"),
	}
	if cfg.OpenAIURL == "" {
		cfg.OpenAIURL = defaultOpenAIURL
	}
	if cfg.GeminiURL == "" {
		cfg.GeminiURL = defaultGeminiURL
	}
	return cfg
}
