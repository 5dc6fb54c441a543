// Package content composes notification and poster text through an ordered
// fallback chain of completion providers.
package content

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"WorkshopNotifier/internal/config"
)

// Result is a successful generation with the identity of the provider that
// produced it, so downstream surfaces can disclose provenance.
type Result struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

// Generator is what callers of the chain see.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Result, error)
}

// Provider is one completion backend. A single failed call is that
// provider's definitive failure for the invocation; providers do not retry.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNoProviders is returned when every provider in the chain failed or none
// is configured. Callers substitute a fixed template.
var ErrNoProviders = errors.New("content: no completion provider produced text")

const (
	completionTimeout   = 30 * time.Second
	completionMaxTokens = 800
	completionTemp      = 0.8
)

// Chain tries providers in order and returns the first usable text.
type Chain struct {
	providers []Provider
	log       *zap.Logger
}

// NewChain builds the chain from configured providers: OpenAI first, Gemini
// as fallback. Unconfigured providers are left out entirely.
func NewChain(cfg *config.AIConfig, log *zap.Logger) Generator {
	httpc := &http.Client{Timeout: completionTimeout}
	var ps []Provider
	if cfg.OpenAIKey != "" {
		ps = append(ps, newOpenAI(cfg.OpenAIKey, cfg.OpenAIURL, httpc))
	}
	if cfg.GeminiKey != "" {
		ps = append(ps, newGemini(cfg.GeminiKey, cfg.GeminiURL, httpc))
	}
	return &Chain{providers: ps, log: log}
}

func (c *Chain) Generate(ctx context.Context, prompt string) (Result, error) {
	for _, p := range c.providers {
		text, err := p.Complete(ctx, prompt)
		if err != nil {
			c.log.Warn("completion provider failed", zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			c.log.Warn("completion provider returned empty text", zap.String("provider", p.Name()))
			continue
		}
		return Result{Text: text, Provider: p.Name()}, nil
	}
	return Result{}, ErrNoProviders
}
