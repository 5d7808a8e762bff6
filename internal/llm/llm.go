// Package llm provides AI completion clients behind one small interface.
//
// The conversion pipeline depends only on Completer. main wires a concrete
// provider, tests wire a fake, and no package keeps a process-wide client.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider names accepted by New.
const (
	ProviderZAI    = "zai"
	ProviderGemini = "gemini"
)

// ErrNotConfigured is returned by every call on an Unconfigured client.
var ErrNotConfigured = errors.New("llm: provider not configured")

// Request is a single system + user exchange.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer sends one request and returns the raw model text. A Completer
// makes one attempt per call and never retries.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string

	ZAIAPIKey  string
	ZAIBaseURL string
	ZAIModel   string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	Timeout time.Duration
}

// New builds the Completer named by cfg.Provider. A provider without an API
// key yields Unconfigured rather than an error so the service still starts
// and answers every conversion with the fallback document.
func New(ctx context.Context, cfg Config) (Completer, error) {
	switch cfg.Provider {
	case ProviderZAI, "":
		if cfg.ZAIAPIKey == "" {
			return Unconfigured{Provider: ProviderZAI}, nil
		}
		return NewZAIClient(ZAIConfig{
			APIKey:  cfg.ZAIAPIKey,
			BaseURL: cfg.ZAIBaseURL,
			Model:   cfg.ZAIModel,
			Timeout: cfg.Timeout,
		}), nil

	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return Unconfigured{Provider: ProviderGemini}, nil
		}
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.Timeout,
		})

	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// Unconfigured fails every call with ErrNotConfigured.
type Unconfigured struct {
	Provider string
}

func (u Unconfigured) Complete(context.Context, Request) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrNotConfigured, u.Provider)
}
