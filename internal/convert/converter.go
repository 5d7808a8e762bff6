// Package convert turns a natural-language prompt into structured JSON.
//
// PIPELINE:
//
//	prompt → model completion → Extract → JSON text
//	                  ↓ (error, empty, unparsable)
//	            BuildFallback → JSON text + warning
//
// Convert never reports an upstream failure to its caller. The only error
// it returns is for an invalid prompt, and in that case the model is not
// called at all.
package convert

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/llm"
)

const (
	// Low temperature keeps the output close to the requested schema.
	temperature = 0.3
	maxTokens   = 2000

	// FallbackWarning is attached to every fallback result.
	FallbackWarning = "AI conversion failed, using fallback structure"

	// ErrPromptRequired is the client-facing message for a bad prompt.
	ErrPromptRequired = "Prompt is required and must be a string"
)

// Failure reasons recorded in metadata.error of the fallback document.
const (
	reasonRequestFailed = "AI completion request failed"
	reasonEmpty         = "No response generated"
	reasonInvalidJSON   = "AI response was not valid JSON"
)

// Result is the outcome of one conversion. Warning is empty when the model
// answer was used.
type Result struct {
	JSON    string
	Warning string
}

// Fallback reports whether the result came from BuildFallback.
func (r *Result) Fallback() bool { return r.Warning != "" }

// Converter runs the pipeline against an injected completion client.
// It holds no mutable state and is safe for concurrent use.
type Converter struct {
	completer llm.Completer
	logger    *slog.Logger
	now       func() time.Time
}

func NewConverter(completer llm.Completer, logger *slog.Logger) *Converter {
	return &Converter{
		completer: completer,
		logger:    logger,
		now:       time.Now,
	}
}

// Convert makes exactly one completion call. There is no retry: a failed
// call is replaced by the fallback document.
func (c *Converter) Convert(ctx context.Context, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperror.ValidationFailed("prompt", ErrPromptRequired)
	}

	text, err := c.completer.Complete(ctx, llm.Request{
		System:      SystemInstruction(),
		User:        UserMessage(prompt),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return c.fallback(prompt, reasonRequestFailed, err), nil
	}

	if strings.TrimSpace(text) == "" {
		return c.fallback(prompt, reasonEmpty, nil), nil
	}

	out, ok := Extract(text)
	if !ok {
		return c.fallback(prompt, reasonInvalidJSON, nil), nil
	}

	return &Result{JSON: out}, nil
}

func (c *Converter) fallback(prompt, reason string, cause error) *Result {
	attrs := []any{
		slog.String("reason", reason),
		slog.Int("prompt_length", len(prompt)),
	}
	if cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	c.logger.Warn("conversion fell back to default structure", attrs...)

	return &Result{
		JSON:    BuildFallback(prompt, reason, c.now()),
		Warning: FallbackWarning,
	}
}
