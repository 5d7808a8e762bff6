package apperror

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

// Table-driven: one struct per case, one loop of assertions.
func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("Conversion not found"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("prompt", "Prompt is required and must be a string"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "email"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthenticated wraps ErrUnauthenticated",
			err:       Unauthenticated("Authentication required - no token"),
			target:    ErrUnauthenticated,
			wantMatch: true,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream("identity provider unavailable", io.ErrUnexpectedEOF),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "Upstream also matches its cause",
			err:       Upstream("identity provider unavailable", io.ErrUnexpectedEOF),
			target:    io.ErrUnexpectedEOF,
			wantMatch: true,
		},
		{
			name:      "wrapped with fmt.Errorf still matches",
			err:       fmt.Errorf("deleting conversion: %w", NotFound("Conversion not found")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("Conversion not found"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unauthenticated does NOT match ErrUpstream",
			err:       Unauthenticated("bad token"),
			target:    ErrUpstream,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound uses message verbatim",
			err:         NotFound("Conversion not found"),
			wantMessage: "Conversion not found",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("original_prompt", "Original prompt and JSON output are required"),
			wantMessage: "Original prompt and JSON output are required",
		},
		{
			name:        "Conflict names resource and key",
			err:         Conflict("user", "email"),
			wantMessage: "user conflict on email",
		},
		{
			name:        "Upstream appends the cause",
			err:         Upstream("stripe call failed", errors.New("timeout")),
			wantMessage: "stripe call failed: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Upstream("stripe call failed", errors.New("timeout")))
	if got := Message(wrapped, "fallback"); got != "stripe call failed" {
		t.Errorf("Message() = %q, want %q", got, "stripe call failed")
	}

	if got := Message(errors.New("plain"), "fallback"); got != "fallback" {
		t.Errorf("Message() = %q, want %q", got, "fallback")
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("priceId", "Missing required parameters")

	if err.Field != "priceId" {
		t.Errorf("Field = %q, want %q", err.Field, "priceId")
	}
}
