package handler

// Every response body is JSON. Errors always have the shape
//
//	{"error": "<one-line message>"}
//
// and the message is either the AppError's client-safe text or a fixed
// fallback chosen by the handler. Raw error strings never reach a client.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/prompt2json/internal/apperror"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of acknowledgement-only responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sets headers before the status line; nothing set after
// WriteHeader is sent.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are gone; logging is all that is left.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// statusFor maps the apperror taxonomy to HTTP:
//
//	ErrValidation      → 400
//	ErrUnauthenticated → 401
//	ErrNotFound        → 404
//	ErrConflict        → 409
//	anything else      → 500
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError picks the status for err and writes its message. A 500 uses
// fallback unless err is an upstream failure, whose message was written
// for clients.
func writeError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)

	msg := fallback
	if status != http.StatusInternalServerError || errors.Is(err, apperror.ErrUpstream) {
		msg = apperror.Message(err, fallback)
	}

	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeJSON reads exactly one JSON value from the body.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}
