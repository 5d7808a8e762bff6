package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/auth"
	"github.com/sakif/prompt2json/internal/model"
	"github.com/sakif/prompt2json/internal/service"
)

// ConversionStore is satisfied by *service.ConversionService.
type ConversionStore interface {
	List(ctx context.Context, owner *model.User) ([]model.Conversion, error)
	Create(ctx context.Context, owner *model.User, originalPrompt, jsonOutput string, description *string) (*model.Conversion, error)
	Delete(ctx context.Context, owner *model.User, id string) error
}

var _ ConversionStore = (*service.ConversionService)(nil)

const (
	msgFetchConversionsFailed = "Failed to fetch conversions"
	msgSaveConversionFailed   = "Failed to save conversion"
	msgDeleteConversionFailed = "Failed to delete conversion"
	msgConversionDeleted      = "Conversion deleted successfully"
)

// ConversionHandler serves the saved-conversion routes. Every route sits
// behind auth.RequireAuth, which puts the caller in the request context.
type ConversionHandler struct {
	store  ConversionStore
	logger *slog.Logger
}

func NewConversionHandler(store ConversionStore, logger *slog.Logger) *ConversionHandler {
	return &ConversionHandler{store: store, logger: logger}
}

type createConversionRequest struct {
	OriginalPrompt string  `json:"original_prompt"`
	JSONOutput     string  `json:"json_output"`
	Description    *string `json:"description"`
}

// HandleList returns the caller's conversions, newest first.
//
// HTTP: GET /conversions
func (h *ConversionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	conversions, err := h.store.List(r.Context(), user)
	if err != nil {
		h.logFailure(r, "listing conversions", err)
		writeError(w, err, msgFetchConversionsFailed)
		return
	}
	if conversions == nil {
		conversions = []model.Conversion{}
	}

	writeJSON(w, http.StatusOK, conversions)
}

// HandleCreate saves a conversion for the caller.
//
// HTTP: POST /conversions
// BODY: {"original_prompt": "...", "json_output": "...", "description": "..."}
func (h *ConversionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createConversionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: service.MsgConversionFieldsRequired})
		return
	}

	user, _ := auth.UserFromContext(r.Context())

	c, err := h.store.Create(r.Context(), user, req.OriginalPrompt, req.JSONOutput, req.Description)
	if err != nil {
		h.logFailure(r, "saving conversion", err)
		writeError(w, err, msgSaveConversionFailed)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// HandleDelete removes one of the caller's conversions. Someone else's id
// is indistinguishable from a missing one.
//
// HTTP: DELETE /conversions/{id}
func (h *ConversionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(r.Context(), user, id); err != nil {
		h.logFailure(r, "deleting conversion", err)
		writeError(w, err, msgDeleteConversionFailed)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: msgConversionDeleted})
}

// logFailure logs only errors that end up as a 500; client mistakes are
// already covered by the request log line.
func (h *ConversionHandler) logFailure(r *http.Request, op string, err error) {
	if statusFor(err) != http.StatusInternalServerError {
		return
	}
	attrs := []any{slog.String("error", err.Error())}
	if user, ok := auth.UserFromContext(r.Context()); ok {
		attrs = append(attrs, slog.String("user_id", user.ID))
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "" {
		attrs = append(attrs, slog.String("field", appErr.Field))
	}
	h.logger.Error(op+" failed", attrs...)
}
