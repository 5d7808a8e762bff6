// Package service contains the business rules between HTTP handlers and
// storage.
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates input, enforces ownership, orchestrates
//	Repository      → reads/writes the database
//
// Services take repository interfaces, never a concrete database, and
// return apperror values that the handler layer maps to status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/model"
	"github.com/sakif/prompt2json/internal/repository"
)

// Client-facing validation messages for the conversion store.
const (
	MsgConversionFieldsRequired = "Original prompt and JSON output are required"
	MsgConversionIDRequired     = "Conversion ID is required"
)

// ConversionService is the per-user conversion store. Every method takes
// the owner explicitly; there is no way to reach another user's records.
type ConversionService struct {
	repo   repository.ConversionRepository
	logger *slog.Logger
}

func NewConversionService(repo repository.ConversionRepository, logger *slog.Logger) *ConversionService {
	return &ConversionService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the owner's conversions, newest first.
func (s *ConversionService) List(ctx context.Context, owner *model.User) ([]model.Conversion, error) {
	if owner == nil {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	conversions, err := s.repo.ListConversionsByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("listing conversions: %w", err)
	}
	return conversions, nil
}

// Create saves a conversion for owner.
//
// jsonOutput is not re-parsed here: it comes from the conversion pipeline,
// which only ever returns valid JSON. An empty description is stored as
// NULL.
func (s *ConversionService) Create(ctx context.Context, owner *model.User, originalPrompt, jsonOutput string, description *string) (*model.Conversion, error) {
	if owner == nil {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	if strings.TrimSpace(originalPrompt) == "" {
		return nil, apperror.ValidationFailed("original_prompt", MsgConversionFieldsRequired)
	}
	if strings.TrimSpace(jsonOutput) == "" {
		return nil, apperror.ValidationFailed("json_output", MsgConversionFieldsRequired)
	}

	if description != nil && strings.TrimSpace(*description) == "" {
		description = nil
	}

	c := &model.Conversion{
		UserID:         owner.ID,
		OriginalPrompt: originalPrompt,
		JSONOutput:     jsonOutput,
		Description:    description,
	}

	if err := s.repo.CreateConversion(ctx, c); err != nil {
		return nil, fmt.Errorf("creating conversion: %w", err)
	}

	s.logger.Info("conversion saved",
		slog.String("id", c.ID),
		slog.String("user_id", owner.ID),
	)

	return c, nil
}

// Delete removes one of owner's conversions. A missing record and a record
// owned by someone else both return apperror.ErrNotFound.
func (s *ConversionService) Delete(ctx context.Context, owner *model.User, id string) error {
	if owner == nil {
		return apperror.Unauthenticated("Authentication required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", MsgConversionIDRequired)
	}

	if err := s.repo.DeleteConversion(ctx, owner.ID, id); err != nil {
		return fmt.Errorf("deleting conversion: %w", err)
	}

	s.logger.Info("conversion deleted",
		slog.String("id", id),
		slog.String("user_id", owner.ID),
	)

	return nil
}
