package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/auth"
	"github.com/sakif/prompt2json/internal/model"
	"github.com/sakif/prompt2json/internal/repository"
)

// IdentityService maps a verified identity to its local user, creating the
// user the first time the email is seen.
//
// It is the single place lookup-or-create happens. RequireAuth calls it at
// the top of every protected request.
type IdentityService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

var _ auth.UserResolver = (*IdentityService)(nil)

func NewIdentityService(users repository.UserRepository, logger *slog.Logger) *IdentityService {
	return &IdentityService{
		users:  users,
		logger: logger,
	}
}

// EnsureUser is idempotent: the same email always yields the same user.
//
// Profile fields are copied only on creation. Later logins with a changed
// name or avatar do not update the row.
//
// CONCURRENT FIRST REQUESTS:
// Two requests for a brand-new email can both miss the lookup. The email
// column is UNIQUE, so one insert wins and the other gets ErrConflict;
// the loser then reads the winner's row.
func (s *IdentityService) EnsureUser(ctx context.Context, id *auth.Identity) (*model.User, error) {
	if id == nil || strings.TrimSpace(id.Email) == "" {
		return nil, apperror.Unauthenticated(auth.MsgInvalidToken)
	}
	email := strings.TrimSpace(id.Email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	user = &model.User{
		Email:     email,
		Name:      id.DisplayName(),
		AvatarURL: id.AvatarURL,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			existing, getErr := s.users.GetUserByEmail(ctx, email)
			if getErr != nil {
				return nil, fmt.Errorf("re-reading user after conflict: %w", getErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user provisioned",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}
