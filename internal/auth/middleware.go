package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/model"
)

// contextKey is unexported so only this package can set or read the user.
type contextKey string

const userKey contextKey = "user"

// UserResolver returns the local user for a verified identity, creating
// it on first sight. Calling it twice for the same email must return the
// same user.
type UserResolver interface {
	EnsureUser(ctx context.Context, id *Identity) (*model.User, error)
}

// RequireAuth verifies the bearer token on every request, resolves the
// local user and stores it in the context. Failures stop the chain:
//
//	no / malformed header        → 401 MsgNoToken
//	token rejected               → 401 MsgInvalidToken
//	provider unreachable         → 500
//	local user lookup failed     → 500
func RequireAuth(verifier Verifier, users UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, MsgNoToken)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, apperror.ErrUnauthenticated) {
					logger.Debug("bearer token rejected", slog.String("error", err.Error()))
					writeAuthError(w, http.StatusUnauthorized, MsgInvalidToken)
					return
				}
				logger.Error("verifying bearer token", slog.String("error", err.Error()))
				writeAuthError(w, http.StatusInternalServerError, "Authentication service unavailable")
				return
			}

			user, err := users.EnsureUser(r.Context(), identity)
			if err != nil {
				logger.Error("resolving local user",
					slog.String("email", identity.Email),
					slog.String("error", err.Error()),
				)
				writeAuthError(w, http.StatusInternalServerError, "Failed to resolve user")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
