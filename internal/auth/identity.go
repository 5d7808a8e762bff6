// Package auth verifies bearer credentials issued by the external identity
// provider and attaches the matching local user to the request.
//
// REQUEST FLOW:
//  1. Client sends "Authorization: Bearer <token>"
//  2. A Verifier turns the token into an Identity (local JWT check or a
//     call to the provider, depending on configuration)
//  3. A UserResolver looks the identity up by email and creates the local
//     row the first time it is seen
//  4. The *model.User is stored in the request context for handlers
//
// This runs on every protected request. Nothing about a verified token is
// cached between requests.
package auth

import (
	"context"
	"strings"

	"github.com/sakif/prompt2json/internal/apperror"
)

// Client-facing messages. Kept stable because web clients match on them.
const (
	MsgNoToken      = "Authentication required - no token"
	MsgInvalidToken = "Authentication required - invalid token"
)

// Identity is what the provider vouches for.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// DisplayName is the provider's full name, or the local part of the email
// when the provider has none.
func (i Identity) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}

// Verifier maps a raw bearer token to an Identity.
//
// Implementations return an error wrapping apperror.ErrUnauthenticated for
// a bad token and apperror.ErrUpstream when the provider could not be
// reached.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// RejectAll is used when no identity provider is configured.
type RejectAll struct{}

func (RejectAll) Verify(context.Context, string) (*Identity, error) {
	return nil, apperror.Unauthenticated(MsgInvalidToken)
}

func invalidToken(cause error) *apperror.AppError {
	return &apperror.AppError{
		Err:     apperror.ErrUnauthenticated,
		Message: MsgInvalidToken,
		Cause:   cause,
	}
}
