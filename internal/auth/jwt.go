package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// audience is the "aud" claim the identity provider puts on tokens of
// signed-in users.
const audience = "authenticated"

// TokenService verifies provider-issued access tokens locally with the
// project's shared HMAC secret, and can issue tokens of the same shape for
// development and tests.
//
// WHY VERIFY LOCALLY?
// The provider signs access tokens with HS256 and a secret we also hold.
// Checking the signature here answers "is this token genuine and unexpired"
// without a network round trip. RemoteVerifier covers deployments that
// do not have the secret.
type TokenService struct {
	secret []byte
	issuer string // optional; checked only when set
}

var _ Verifier = (*TokenService)(nil)

// NewTokenService rejects secrets shorter than 16 characters.
// issuer may be empty to skip the "iss" check.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

type userMetadata struct {
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// claims is the provider's access-token payload: the standard registered
// claims plus email and profile metadata.
type claims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email"`
	UserMetadata userMetadata `json:"user_metadata"`
}

// Issue signs a token for id that expires after ttl.
func (s *TokenService) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Audience:  jwt.ClaimStrings{audience},
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: id.Email,
		UserMetadata: userMetadata{
			FullName:  id.Name,
			AvatarURL: id.AvatarURL,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry, audience and (when
// configured) issuer. Tokens without an email are rejected because email
// is the key used to find the local user.
func (s *TokenService) Verify(_ context.Context, tokenStr string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, invalidToken(err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, invalidToken(errors.New("invalid claims"))
	}

	email := strings.TrimSpace(c.Email)
	if email == "" {
		return nil, invalidToken(errors.New("token has no email"))
	}

	return &Identity{
		Subject:   c.Subject,
		Email:     email,
		Name:      c.UserMetadata.FullName,
		AvatarURL: c.UserMetadata.AvatarURL,
	}, nil
}
