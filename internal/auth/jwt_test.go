package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/prompt2json/internal/apperror"
)

const testSecret = "test-secret-at-least-16-chars!!"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, "")
	require.NoError(t, err)
	return ts
}

var testIdentity = Identity{
	Subject:   "provider-uid-1",
	Email:     "ada@example.com",
	Name:      "Ada Lovelace",
	AvatarURL: "https://example.com/ada.png",
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", "")
	assert.Error(t, err)
}

// =========================================================================
// ISSUE + VERIFY
// =========================================================================

func TestVerify_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(testIdentity, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."), "header.payload.signature")

	got, err := ts.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, *got)
}

func TestVerify_Rejects(t *testing.T) {
	ts := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-secret", "")
	require.NoError(t, err)

	expired, err := ts.Issue(testIdentity, -time.Minute)
	require.NoError(t, err)

	wrongSecret, err := other.Issue(testIdentity, time.Hour)
	require.NoError(t, err)

	noEmail, err := ts.Issue(Identity{Subject: "x"}, time.Hour)
	require.NoError(t, err)

	// Correct secret but the wrong audience.
	wrongAud := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{"anon"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "ada@example.com",
	})
	wrongAudToken, err := wrongAud.SignedString([]byte(testSecret))
	require.NoError(t, err)

	// No expiry at all.
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{Audience: jwt.ClaimStrings{audience}},
		Email:            "ada@example.com",
	})
	noExpToken, err := noExp.SignedString([]byte(testSecret))
	require.NoError(t, err)

	// alg "none" must never be accepted.
	none := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "ada@example.com",
	})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":        expired,
		"wrong secret":   wrongSecret,
		"no email":       noEmail,
		"wrong audience": wrongAudToken,
		"no expiry":      noExpToken,
		"alg none":       noneToken,
		"garbage":        "not.a.jwt",
		"empty":          "",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ts.Verify(context.Background(), token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
			assert.Equal(t, MsgInvalidToken, apperror.Message(err, ""))
		})
	}
}

func TestVerify_Issuer(t *testing.T) {
	ts, err := NewTokenService(testSecret, "https://proj.supabase.co/auth/v1")
	require.NoError(t, err)

	token, err := ts.Issue(testIdentity, time.Hour)
	require.NoError(t, err)
	_, err = ts.Verify(context.Background(), token)
	assert.NoError(t, err)

	// Same secret, no issuer claim.
	plain := newTestTokenService(t)
	unscoped, err := plain.Issue(testIdentity, time.Hour)
	require.NoError(t, err)
	_, err = ts.Verify(context.Background(), unscoped)
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
}

func TestIdentity_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", testIdentity.DisplayName())
	assert.Equal(t, "grace", Identity{Email: "grace@example.com"}.DisplayName())
	assert.Equal(t, "grace", Identity{Email: "grace@example.com", Name: "  "}.DisplayName())
}
