package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/prompt2json/internal/apperror"
)

// providerUser is the part of the provider's /auth/v1/user response we use.
type providerUser struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserMetadata userMetadata `json:"user_metadata"`
}

// RemoteVerifier asks the identity provider who a token belongs to.
//
// The bearer header is attached by an oauth2 transport built around a
// static token source. The provider also wants the project's public key in
// an "apikey" header.
type RemoteVerifier struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	timeout    time.Duration
}

var _ Verifier = (*RemoteVerifier)(nil)

// NewRemoteVerifier targets baseURL (e.g. https://xyz.supabase.co).
// A nil httpClient uses http.DefaultClient.
func NewRemoteVerifier(baseURL, anonKey string, httpClient *http.Client, timeout time.Duration) *RemoteVerifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	// oauth2.NewClient takes its base transport from the context.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building user request: %w", err)
	}
	req.Header.Set("apikey", v.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.Upstream("Identity provider unavailable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, invalidToken(fmt.Errorf("provider returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, apperror.Upstream("Identity provider unavailable",
			fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	var u providerUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, apperror.Upstream("Identity provider unavailable",
			fmt.Errorf("decoding user response: %w", err))
	}

	email := strings.TrimSpace(u.Email)
	if email == "" {
		return nil, invalidToken(errors.New("provider user has no email"))
	}

	return &Identity{
		Subject:   u.ID,
		Email:     email,
		Name:      u.UserMetadata.FullName,
		AvatarURL: u.UserMetadata.AvatarURL,
	}, nil
}
