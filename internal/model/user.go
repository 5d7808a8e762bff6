package model

import "time"

// User is the local record shadowing an identity held by the external
// identity provider.
//
// Email is the natural key that bridges the two: the provider's subject id
// is not stored because the original accounts were keyed by email and a
// provider migration must not orphan them. Name and AvatarURL are copied
// from provider metadata once, when the row is created, and never refreshed.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
