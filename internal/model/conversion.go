// Package model defines the data structures used throughout the application.
// JSON tags use snake_case because that is the shape web clients already
// send and read for saved conversions.
package model

import "time"

// Conversion is one saved prompt → JSON mapping owned by a single user.
//
// OriginalPrompt and JSONOutput are immutable once stored. JSONOutput is
// expected to be valid JSON, but the store does not re-check it: the caller
// produced it through the conversion pipeline.
//
// WHY *string FOR Description?
// Description is optional. A nil pointer marshals as null, which lets
// clients tell "no description" apart from an empty one.
type Conversion struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	OriginalPrompt string    `json:"original_prompt"`
	JSONOutput     string    `json:"json_output"`
	Description    *string   `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
