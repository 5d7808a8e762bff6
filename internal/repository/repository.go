// Package repository declares the storage interfaces the service layer
// depends on. sqlite/ and postgres/ implement them.
package repository

import (
	"context"

	"github.com/sakif/prompt2json/internal/model"
)

// ConversionRepository stores conversions. Every read and delete is scoped
// to an owner: a lookup by id alone is never exposed.
type ConversionRepository interface {
	// CreateConversion assigns ID and timestamps to c and inserts it.
	CreateConversion(ctx context.Context, c *model.Conversion) error
	// ListConversionsByOwner returns the owner's conversions, newest first.
	// It returns an empty slice, not nil, when there are none.
	ListConversionsByOwner(ctx context.Context, ownerID string) ([]model.Conversion, error)
	// DeleteConversion removes the conversion with id only if ownerID owns
	// it, returning apperror.ErrNotFound otherwise. Missing and foreign
	// records are indistinguishable to the caller.
	DeleteConversion(ctx context.Context, ownerID, id string) error
}

// UserRepository stores local user records.
type UserRepository interface {
	// CreateUser assigns ID and timestamps and inserts u. A duplicate
	// email returns apperror.ErrConflict.
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Store is a full storage backend as wired by the server.
type Store interface {
	ConversionRepository
	UserRepository
	Ping(ctx context.Context) error
	Close() error
}
