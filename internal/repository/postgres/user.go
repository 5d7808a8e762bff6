package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/model"
)

func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	u.ID = xid.New().String()
	now := db.timestamp()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := db.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.AvatarURL, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "email")
		}
		return fmt.Errorf("postgres: inserting user: %w", err)
	}
	return nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `SELECT id, email, name, avatar_url, created_at, updated_at
		 FROM users WHERE email = $1`, email)
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `SELECT id, email, name, avatar_url, created_at, updated_at
		 FROM users WHERE id = $1`, id)
}

func (db *DB) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	var u model.User
	err := db.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("postgres: getting user: %w", err)
	}
	return &u, nil
}
