package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/model"
)

// CreateUser inserts a new user. The UNIQUE constraint on email turns a
// concurrent first request for the same identity into ErrConflict, which
// the identity service resolves by reading the winner's row.
func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	u.ID = xid.New().String()
	now := db.timestamp()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, name, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Email,
		u.Name,
		u.AvatarURL,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "email")
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	return nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `SELECT id, email, name, avatar_url, created_at, updated_at
		 FROM users WHERE email = ?`, email)
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `SELECT id, email, name, avatar_url, created_at, updated_at
		 FROM users WHERE id = ?`, id)
}

func (db *DB) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return &u, nil
}
