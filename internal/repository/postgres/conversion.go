package postgres

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/model"
)

const msgConversionNotFound = "Conversion not found"

func (db *DB) CreateConversion(ctx context.Context, c *model.Conversion) error {
	c.ID = xid.New().String()
	now := db.timestamp()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := db.pool.Exec(ctx,
		`INSERT INTO conversions (id, user_id, original_prompt, json_output, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.UserID, c.OriginalPrompt, c.JSONOutput, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating conversion: %w", err)
	}
	return nil
}

func (db *DB) ListConversionsByOwner(ctx context.Context, ownerID string) ([]model.Conversion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, original_prompt, json_output, description, created_at, updated_at
		 FROM conversions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing conversions: %w", err)
	}
	defer rows.Close()

	conversions := make([]model.Conversion, 0)
	for rows.Next() {
		var c model.Conversion
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.OriginalPrompt,
			&c.JSONOutput,
			&c.Description,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scanning conversion row: %w", err)
		}
		conversions = append(conversions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating conversion rows: %w", err)
	}

	return conversions, nil
}

// DeleteConversion matches id and owner in one statement; see the sqlite
// implementation for why the two checks are never split.
func (db *DB) DeleteConversion(ctx context.Context, ownerID, id string) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM conversions WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("postgres: deleting conversion %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(msgConversionNotFound)
	}
	return nil
}
