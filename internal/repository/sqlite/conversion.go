package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/model"
)

// MsgConversionNotFound is the 404 message for a missing or foreign record.
const MsgConversionNotFound = "Conversion not found"

// CreateConversion inserts c with a fresh xid and timestamps.
//
// xid ids are 20 URL-safe characters and sort by creation time, which
// gives ListConversionsByOwner a stable tie-breaker.
func (db *DB) CreateConversion(ctx context.Context, c *model.Conversion) error {
	c.ID = xid.New().String()
	now := db.timestamp()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO conversions (id, user_id, original_prompt, json_output, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.UserID,
		c.OriginalPrompt,
		c.JSONOutput,
		c.Description,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating conversion: %w", err)
	}

	return nil
}

// ListConversionsByOwner returns the owner's conversions, newest first.
func (db *DB) ListConversionsByOwner(ctx context.Context, ownerID string) ([]model.Conversion, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, original_prompt, json_output, description, created_at, updated_at
		 FROM conversions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing conversions: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty list encodes as [] rather than null.
	conversions := make([]model.Conversion, 0)

	for rows.Next() {
		var c model.Conversion
		var description sql.NullString
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.OriginalPrompt,
			&c.JSONOutput,
			&description,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning conversion row: %w", err)
		}
		if description.Valid {
			c.Description = &description.String
		}
		conversions = append(conversions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating conversion rows: %w", err)
	}

	return conversions, nil
}

// DeleteConversion removes a conversion only when it belongs to ownerID.
//
// The existence check and the ownership check are the same WHERE clause,
// so a caller cannot tell "does not exist" from "belongs to someone else".
func (db *DB) DeleteConversion(ctx context.Context, ownerID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM conversions WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting conversion %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound(MsgConversionNotFound)
	}

	return nil
}
