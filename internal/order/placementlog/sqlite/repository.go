// Package sqlite persists placement log entries.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/ecommerce-api/internal/order/placementlog"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save appends one entry. The table is append-only; rows are never updated.
func (r *Repository) Save(ctx context.Context, e *placementlog.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO placement_logs
			(placement_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.PlacementID,
		string(e.Status),
		e.CurrentStep,
		nullableString(e.Payload),
		e.ErrorMessages,
		e.TraceID,
		e.SpanID,
		sqlite.FormatTime(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("placementlog: save entry for %q: %w", e.PlacementID, err)
	}
	return nil
}

// ListByPlacement returns the full trail for one placement, oldest first.
func (r *Repository) ListByPlacement(ctx context.Context, placementID string) ([]placementlog.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT placement_id, status, current_step, COALESCE(payload, ''), error_messages, trace_id, span_id, updated_at
		FROM placement_logs
		WHERE placement_id = ?
		ORDER BY updated_at, id`, placementID)
	if err != nil {
		return nil, fmt.Errorf("placementlog: list for %q: %w", placementID, err)
	}
	defer rows.Close()

	var out []placementlog.Entry
	for rows.Next() {
		var (
			e         placementlog.Entry
			updatedAt string
		)
		err := rows.Scan(&e.PlacementID, &e.Status, &e.CurrentStep, &e.Payload,
			&e.ErrorMessages, &e.TraceID, &e.SpanID, &updatedAt)
		if err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// nullableString stores NULL instead of an empty TEXT so the payload column
// stays clean on non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
