// Package sqlite implements the session repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Lookup resolves a bearer token to its user id and expiry. An unknown
// token comes back as ("", zero time, sql.ErrNoRows).
func (r *Repository) Lookup(ctx context.Context, token string) (string, time.Time, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM sessions WHERE token = ?", token)

	var (
		userID    string
		expiresAt string
	)
	if err := row.Scan(&userID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	exp, err := sqlite.ParseTime(expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return userID, exp, nil
}

// Insert creates a session. Used by the seeder and tests; the API itself
// never mints tokens.
func (r *Repository) Insert(ctx context.Context, token, userID string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
		token, userID, sqlite.FormatTime(expiresAt))
	if err != nil {
		return fmt.Errorf("auth: insert session: %w", err)
	}
	return nil
}
