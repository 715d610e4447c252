// Package sqlite implements the user repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/user/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, email, name, address, phone, created_at FROM users WHERE id = ?", id)

	var (
		u         domain.User
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Address, &u.Phone, &createdAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("user: get %s: %w", id, err)
	}
	if u.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Update(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET name = ?, address = ?, phone = ? WHERE id = ?",
		u.Name, u.Address, u.Phone, u.ID)
	if err != nil {
		return fmt.Errorf("user: update %s: %w", u.ID, err)
	}
	return nil
}

// Insert is used by the seeder and tests.
func (r *Repository) Insert(ctx context.Context, u domain.User, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, address, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, passwordHash, u.Name, u.Address, u.Phone, sqlite.FormatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("user: insert %s: %w", u.ID, err)
	}
	return nil
}
