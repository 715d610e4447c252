// Package sqlite implements the cart repository.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jcmexdev/ecommerce-api/internal/cart/domain"
	catalog "github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's cart with each product expanded. A LEFT JOIN
// keeps items whose product has been removed from the catalog; those come
// back with Product == nil.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.id, p.name, p.description, p.price, p.image_url, p.category, p.stock, p.rating, p.reviews, p.created_at
		FROM cart_items c
		LEFT JOIN products p ON p.id = c.product_id
		WHERE c.user_id = ?
		ORDER BY c.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("cart: list for user %s: %w", userID, err)
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		var (
			it        domain.Item
			createdAt string
			updatedAt string

			pID, pName, pDesc, pImage, pCategory, pReviews, pCreatedAt sql.NullString
			pPrice, pRating                                            sql.NullFloat64
			pStock                                                     sql.NullInt64
		)
		err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &createdAt, &updatedAt,
			&pID, &pName, &pDesc, &pPrice, &pImage, &pCategory, &pStock, &pRating, &pReviews, &pCreatedAt)
		if err != nil {
			return nil, err
		}
		if it.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
			return nil, err
		}
		if it.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
			return nil, err
		}
		if pID.Valid {
			p := catalog.Product{
				ID:          pID.String,
				Name:        pName.String,
				Description: pDesc.String,
				Price:       pPrice.Float64,
				ImageURL:    pImage.String,
				Category:    pCategory.String,
				Stock:       int(pStock.Int64),
				Rating:      pRating.Float64,
			}
			if err := json.Unmarshal([]byte(pReviews.String), &p.Reviews); err != nil {
				return nil, fmt.Errorf("cart: unmarshal reviews for %s: %w", p.ID, err)
			}
			if p.CreatedAt, err = sqlite.ParseTime(pCreatedAt.String); err != nil {
				return nil, err
			}
			it.Product = &p
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Get resolves a cart item by id alone. Ownership is asserted by the
// service, as its own step, so the authorization check stays testable.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, product_id, quantity, created_at, updated_at FROM cart_items WHERE id = ?", id)

	var (
		it        domain.Item
		createdAt string
		updatedAt string
	)
	err := row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Cart item not found")
	}
	if err != nil {
		return nil, err
	}
	if it.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// Upsert inserts the item, or accumulates its quantity onto the existing
// (user, product) line in one statement. Concurrent adds of the same product
// both land on the same row instead of one dying on the unique index. The
// returned item reflects the row as stored.
func (r *Repository) Upsert(ctx context.Context, it domain.Item) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, product_id) DO UPDATE SET
			quantity   = quantity + excluded.quantity,
			updated_at = excluded.updated_at
		RETURNING id, quantity, created_at, updated_at`,
		it.ID, it.UserID, it.ProductID, it.Quantity,
		sqlite.FormatTime(it.CreatedAt), sqlite.FormatTime(it.UpdatedAt),
	)

	var createdAt, updatedAt string
	if err := row.Scan(&it.ID, &it.Quantity, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("cart: upsert item: %w", err)
	}
	var err error
	if it.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repository) UpdateQuantity(ctx context.Context, id string, quantity int, updatedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ?",
		quantity, sqlite.FormatTime(updatedAt), id)
	if err != nil {
		return fmt.Errorf("cart: update quantity for %s: %w", id, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("cart: delete item %s: %w", id, err)
	}
	return nil
}

func (r *Repository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("cart: clear for user %s: %w", userID, err)
	}
	return nil
}
