// Package sqlite implements the catalog repository over the application
// database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const productColumns = "id, name, description, price, image_url, category, stock, rating, reviews, created_at"

// List returns all products matching the filter. Filters are pushed into
// SQL so the category and price indexes are used instead of a full scan.
func (r *Repository) List(ctx context.Context, f domain.ListFilter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)

	if f.Category != "" && f.Category != domain.CategoryAll {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.Search != "" {
		where = append(where, "(instr(lower(name), lower(?)) > 0 OR instr(lower(description), lower(?)) > 0)")
		args = append(args, f.Search, f.Search)
	}

	q := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderClause(f.SortBy)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func orderClause(s domain.SortBy) string {
	switch s {
	case domain.SortPriceAsc:
		return "price ASC"
	case domain.SortPriceDesc:
		return "price DESC"
	case domain.SortRating:
		return "rating DESC"
	default:
		return "created_at DESC"
	}
}

// GetByID returns a single product or apperr.NotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetMany returns the subset of the given products that exist, keyed by id.
// Missing ids are simply absent from the map; the caller decides whether
// that is an error.
func (r *Repository) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: get products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// Categories returns the distinct categories present in the catalog.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT category FROM products ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("catalog: list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReserveStock decrements a product's stock by qty, but only if enough stock
// remains. The check and the decrement are one UPDATE, so concurrent
// placements against the same product can never drive stock negative.
func (r *Repository) ReserveStock(ctx context.Context, productID string, qty int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?",
		qty, productID, qty,
	)
	if err != nil {
		return fmt.Errorf("catalog: reserve stock for %s: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog: reserve stock for %s: %w", productID, err)
	}
	if n == 0 {
		// Either the product vanished or stock ran out between the caller's
		// pre-check and now. Report the live count for the error message.
		p, getErr := r.GetByID(ctx, productID)
		if getErr != nil {
			return getErr
		}
		return apperr.InsufficientStock(p.Name, p.Stock)
	}
	return nil
}

// ReleaseStock is the compensating action for ReserveStock.
func (r *Repository) ReleaseStock(ctx context.Context, productID string, qty int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE products SET stock = stock + ? WHERE id = ?",
		qty, productID,
	)
	if err != nil {
		return fmt.Errorf("catalog: release stock for %s: %w", productID, err)
	}
	return nil
}

// Insert adds a product. Used by the seeder and tests; the storefront API
// never creates products.
func (r *Repository) Insert(ctx context.Context, p domain.Product) error {
	reviews, err := json.Marshal(p.Reviews)
	if err != nil {
		return fmt.Errorf("catalog: marshal reviews: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, image_url, category, stock, rating, reviews, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Stock, p.Rating, string(reviews),
		sqlite.FormatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("catalog: insert product %s: %w", p.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p         domain.Product
		reviews   string
		createdAt string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category,
		&p.Stock, &p.Rating, &reviews, &createdAt)
	if err != nil {
		return domain.Product{}, err
	}
	if err := json.Unmarshal([]byte(reviews), &p.Reviews); err != nil {
		return domain.Product{}, fmt.Errorf("catalog: unmarshal reviews for %s: %w", p.ID, err)
	}
	p.CreatedAt, err = sqlite.ParseTime(createdAt)
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}
