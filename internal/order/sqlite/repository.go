// Package sqlite implements the order repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcmexdev/ecommerce-api/internal/events"
	"github.com/jcmexdev/ecommerce-api/internal/order/domain"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
)

// timeNow is swappable in tests.
var timeNow = time.Now

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create persists the order, its line items, and the order.placed outbox
// event in one transaction. Either all of it commits or none of it does.
func (r *Repository) Create(ctx context.Context, o *domain.Order) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("order: begin create: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_amount, status, shipping_address, payment_method, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.TotalAmount, string(o.Status), o.ShippingAddress, o.PaymentMethod,
		nullableString(o.IdempotencyKey), sqlite.FormatTime(o.CreatedAt))
	if err != nil {
		return fmt.Errorf("order: insert %s: %w", o.ID, err)
	}

	for i, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, quantity, price, name, image_url)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.ID, i, it.ProductID, it.Quantity, it.Price, it.Name, it.ImageURL)
		if err != nil {
			return fmt.Errorf("order: insert item %d of %s: %w", i, o.ID, err)
		}
	}

	env := events.Envelope{
		EventID:    uuid.NewString(),
		Type:       events.EventOrderPlaced,
		OrderID:    o.ID,
		UserID:     o.UserID,
		OccurredAt: o.CreatedAt,
		Payload: map[string]any{
			"total_amount": o.TotalAmount,
			"item_count":   len(o.Items),
		},
	}
	if err = events.InsertTx(ctx, tx, events.TopicOrders, o.ID, env); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("order: commit %s: %w", o.ID, err)
	}
	return nil
}

// GetByID resolves an order with its items. Ownership is the service's
// concern, not the lookup's.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_amount, status, shipping_address, payment_method, COALESCE(idempotency_key, ''), created_at
		FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.itemsFor(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByUser returns the user's orders, newest first, items included.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, total_amount, status, shipping_address, payment_method, COALESCE(idempotency_key, ''), created_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("order: list for user %s: %w", userID, err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Items, err = r.itemsFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FindByIdempotencyKey returns the user's order created under the given key,
// or nil when the key is unused.
func (r *Repository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_amount, status, shipping_address, payment_method, COALESCE(idempotency_key, ''), created_at
		FROM orders WHERE user_id = ? AND idempotency_key = ?`, userID, key)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.itemsFor(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus changes an order's status and records the matching event in
// the outbox. Only the compensation path uses it.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("order: begin status update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var userID string
	if err = tx.QueryRowContext(ctx, "SELECT user_id FROM orders WHERE id = ?", id).Scan(&userID); err != nil {
		if err == sql.ErrNoRows {
			return apperr.NotFound("Order not found")
		}
		return fmt.Errorf("order: load %s for status update: %w", id, err)
	}

	if _, err = tx.ExecContext(ctx, "UPDATE orders SET status = ? WHERE id = ?", string(status), id); err != nil {
		return fmt.Errorf("order: update status of %s: %w", id, err)
	}

	if status == domain.StatusCancelled {
		env := events.Envelope{
			EventID:    uuid.NewString(),
			Type:       events.EventOrderCancelled,
			OrderID:    id,
			UserID:     userID,
			OccurredAt: timeNow(),
		}
		if err = events.InsertTx(ctx, tx, events.TopicOrders, id, env); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("order: commit status update of %s: %w", id, err)
	}
	return nil
}

func (r *Repository) itemsFor(ctx context.Context, orderID string) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, price, name, image_url
		FROM order_items WHERE order_id = ? ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("order: load items of %s: %w", orderID, err)
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Price, &it.Name, &it.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o         domain.Order
		status    string
		createdAt string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.TotalAmount, &status, &o.ShippingAddress,
		&o.PaymentMethod, &o.IdempotencyKey, &createdAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)
	if o.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
