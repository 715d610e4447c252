// Package order implements the Order Placement Service: stock validation,
// atomic reservation, order creation, and cart clearing as one compensated
// unit of work.
package order

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	catalog "github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	"github.com/jcmexdev/ecommerce-api/internal/order/domain"
	"github.com/jcmexdev/ecommerce-api/internal/order/placementlog"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
)

// Repository is the persistence port for orders.
type Repository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}

// Catalog is the slice of the catalog the placement needs.
type Catalog interface {
	StockReserver
	GetMany(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

// StockReserver is the pair of store-level stock primitives.
type StockReserver interface {
	ReserveStock(ctx context.Context, productID string, qty int) error
	ReleaseStock(ctx context.Context, productID string, qty int) error
}

// CartClearer empties a user's cart after a successful placement.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// PlaceRequest is the caller's order intent.
type PlaceRequest struct {
	Items           []RequestedItem
	TotalAmount     float64
	ShippingAddress string
	PaymentMethod   string
	IdempotencyKey  string
}

type RequestedItem struct {
	ProductID string
	Quantity  int
}

type Service struct {
	repo    Repository
	catalog Catalog
	cart    CartClearer
	log     placementlog.Recorder // nil disables the audit trail
	now     func() time.Time
}

func NewService(repo Repository, cat Catalog, cart CartClearer, log placementlog.Recorder) *Service {
	return &Service{repo: repo, catalog: cat, cart: cart, log: log, now: time.Now}
}

// Place runs the whole placement. The contract, in order:
//
//  1. Validate the request shape.
//  2. Replay: an already-used idempotency key returns the original order.
//  3. Pre-validate every item against the live catalog before any mutation.
//  4. Verify the caller-supplied total against the snapshot prices.
//  5. Reserve stock and create the order as compensated saga steps.
//  6. Clear the caller's entire cart; a failure here is logged, the placed
//     order stands.
//
// A failed placement leaves stock exactly as it found it.
func (s *Service) Place(ctx context.Context, userID string, req PlaceRequest) (*domain.Order, error) {
	ctx, span := otel.Tracer("order").Start(ctx, "order.Place")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, userID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			slog.InfoContext(ctx, "replaying placement for idempotency key",
				"user_id", userID, "order_id", existing.ID)
			return s.expand(ctx, existing), nil
		}
	}

	items, err := s.snapshotItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	if err := verifyTotal(items, req.TotalAmount); err != nil {
		return nil, err
	}

	o := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		TotalAmount:     req.TotalAmount,
		Status:          domain.StatusPending,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKey:  req.IdempotencyKey,
		CreatedAt:       s.now(),
	}

	steps := []Step{
		newReserveStockStep(s.catalog, items),
		newCreateOrderStep(s.repo, o),
	}
	saga := NewOrchestrator(o.ID, steps, s.log)
	if err := saga.Start(ctx, placementPayload(userID, req)); err != nil {
		return nil, err
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "cart clear after placement failed",
			"user_id", userID, "order_id", o.ID, "error", err)
	}

	slog.InfoContext(ctx, "order placed",
		"user_id", userID, "order_id", o.ID, "total", o.TotalAmount, "items", len(o.Items))
	return s.expand(ctx, o), nil
}

// List returns the caller's orders, newest first, with live products
// attached for display.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.expand(ctx, &orders[i])
	}
	return orders, nil
}

// Get resolves one order, then asserts ownership as its own step.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, apperr.NotFound("Order not found")
	}
	return s.expand(ctx, o), nil
}

func validate(req PlaceRequest) error {
	if len(req.Items) == 0 {
		return apperr.Validation("No items in order")
	}
	for _, it := range req.Items {
		if it.ProductID == "" {
			return apperr.Validation("item is missing a product id")
		}
		if it.Quantity < 1 {
			return apperr.Validation("quantity must be at least 1")
		}
	}
	if req.ShippingAddress == "" {
		return apperr.Validation("shipping address is required")
	}
	if req.PaymentMethod == "" {
		return apperr.Validation("payment method is required")
	}
	return nil
}

// snapshotItems resolves every requested product and copies price, name,
// and image into line items. Nothing is mutated here: existence and stock
// are checked for the whole order before the first decrement.
func (s *Service) snapshotItems(ctx context.Context, reqItems []RequestedItem) ([]domain.Item, error) {
	ids := make([]string, len(reqItems))
	for i, it := range reqItems {
		ids[i] = it.ProductID
	}
	products, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(reqItems))
	for _, it := range reqItems {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, apperr.NotFound("Product %s not found", it.ProductID)
		}
		if p.Stock < it.Quantity {
			return nil, apperr.InsufficientStock(p.Name, p.Stock)
		}
		items = append(items, domain.Item{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			Price:     p.Price,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
		})
	}
	return items, nil
}

// verifyTotal recomputes the order total from the snapshot prices with
// exact decimal arithmetic and compares it, to the cent, against the
// caller-supplied amount.
func verifyTotal(items []domain.Item, claimed float64) error {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if !sum.Round(2).Equal(decimal.NewFromFloat(claimed).Round(2)) {
		return apperr.Validation("total_amount %.2f does not match order total %s", claimed, sum.Round(2).String())
	}
	return nil
}

// expand attaches live catalog records to the line items for the response.
// Storage keeps only the snapshots.
func (s *Service) expand(ctx context.Context, o *domain.Order) *domain.Order {
	ids := make([]string, len(o.Items))
	for i, it := range o.Items {
		ids[i] = it.ProductID
	}
	products, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		slog.WarnContext(ctx, "expanding order products failed", "order_id", o.ID, "error", err)
		return o
	}
	for i := range o.Items {
		if p, ok := products[o.Items[i].ProductID]; ok {
			cp := p
			o.Items[i].Product = &cp
		}
	}
	return o
}

func placementPayload(userID string, req PlaceRequest) string {
	b, err := json.Marshal(struct {
		UserID string       `json:"user_id"`
		Req    PlaceRequest `json:"request"`
	}{userID, req})
	if err != nil {
		return ""
	}
	return string(b)
}
