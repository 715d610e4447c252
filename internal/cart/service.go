// Package cart implements the cart mutation operations.
package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jcmexdev/ecommerce-api/internal/cart/domain"
	catalog "github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
)

// Repository is the persistence port for cart items.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Item, error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	Upsert(ctx context.Context, it domain.Item) (*domain.Item, error)
	UpdateQuantity(ctx context.Context, id string, quantity int, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// ProductGetter is the slice of the catalog the cart needs: existence checks
// on add, expansion on read.
type ProductGetter interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

type Service struct {
	repo    Repository
	catalog ProductGetter
	now     func() time.Time
}

func NewService(repo Repository, cat ProductGetter) *Service {
	return &Service{repo: repo, catalog: cat, now: time.Now}
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Item, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add puts quantity units of a product into the user's cart. If the product
// is already there the quantity accumulates onto the existing line; created
// reports which of the two happened. A quantity of 0 means 1. Stock is not
// checked here, only at order placement.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int) (item *domain.Item, created bool, err error) {
	if quantity < 0 {
		return nil, false, apperr.Validation("quantity must be positive")
	}
	if quantity == 0 {
		quantity = 1
	}

	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	// The upsert is the atomic find-or-accumulate; concurrent adds of the
	// same product cannot race each other onto the unique index.
	it, err := s.repo.Upsert(ctx, domain.Item{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, false, err
	}
	it.Product = product
	// An accumulated line has more units than this call put in.
	return it, it.Quantity == quantity, nil
}

// SetQuantity replaces an item's quantity. Zero or negative deletes the item
// and reports success with a nil item. Ownership is asserted explicitly
// after the lookup rather than folded into the query.
func (s *Service) SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Item, error) {
	it, err := s.resolveOwned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.repo.Delete(ctx, it.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := s.repo.UpdateQuantity(ctx, it.ID, quantity, s.now()); err != nil {
		return nil, err
	}
	it.Quantity = quantity
	if p, err := s.catalog.Get(ctx, it.ProductID); err == nil {
		it.Product = p
	}
	return it, nil
}

// Remove deletes a single owned item.
func (s *Service) Remove(ctx context.Context, userID, itemID string) error {
	it, err := s.resolveOwned(ctx, userID, itemID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, it.ID)
}

// Clear deletes every item the user owns.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}

// resolveOwned looks the item up, then asserts ownership. A foreign item is
// reported as not found so the endpoint does not leak other users' ids.
func (s *Service) resolveOwned(ctx context.Context, userID, itemID string) (*domain.Item, error) {
	it, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.UserID != userID {
		return nil, apperr.NotFound("Cart item not found")
	}
	return it, nil
}
