// Package catalog exposes product listing, lookup, and the stock primitives
// used by order placement.
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/cache"
)

// Repository is the persistence port the service depends on.
type Repository interface {
	List(ctx context.Context, f domain.ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	ReserveStock(ctx context.Context, productID string, qty int) error
	ReleaseStock(ctx context.Context, productID string, qty int) error
}

// Service fronts the repository with an optional read-through cache for the
// hot read paths (single product, category list). Listings always hit the
// store: the filter space is too wide to cache usefully.
type Service struct {
	repo     Repository
	cache    cache.Cache // nil disables caching
	cacheTTL time.Duration
}

func NewService(repo Repository, c cache.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: c, cacheTTL: ttl}
}

func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if s.cache != nil {
		key := s.cache.GenerateKey("product", id)
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var p domain.Product
			if err := json.Unmarshal([]byte(raw), &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			key := s.cache.GenerateKey("product", id)
			if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
				slog.WarnContext(ctx, "catalog cache set failed", "product_id", id, "error", err)
			}
		}
	}
	return p, nil
}

func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	return s.repo.GetMany(ctx, ids)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		key := s.cache.GenerateKey("categories", "all")
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var cats []string
			if err := json.Unmarshal([]byte(raw), &cats); err == nil {
				return cats, nil
			}
		}
	}

	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(cats); err == nil {
			key := s.cache.GenerateKey("categories", "all")
			if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
				slog.WarnContext(ctx, "catalog cache set failed", "key", "categories", "error", err)
			}
		}
	}
	return cats, nil
}

// ReserveStock applies the atomic conditional decrement and drops the cached
// copy of the product so readers do not see stale stock.
func (s *Service) ReserveStock(ctx context.Context, productID string, qty int) error {
	if err := s.repo.ReserveStock(ctx, productID, qty); err != nil {
		return err
	}
	s.invalidate(ctx, productID)
	return nil
}

// ReleaseStock restores stock after a failed placement.
func (s *Service) ReleaseStock(ctx context.Context, productID string, qty int) error {
	if err := s.repo.ReleaseStock(ctx, productID, qty); err != nil {
		return err
	}
	s.invalidate(ctx, productID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	key := s.cache.GenerateKey("product", productID)
	if err := s.cache.Del(ctx, key); err != nil {
		slog.WarnContext(ctx, "catalog cache invalidation failed", "product_id", productID, "error", err)
	}
}
