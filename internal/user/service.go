// Package user implements profile reads and partial updates.
package user

import (
	"context"

	"github.com/jcmexdev/ecommerce-api/internal/user/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, u domain.User) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// Update applies only the fields present in upd and returns the fresh
// profile.
func (s *Service) Update(ctx context.Context, userID string, upd domain.Update) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if err := s.repo.Update(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}
