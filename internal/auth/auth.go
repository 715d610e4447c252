// Package auth resolves bearer credentials to a stable owner identity.
//
// Token issuance (login, registration) is out of scope for this service;
// sessions are provisioned out of band and only resolved here. Every failure
// mode collapses to Unauthorized so callers cannot probe for valid tokens.
package auth

import (
	"context"
	"time"

	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
)

// SessionRepository is the persistence port for session lookups.
type SessionRepository interface {
	Lookup(ctx context.Context, token string) (userID string, expiresAt time.Time, err error)
}

type Service struct {
	sessions SessionRepository
	now      func() time.Time
}

func NewService(sessions SessionRepository) *Service {
	return &Service{sessions: sessions, now: time.Now}
}

// Resolve maps a bearer token to the owning user id. Missing, unknown, and
// expired tokens all fail with the same Unauthorized error.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperr.Unauthorized("missing bearer token")
	}
	userID, expiresAt, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return "", apperr.Unauthorized("invalid bearer token")
	}
	if s.now().After(expiresAt) {
		return "", apperr.Unauthorized("session expired")
	}
	return userID, nil
}
