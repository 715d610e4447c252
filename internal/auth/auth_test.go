package auth

import (
	"context"
	"testing"
	"time"

	authsqlite "github.com/jcmexdev/ecommerce-api/internal/auth/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
)

func newTestService(t *testing.T) (*Service, *authsqlite.Repository) {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("INSERT INTO users (id, email, created_at) VALUES ('u1', 'u1@example.com', ?)",
		sqlite.FormatTime(time.Now()))
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	repo := authsqlite.NewRepository(db)
	return NewService(repo), repo
}

func TestResolveValidToken(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, "tok-1", "u1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	userID, err := svc.Resolve(ctx, "tok-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %s", userID)
	}
}

func TestResolveFailures(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, "tok-old", "u1", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	for name, token := range map[string]string{
		"empty":   "",
		"unknown": "tok-ghost",
		"expired": "tok-old",
	} {
		if _, err := svc.Resolve(ctx, token); !apperr.IsKind(err, apperr.KindUnauthorized) {
			t.Fatalf("%s token: expected unauthorized, got %v", name, err)
		}
	}
}
