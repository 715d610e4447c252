package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	catsqlite "github.com/jcmexdev/ecommerce-api/internal/catalog/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := catsqlite.NewRepository(db)
	svc := NewService(repo, nil, 0)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []domain.Product{
		{ID: "p-headphones", Name: "Wireless Headphones", Description: "noise-cancelling", Price: 199.99, Category: "Electronics", Stock: 50, Rating: 4.5, CreatedAt: base},
		{ID: "p-watch", Name: "Smart Watch", Description: "fitness tracker", Price: 299.99, Category: "Electronics", Stock: 35, Rating: 4.3, CreatedAt: base.Add(time.Hour)},
		{ID: "p-mouse", Name: "Wireless Mouse", Description: "precision tracking", Price: 29.99, Category: "Electronics", Stock: 150, Rating: 4.4, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "p-shirt", Name: "Classic T-Shirt", Description: "100% cotton", Price: 24.99, Category: "Clothing", Stock: 200, Rating: 4.2, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "p-novel", Name: "Mystery Novel", Description: "a wireless-free page turner", Price: 14.99, Category: "Books", Stock: 80, Rating: 4.8, CreatedAt: base.Add(4 * time.Hour)},
	}
	for _, p := range seed {
		if err := repo.Insert(context.Background(), p); err != nil {
			t.Fatalf("seed %s: %v", p.ID, err)
		}
	}
	return svc
}

func ids(ps []domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestListDefaultSortIsNewestFirst(t *testing.T) {
	svc := newTestService(t)
	got, err := svc.List(context.Background(), domain.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 products, got %d", len(got))
	}
	if got[0].ID != "p-novel" || got[4].ID != "p-headphones" {
		t.Fatalf("unexpected order: %v", ids(got))
	}
}

func TestListCategoryAndPriceAsc(t *testing.T) {
	svc := newTestService(t)
	got, err := svc.List(context.Background(), domain.ListFilter{
		Category: "Electronics",
		SortBy:   domain.SortPriceAsc,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 Electronics products, got %d", len(got))
	}
	for i, p := range got {
		if p.Category != "Electronics" {
			t.Fatalf("non-Electronics product in result: %s", p.ID)
		}
		if i > 0 && got[i-1].Price > p.Price {
			t.Fatalf("prices not non-decreasing: %v", ids(got))
		}
	}
}

func TestListCategoryAllIsNoFilter(t *testing.T) {
	svc := newTestService(t)
	got, err := svc.List(context.Background(), domain.ListFilter{Category: domain.CategoryAll})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected all 5 products, got %d", len(got))
	}
}

func TestListPriceBoundsInclusive(t *testing.T) {
	svc := newTestService(t)
	min, max := 24.99, 199.99
	got, err := svc.List(context.Background(), domain.ListFilter{MinPrice: &min, MaxPrice: &max})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := map[string]bool{"p-headphones": true, "p-mouse": true, "p-shirt": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d products, got %v", len(want), ids(got))
	}
	for _, p := range got {
		if !want[p.ID] {
			t.Fatalf("unexpected product %s", p.ID)
		}
	}
}

func TestListSearchMatchesNameOrDescription(t *testing.T) {
	svc := newTestService(t)
	got, err := svc.List(context.Background(), domain.ListFilter{Search: "WIRELESS"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Two by name, one by description ("wireless-free").
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %v", ids(got))
	}
}

func TestListSortRating(t *testing.T) {
	svc := newTestService(t)
	got, err := svc.List(context.Background(), domain.ListFilter{SortBy: domain.SortRating})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].ID != "p-novel" {
		t.Fatalf("expected highest-rated first, got %s", got[0].ID)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(context.Background(), "nope")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestCategoriesDistinct(t *testing.T) {
	svc := newTestService(t)
	cats, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 distinct categories, got %v", cats)
	}
}

func TestReserveStockConditional(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.ReserveStock(ctx, "p-watch", 35); err != nil {
		t.Fatalf("reserve all stock: %v", err)
	}
	err := svc.ReserveStock(ctx, "p-watch", 1)
	if !apperr.IsKind(err, apperr.KindInsufficientStock) {
		t.Fatalf("expected insufficient_stock, got %v", err)
	}

	p, err := svc.Get(ctx, "p-watch")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Stock != 0 {
		t.Fatalf("stock must never go negative, got %d", p.Stock)
	}

	if err := svc.ReleaseStock(ctx, "p-watch", 35); err != nil {
		t.Fatalf("release: %v", err)
	}
	p, _ = svc.Get(ctx, "p-watch")
	if p.Stock != 35 {
		t.Fatalf("expected stock restored to 35, got %d", p.Stock)
	}
}
