package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jcmexdev/ecommerce-api/internal/catalog"
	catalogdomain "github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	catsqlite "github.com/jcmexdev/ecommerce-api/internal/catalog/sqlite"
	cartsqlite "github.com/jcmexdev/ecommerce-api/internal/cart/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// The cart FK references users; seed both test users.
	for _, u := range []string{alice, bob} {
		_, err := db.Exec("INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)",
			u, u+"@example.com", sqlite.FormatTime(time.Now()))
		if err != nil {
			t.Fatalf("seed user %s: %v", u, err)
		}
	}

	catRepo := catsqlite.NewRepository(db)
	for _, p := range []catalogdomain.Product{
		{ID: "p1", Name: "Wireless Headphones", Price: 199.99, Category: "Electronics", Stock: 50, CreatedAt: time.Now()},
		{ID: "p2", Name: "Classic T-Shirt", Price: 24.99, Category: "Clothing", Stock: 200, CreatedAt: time.Now()},
	} {
		if err := catRepo.Insert(context.Background(), p); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	return NewService(cartsqlite.NewRepository(db), catalog.NewService(catRepo, nil, 0))
}

func TestAddAccumulatesQuantity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, created, err := svc.Add(ctx, alice, "p1", 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !created {
		t.Fatalf("first add must report a new line")
	}
	second, created, err := svc.Add(ctx, alice, "p1", 3)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if created {
		t.Fatalf("accumulating add must not report a new line")
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same cart item, got %s and %s", first.ID, second.ID)
	}
	if second.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", second.Quantity)
	}

	items, err := svc.List(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one entry, got %d", len(items))
	}
	if items[0].Product == nil || items[0].Product.Name != "Wireless Headphones" {
		t.Fatalf("expected expanded product, got %+v", items[0].Product)
	}
}

func TestConcurrentAddsOfSameProduct(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Racing adds of a product that is not in the cart yet must all land on
	// one line; none may trip over the (user, product) unique index.
	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Add(ctx, alice, "p1", 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent add: %v", err)
		}
	}

	items, err := svc.List(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != workers {
		t.Fatalf("cart = %+v, want one line with quantity %d", items, workers)
	}
}

func TestAddDefaultQuantityIsOne(t *testing.T) {
	svc := newTestService(t)
	it, _, err := svc.Add(context.Background(), alice, "p2", 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if it.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", it.Quantity)
	}
}

func TestAddUnknownProduct(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.Add(context.Background(), alice, "ghost", 1)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	it, _, err := svc.Add(ctx, alice, "p1", 4)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := svc.SetQuantity(ctx, alice, it.ID, 0)
	if err != nil {
		t.Fatalf("setQuantity(0) must succeed, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected item removed, got %+v", got)
	}

	items, _ := svc.List(ctx, alice)
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(items))
	}
}

func TestSetQuantityReplaces(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	it, _, _ := svc.Add(ctx, alice, "p1", 4)
	got, err := svc.SetQuantity(ctx, alice, it.ID, 9)
	if err != nil {
		t.Fatalf("setQuantity: %v", err)
	}
	if got.Quantity != 9 {
		t.Fatalf("expected quantity 9, got %d", got.Quantity)
	}
}

func TestOwnershipIsAsserted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	it, _, _ := svc.Add(ctx, alice, "p1", 1)

	if _, err := svc.SetQuantity(ctx, bob, it.ID, 2); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not_found for foreign item, got %v", err)
	}
	if err := svc.Remove(ctx, bob, it.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not_found for foreign remove, got %v", err)
	}

	// Alice's item must be untouched.
	items, _ := svc.List(ctx, alice)
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("foreign access must not mutate the cart: %+v", items)
	}
}

func TestClearIsScopedToOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Add(ctx, alice, "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := svc.Add(ctx, bob, "p2", 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Clear(ctx, alice); err != nil {
		t.Fatalf("clear: %v", err)
	}

	aliceItems, _ := svc.List(ctx, alice)
	bobItems, _ := svc.List(ctx, bob)
	if len(aliceItems) != 0 {
		t.Fatalf("alice's cart should be empty")
	}
	if len(bobItems) != 1 {
		t.Fatalf("bob's cart must survive alice's clear")
	}
}
