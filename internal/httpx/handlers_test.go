package httpx_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jcmexdev/ecommerce-api/internal/auth"
	authsqlite "github.com/jcmexdev/ecommerce-api/internal/auth/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/cart"
	cartsqlite "github.com/jcmexdev/ecommerce-api/internal/cart/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/catalog"
	catalogdomain "github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	catsqlite "github.com/jcmexdev/ecommerce-api/internal/catalog/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/httpx"
	"github.com/jcmexdev/ecommerce-api/internal/order"
	ordersqlite "github.com/jcmexdev/ecommerce-api/internal/order/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/user"
	userdomain "github.com/jcmexdev/ecommerce-api/internal/user/domain"
	usersqlite "github.com/jcmexdev/ecommerce-api/internal/user/sqlite"
)

const testToken = "tok-alice"

type apiFixture struct {
	db  *sql.DB
	srv *httptest.Server
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	userRepo := usersqlite.NewRepository(db)
	alice := userdomain.User{ID: "user-alice", Email: "alice@example.com", Name: "Alice", CreatedAt: time.Now()}
	if err := userRepo.Insert(context.Background(), alice, "x"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	sessions := authsqlite.NewRepository(db)
	if err := sessions.Insert(context.Background(), testToken, alice.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	catRepo := catsqlite.NewRepository(db)
	for _, p := range []catalogdomain.Product{
		{ID: "p1", Name: "Wireless Headphones", Price: 199.99, Category: "Electronics", Stock: 5, CreatedAt: time.Now()},
		{ID: "p2", Name: "Classic T-Shirt", Price: 24.99, Category: "Clothing", Stock: 10, CreatedAt: time.Now().Add(time.Second)},
		{ID: "p3", Name: "Mystery Novel", Price: 14.99, Category: "Books", Stock: 0, CreatedAt: time.Now().Add(2 * time.Second)},
	} {
		if err := catRepo.Insert(context.Background(), p); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	catSvc := catalog.NewService(catRepo, nil, 0)
	cartSvc := cart.NewService(cartsqlite.NewRepository(db), catSvc)
	orderSvc := order.NewService(ordersqlite.NewRepository(db), catSvc, cartSvc, nil)
	profileSvc := user.NewService(userRepo)

	h := httpx.NewHandler(catSvc, cartSvc, orderSvc, profileSvc, nil)
	router := httpx.NewRouter(h, auth.NewService(sessions), nil)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &apiFixture{db: db, srv: srv}
}

// do performs an authenticated request and decodes the JSON response into out
// (skipped when out is nil).
func (f *apiFixture) do(t *testing.T, method, path string, body any, out any) *http.Response {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp, err := f.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s %s (%d): %v: %s", method, path, resp.StatusCode, err, raw)
		}
	}
	return resp
}

func TestAuthRequired(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{"/api/cart", "/api/orders", "/api/profile"} {
		resp, err := http.Get(f.srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want 401", path, resp.StatusCode)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, f.srv.URL+"/api/cart", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/cart: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bogus token: status = %d, want 401", resp.StatusCode)
	}
	var body httpx.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "unauthorized" {
		t.Errorf("error code = %q, want unauthorized", body.Error)
	}
}

func TestListProductsPublicWithFilters(t *testing.T) {
	f := newAPIFixture(t)

	// No token needed for the catalog.
	resp, err := http.Get(f.srv.URL + "/api/products?category=Electronics&sortBy=price_asc")
	if err != nil {
		t.Fatalf("GET products: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var products []httpx.ProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("products = %+v, want just p1", products)
	}
}

func TestListProductsRejectsBadPrices(t *testing.T) {
	f := newAPIFixture(t)

	for _, q := range []string{"minPrice=abc", "maxPrice=1e"} {
		resp, err := http.Get(f.srv.URL + "/api/products?" + q)
		if err != nil {
			t.Fatalf("GET products?%s: %v", q, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("?%s: status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestListProductsUnknownSortFallsBack(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.srv.URL + "/api/products?sortBy=cheapest")
	if err != nil {
		t.Fatalf("GET products: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var products []httpx.ProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Default is newest first, so the listing leads with the latest product.
	if len(products) != 3 || products[0].ID != "p3" {
		t.Fatalf("products = %+v, want p3 first of 3", products)
	}
}

func TestGetProductNotFound(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.srv.URL + "/api/products/nope")
	if err != nil {
		t.Fatalf("GET product: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body httpx.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "not_found" {
		t.Errorf("error code = %q, want not_found", body.Error)
	}
}

func TestCartFlow(t *testing.T) {
	f := newAPIFixture(t)

	var added struct {
		Message  string                 `json:"message"`
		CartItem httpx.CartItemResponse `json:"cart_item"`
	}
	resp := f.do(t, http.MethodPost, "/api/cart/add", httpx.AddToCartRequest{ProductID: "p1", Quantity: 2}, &added)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: status = %d, want 201", resp.StatusCode)
	}
	if added.Message != "Item added to cart" {
		t.Fatalf("message = %q, want Item added to cart", added.Message)
	}
	if added.CartItem.Quantity != 2 || added.CartItem.Product == nil {
		t.Fatalf("cart_item = %+v, want quantity 2 with product", added.CartItem)
	}

	// Adding the same product again accumulates on the same line; that is an
	// update of the line, not a creation.
	resp = f.do(t, http.MethodPost, "/api/cart/add", httpx.AddToCartRequest{ProductID: "p1", Quantity: 1}, &added)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accumulate: status = %d, want 200", resp.StatusCode)
	}
	if added.Message != "Cart updated" {
		t.Fatalf("message = %q, want Cart updated", added.Message)
	}
	if added.CartItem.Quantity != 3 {
		t.Fatalf("accumulated quantity = %d, want 3", added.CartItem.Quantity)
	}

	var items []httpx.CartItemResponse
	f.do(t, http.MethodGet, "/api/cart", nil, &items)
	if len(items) != 1 {
		t.Fatalf("cart size = %d, want 1", len(items))
	}

	// Quantity zero removes the line.
	resp = f.do(t, http.MethodPut, "/api/cart/update/"+items[0].ID, httpx.UpdateCartRequest{Quantity: 0}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status = %d, want 200", resp.StatusCode)
	}
	f.do(t, http.MethodGet, "/api/cart", nil, &items)
	if len(items) != 0 {
		t.Fatalf("cart size after zero-quantity update = %d, want 0", len(items))
	}
}

func TestCreateOrderEndToEnd(t *testing.T) {
	f := newAPIFixture(t)

	f.do(t, http.MethodPost, "/api/cart/add", httpx.AddToCartRequest{ProductID: "p1", Quantity: 1}, nil)

	var created struct {
		Order httpx.OrderResponse `json:"order"`
	}
	resp := f.do(t, http.MethodPost, "/api/orders/create", httpx.CreateOrderRequest{
		Items:           []httpx.CreateOrderItemDTO{{ProductID: "p1", Quantity: 1}},
		TotalAmount:     199.99,
		ShippingAddress: "1 Main St",
		PaymentMethod:   "credit_card",
	}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: status = %d, want 201", resp.StatusCode)
	}
	if created.Order.Status != "Pending" || len(created.Order.Items) != 1 {
		t.Fatalf("order = %+v, want Pending with one item", created.Order)
	}

	// Stock moved and the cart is empty.
	var p httpx.ProductResponse
	f.do(t, http.MethodGet, "/api/products/p1", nil, &p)
	if p.Stock != 4 {
		t.Errorf("stock after order = %d, want 4", p.Stock)
	}
	var items []httpx.CartItemResponse
	f.do(t, http.MethodGet, "/api/cart", nil, &items)
	if len(items) != 0 {
		t.Errorf("cart size after order = %d, want 0", len(items))
	}

	var orders []httpx.OrderResponse
	f.do(t, http.MethodGet, "/api/orders", nil, &orders)
	if len(orders) != 1 || orders[0].ID != created.Order.ID {
		t.Fatalf("orders = %+v, want the placed order", orders)
	}
	var got httpx.OrderResponse
	f.do(t, http.MethodGet, "/api/orders/"+created.Order.ID, nil, &got)
	if got.TotalAmount != 199.99 {
		t.Errorf("total = %v, want 199.99", got.TotalAmount)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newAPIFixture(t)

	var body httpx.ErrorResponse
	resp := f.do(t, http.MethodPost, "/api/orders/create", httpx.CreateOrderRequest{
		Items:           []httpx.CreateOrderItemDTO{{ProductID: "p3", Quantity: 1}},
		TotalAmount:     14.99,
		ShippingAddress: "1 Main St",
		PaymentMethod:   "credit_card",
	}, &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	// 400 is shared with validation failures; the code disambiguates.
	if body.Error != "insufficient_stock" {
		t.Errorf("error code = %q, want insufficient_stock", body.Error)
	}
	if body.Message != fmt.Sprintf("Insufficient stock for %s. Available: %d", "Mystery Novel", 0) {
		t.Errorf("message = %q", body.Message)
	}
}

func TestProfileUpdate(t *testing.T) {
	f := newAPIFixture(t)

	var profile httpx.ProfileResponse
	f.do(t, http.MethodGet, "/api/profile", nil, &profile)
	if profile.Email != "alice@example.com" {
		t.Fatalf("email = %q", profile.Email)
	}

	name := "Alice B."
	var updated struct {
		User httpx.ProfileResponse `json:"user"`
	}
	resp := f.do(t, http.MethodPut, "/api/profile/update", httpx.UpdateProfileRequest{Name: &name}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status = %d, want 200", resp.StatusCode)
	}
	if updated.User.Name != name {
		t.Errorf("name = %q, want %q", updated.User.Name, name)
	}
	if updated.User.Address != "" {
		t.Errorf("address changed unexpectedly: %q", updated.User.Address)
	}
}
