// Package httpx exposes the storefront REST API.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	cartdomain "github.com/jcmexdev/ecommerce-api/internal/cart/domain"
	catalogdomain "github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	"github.com/jcmexdev/ecommerce-api/internal/httpx/middlewares"
	"github.com/jcmexdev/ecommerce-api/internal/order"
	orderdomain "github.com/jcmexdev/ecommerce-api/internal/order/domain"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/apperr"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/metrics"
	userdomain "github.com/jcmexdev/ecommerce-api/internal/user/domain"
)

// The handler depends on narrow service ports so tests can swap any of them.

type CatalogService interface {
	List(ctx context.Context, f catalogdomain.ListFilter) ([]catalogdomain.Product, error)
	Get(ctx context.Context, id string) (*catalogdomain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type CartService interface {
	List(ctx context.Context, userID string) ([]cartdomain.Item, error)
	Add(ctx context.Context, userID, productID string, quantity int) (*cartdomain.Item, bool, error)
	SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*cartdomain.Item, error)
	Remove(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type OrderService interface {
	Place(ctx context.Context, userID string, req order.PlaceRequest) (*orderdomain.Order, error)
	List(ctx context.Context, userID string) ([]orderdomain.Order, error)
	Get(ctx context.Context, userID, orderID string) (*orderdomain.Order, error)
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*userdomain.User, error)
	Update(ctx context.Context, userID string, upd userdomain.Update) (*userdomain.User, error)
}

type Handler struct {
	catalog CatalogService
	cart    CartService
	orders  OrderService
	profile ProfileService
	metrics *metrics.ServerMetrics // nil disables business counters
}

func NewHandler(cat CatalogService, cart CartService, orders OrderService, profile ProfileService, m *metrics.ServerMetrics) *Handler {
	return &Handler{catalog: cat, cart: cart, orders: orders, profile: profile, metrics: m}
}

// Catalog

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	products, err := h.catalog.List(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProducts(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func parseListFilter(r *http.Request) (catalogdomain.ListFilter, error) {
	q := r.URL.Query()
	f := catalogdomain.ListFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		SortBy:   catalogdomain.SortBy(q.Get("sortBy")),
	}
	for param, dst := range map[string]**float64{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, apperr.Validation("%s must be a number", param)
		}
		*dst = &v
	}
	switch f.SortBy {
	case catalogdomain.SortNewest, catalogdomain.SortPriceAsc, catalogdomain.SortPriceDesc, catalogdomain.SortRating:
	default:
		// Unrecognized values get the default sort rather than an error.
		f.SortBy = catalogdomain.SortNewest
	}
	return f, nil
}

// Cart

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	items, err := h.cart.List(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartItems(items))
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())

	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ProductID == "" {
		respondError(w, r, apperr.Validation("product_id is required"))
		return
	}

	it, created, err := h.cart.Add(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	// A brand-new line is a creation; accumulating onto an existing line is
	// an update of that line.
	status, message := http.StatusCreated, "Item added to cart"
	if !created {
		status, message = http.StatusOK, "Cart updated"
	}
	writeJSON(w, status, map[string]any{
		"message":   message,
		"cart_item": mapCartItem(it),
	})
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())

	var req UpdateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	it, err := h.cart.SetQuantity(r.Context(), userID, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if it == nil {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Item removed from cart"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Cart updated",
		"cart_item": mapCartItem(it),
	})
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	if err := h.cart.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Item removed from cart"})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	if err := h.cart.Clear(r.Context(), userID); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Cart cleared"})
}

// Orders

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	items := make([]order.RequestedItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.RequestedItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	o, err := h.orders.Place(r.Context(), userID, order.PlaceRequest{
		Items:           items,
		TotalAmount:     req.TotalAmount,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKey:  middlewares.IdempotencyKey(r.Context()),
	})
	if err != nil {
		if h.metrics != nil && apperr.IsKind(err, apperr.KindInsufficientStock) {
			h.metrics.StockConflicts.Inc()
		}
		respondError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.OrdersPlaced.Inc()
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created successfully",
		"order":   mapOrder(o),
	})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	orders, err := h.orders.List(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(orders))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	o, err := h.orders.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

// Profile

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	u, err := h.profile.Get(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProfile(u))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	u, err := h.profile.Update(r.Context(), userID, userdomain.Update{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    mapProfile(u),
	})
}
