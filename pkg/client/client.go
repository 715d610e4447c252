// Package client is a typed Go client for the storefront API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jcmexdev/ecommerce-api/internal/httpx"
	"github.com/jcmexdev/ecommerce-api/internal/httpx/middlewares"
)

// Aliases so callers never import internal packages directly.
type (
	Product    = httpx.ProductResponse
	CartItem   = httpx.CartItemResponse
	Order      = httpx.OrderResponse
	Profile    = httpx.ProfileResponse
	OrderDraft = httpx.CreateOrderRequest
	OrderItem  = httpx.CreateOrderItemDTO
)

// APIError is any non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %s (%d)", e.Code, e.StatusCode)
}

// Client talks to one storefront server on behalf of one session.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ListOptions mirror the catalog query parameters. Zero values are omitted.
type ListOptions struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string
	SortBy   string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	if o.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*o.MinPrice, 'f', -1, 64))
	}
	if o.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*o.MaxPrice, 'f', -1, 64))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.SortBy != "" {
		q.Set("sortBy", o.SortBy)
	}
	return q
}

func (c *Client) Products(ctx context.Context, opts ListOptions) ([]Product, error) {
	path := "/api/products"
	if q := opts.query().Encode(); q != "" {
		path += "?" + q
	}
	var products []Product
	err := c.call(ctx, http.MethodGet, path, "", nil, &products)
	return products, err
}

func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := c.call(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := c.call(ctx, http.MethodGet, "/api/products/categories/list", "", nil, &cats)
	return cats, err
}

func (c *Client) Cart(ctx context.Context) ([]CartItem, error) {
	var items []CartItem
	err := c.call(ctx, http.MethodGet, "/api/cart", "", nil, &items)
	return items, err
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*CartItem, error) {
	var resp struct {
		CartItem CartItem `json:"cart_item"`
	}
	err := c.call(ctx, http.MethodPost, "/api/cart/add", "",
		httpx.AddToCartRequest{ProductID: productID, Quantity: quantity}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.CartItem, nil
}

// UpdateCartItem sets the quantity of a cart line. Quantity zero removes the
// line, in which case the returned item is nil.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) (*CartItem, error) {
	var resp struct {
		CartItem *CartItem `json:"cart_item"`
	}
	err := c.call(ctx, http.MethodPut, "/api/cart/update/"+url.PathEscape(itemID), "",
		httpx.UpdateCartRequest{Quantity: quantity}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.CartItem, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID string) error {
	return c.call(ctx, http.MethodDelete, "/api/cart/remove/"+url.PathEscape(itemID), "", nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/api/cart/clear", "", nil, nil)
}

// CreateOrder places an order. A non-empty idempotencyKey lets the caller
// retry the request without risking a duplicate order.
func (c *Client) CreateOrder(ctx context.Context, draft OrderDraft, idempotencyKey string) (*Order, error) {
	var resp struct {
		Order Order `json:"order"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/orders/create", idempotencyKey, draft, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := c.call(ctx, http.MethodGet, "/api/orders", "", nil, &orders)
	return orders, err
}

func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	var o Order
	if err := c.call(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), "", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.call(ctx, http.MethodGet, "/api/profile", "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd httpx.UpdateProfileRequest) (*Profile, error) {
	var resp struct {
		User Profile `json:"user"`
	}
	if err := c.call(ctx, http.MethodPut, "/api/profile/update", "", upd, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) call(ctx context.Context, method, path, idempotencyKey string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set(middlewares.IdempotencyHeader, idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "internal"}
		var body httpx.ErrorResponse
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			apiErr.Code = body.Error
			apiErr.Message = body.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
