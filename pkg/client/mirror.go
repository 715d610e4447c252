package client

import (
	"context"
	"sync"
)

// CartMirror keeps a local copy of the server-side cart. Every mutation goes
// through the server and then re-fetches the whole cart, so the mirror never
// drifts from what the server would return; the server stays the single
// source of truth. Safe for concurrent use.
type CartMirror struct {
	client *Client

	mu    sync.RWMutex
	items []CartItem
}

func NewCartMirror(c *Client) *CartMirror {
	return &CartMirror{client: c}
}

// Refresh replaces the mirrored cart with the server's current state.
func (m *CartMirror) Refresh(ctx context.Context) error {
	items, err := m.client.Cart(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
	return nil
}

// Items returns a copy of the mirrored cart lines.
func (m *CartMirror) Items() []CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CartItem, len(m.items))
	copy(out, m.items)
	return out
}

// Len returns the number of cart lines.
func (m *CartMirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// TotalQuantity sums the quantities across all lines.
func (m *CartMirror) TotalQuantity() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, it := range m.items {
		total += it.Quantity
	}
	return total
}

// Subtotal sums price*quantity over lines whose product is expanded.
func (m *CartMirror) Subtotal() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	for _, it := range m.items {
		if it.Product != nil {
			total += it.Product.Price * float64(it.Quantity)
		}
	}
	return total
}

func (m *CartMirror) Add(ctx context.Context, productID string, quantity int) error {
	if _, err := m.client.AddToCart(ctx, productID, quantity); err != nil {
		return err
	}
	return m.Refresh(ctx)
}

func (m *CartMirror) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	if _, err := m.client.UpdateCartItem(ctx, itemID, quantity); err != nil {
		return err
	}
	return m.Refresh(ctx)
}

func (m *CartMirror) Remove(ctx context.Context, itemID string) error {
	if err := m.client.RemoveCartItem(ctx, itemID); err != nil {
		return err
	}
	return m.Refresh(ctx)
}

func (m *CartMirror) Clear(ctx context.Context) error {
	if err := m.client.ClearCart(ctx); err != nil {
		return err
	}
	return m.Refresh(ctx)
}

// Checkout places an order for the mirrored cart contents and refreshes,
// which empties the mirror because placement clears the server-side cart.
func (m *CartMirror) Checkout(ctx context.Context, shippingAddress, paymentMethod, idempotencyKey string) (*Order, error) {
	m.mu.RLock()
	draft := OrderDraft{
		Items:           make([]OrderItem, len(m.items)),
		TotalAmount:     0,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
	}
	for i, it := range m.items {
		draft.Items[i] = OrderItem{ProductID: it.ProductID, Quantity: it.Quantity}
		if it.Product != nil {
			draft.TotalAmount += it.Product.Price * float64(it.Quantity)
		}
	}
	m.mu.RUnlock()

	o, err := m.client.CreateOrder(ctx, draft, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return o, m.Refresh(ctx)
}
