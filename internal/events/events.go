// Package events publishes order lifecycle events to Kafka through a
// transactional outbox: the event row is written inside the same SQL
// transaction as the order, and a background relay drains it, so an event is
// emitted if and only if the order was committed.
package events

import (
	"time"
)

const (
	TopicOrders = "shop.orders"

	EventOrderPlaced    = "order.placed"
	EventOrderCancelled = "order.cancelled"
)

// Envelope is the wire format for every order event.
type Envelope struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	OrderID    string         `json:"order_id"`
	UserID     string         `json:"user_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}
