package domain

import (
	"time"

	catalog "github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
)

// Status is the order lifecycle state. Orders are created Pending; the only
// transition this service itself performs is to Cancelled, as the
// compensating action of a failed placement.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Order is immutable once created: the item snapshots are copies taken at
// placement time and never re-read from the catalog.
type Order struct {
	ID              string
	UserID          string
	Items           []Item
	TotalAmount     float64
	Status          Status
	ShippingAddress string
	PaymentMethod   string
	IdempotencyKey  string
	CreatedAt       time.Time
}

// Item is one line-item snapshot. Price, Name, and ImageURL are captured at
// purchase time; later catalog changes never alter them.
type Item struct {
	ProductID string
	Quantity  int
	Price     float64
	Name      string
	ImageURL  string

	// Product is the live catalog record, attached only when building a
	// response. Nil when the product has since been removed.
	Product *catalog.Product
}

func (i Item) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}
