package domain

import (
	"time"

	catalog "github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
)

// Item is one (owner, product, quantity) tuple. A persisted item always has
// Quantity >= 1; setting quantity to zero deletes the row instead.
type Item struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time

	// Product is the expanded catalog record, populated on reads that join
	// the catalog. Nil when the referenced product no longer exists.
	Product *catalog.Product
}
