package domain

import "time"

// Product is a catalog document. Read-mostly: everything except Stock is
// administered out of band, and Stock is only mutated by order placement.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	ImageURL    string
	Category    string
	Stock       int
	Rating      float64
	Reviews     []Review
	CreatedAt   time.Time
}

type Review struct {
	User    string
	Comment string
	Rating  float64
	Date    time.Time
}

// Categories is the fixed set the catalog is seeded with.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Home & Garden",
	"Sports",
	"Books",
	"Toys",
	"Beauty",
	"Food",
}

// CategoryAll is the sentinel meaning "do not filter by category".
const CategoryAll = "All"

// SortBy selects the ordering of a product listing.
type SortBy string

const (
	SortPriceAsc  SortBy = "price_asc"
	SortPriceDesc SortBy = "price_desc"
	SortRating    SortBy = "rating"
	// SortNewest is the default: creation time descending.
	SortNewest SortBy = ""
)

// ListFilter composes the optional, independent listing filters. Zero-value
// fields are inactive.
type ListFilter struct {
	Category string   // exact match; "" or CategoryAll disables
	MinPrice *float64 // inclusive
	MaxPrice *float64 // inclusive
	Search   string   // case-insensitive substring on name OR description
	SortBy   SortBy
}
