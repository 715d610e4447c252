// Command seed loads the demo catalog and a demo user with a ready-to-use
// session token, printed on stdout.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	authsqlite "github.com/jcmexdev/ecommerce-api/internal/auth/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	catsqlite "github.com/jcmexdev/ecommerce-api/internal/catalog/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/config"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/telemetry"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
	userdomain "github.com/jcmexdev/ecommerce-api/internal/user/domain"
	usersqlite "github.com/jcmexdev/ecommerce-api/internal/user/sqlite"
)

type seedProduct struct {
	name        string
	description string
	price       float64
	imageURL    string
	category    string
	stock       int
	rating      float64
	reviews     []domain.Review
}

var seedProducts = []seedProduct{
	// Electronics
	{"Wireless Headphones", "Premium noise-cancelling wireless headphones with 30-hour battery life", 199.99, "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500", "Electronics", 50, 4.5, []domain.Review{
		{User: "John Doe", Comment: "Excellent sound quality!", Rating: 5},
		{User: "Jane Smith", Comment: "Very comfortable", Rating: 4},
	}},
	{"Smart Watch", "Fitness tracker with heart rate monitor and GPS", 299.99, "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500", "Electronics", 35, 4.3, nil},
	{"Laptop Stand", "Ergonomic aluminum laptop stand for better posture", 49.99, "https://images.unsplash.com/photo-1527864550417-7fd91fc51a46?w=500", "Electronics", 100, 4.7, nil},
	{"Wireless Mouse", "Ergonomic wireless mouse with precision tracking", 29.99, "https://images.unsplash.com/photo-1527814050087-3793815479db?w=500", "Electronics", 150, 4.4, nil},

	// Clothing
	{"Classic T-Shirt", "100% cotton comfortable t-shirt in various colors", 24.99, "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500", "Clothing", 200, 4.2, nil},
	{"Denim Jeans", "Slim fit denim jeans with premium fabric", 79.99, "https://images.unsplash.com/photo-1542272604-787c3835535d?w=500", "Clothing", 80, 4.6, nil},
	{"Running Shoes", "Lightweight running shoes with excellent cushioning", 89.99, "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=500", "Clothing", 60, 4.8, nil},
	{"Winter Jacket", "Warm and stylish winter jacket with hood", 149.99, "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=500", "Clothing", 40, 4.5, nil},

	// Home & Garden
	{"Coffee Maker", "Programmable coffee maker with thermal carafe", 89.99, "https://images.unsplash.com/photo-1517668808822-9ebb02f2a0e6?w=500", "Home & Garden", 45, 4.4, nil},
	{"Indoor Plant Set", "Set of 3 low-maintenance indoor plants with pots", 39.99, "https://images.unsplash.com/photo-1485955900006-10f4d324d411?w=500", "Home & Garden", 70, 4.6, nil},
	{"LED Desk Lamp", "Adjustable LED desk lamp with USB charging port", 34.99, "https://images.unsplash.com/photo-1507473885765-e6ed057f782c?w=500", "Home & Garden", 90, 4.3, nil},

	// Sports
	{"Yoga Mat", "Premium non-slip yoga mat with carrying strap", 29.99, "https://images.unsplash.com/photo-1601925260368-ae2f83cf8b7f?w=500", "Sports", 120, 4.7, nil},
	{"Dumbbell Set", "Adjustable dumbbell set with storage rack", 149.99, "https://images.unsplash.com/photo-1517836357463-d25dfeac3438?w=500", "Sports", 30, 4.5, nil},
	{"Water Bottle", "Insulated stainless steel water bottle, 32oz", 24.99, "https://images.unsplash.com/photo-1602143407151-7111542de6e8?w=500", "Sports", 200, 4.8, nil},

	// Books
	{"JavaScript Guide", "Comprehensive guide to modern JavaScript programming", 39.99, "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=500", "Books", 75, 4.6, nil},
	{"Design Thinking", "Learn the principles of design thinking and innovation", 29.99, "https://images.unsplash.com/photo-1589998059171-988d887df646?w=500", "Books", 60, 4.4, nil},

	// Toys
	{"Building Blocks Set", "500-piece creative building blocks for kids", 49.99, "https://images.unsplash.com/photo-1558060370-d644479cb6f7?w=500", "Toys", 85, 4.7, nil},
	{"Educational Puzzle", "Educational wooden puzzle for early learning", 19.99, "https://images.unsplash.com/photo-1587825140708-dfaf72ae4b04?w=500", "Toys", 110, 4.5, nil},

	// Beauty
	{"Skincare Set", "Complete skincare routine set with natural ingredients", 79.99, "https://images.unsplash.com/photo-1556228578-0d85b1a4d571?w=500", "Beauty", 55, 4.6, nil},
	{"Hair Dryer", "Professional ionic hair dryer with multiple settings", 59.99, "https://images.unsplash.com/photo-1522338242992-e1a54906a8da?w=500", "Beauty", 40, 4.4, nil},

	// Food
	{"Organic Honey", "Pure organic honey, 16oz jar", 14.99, "https://images.unsplash.com/photo-1587049352846-4a222e784422?w=500", "Food", 100, 4.8, nil},
	{"Green Tea Set", "Premium green tea collection with 5 varieties", 24.99, "https://images.unsplash.com/photo-1556679343-c7306c1976bc?w=500", "Food", 80, 4.5, nil},
}

func main() {
	telemetry.InitLogger()
	cfg := config.Load()
	ctx := context.Background()

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Cart lines reference products, so they go first.
	for _, stmt := range []string{"DELETE FROM cart_items", "DELETE FROM products"} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			slog.Error("failed to clear table", "stmt", stmt, "error", err)
			os.Exit(1)
		}
	}

	catRepo := catsqlite.NewRepository(db)
	now := time.Now()
	for i, sp := range seedProducts {
		for j := range sp.reviews {
			sp.reviews[j].Date = now
		}
		p := domain.Product{
			ID:          uuid.NewString(),
			Name:        sp.name,
			Description: sp.description,
			Price:       sp.price,
			ImageURL:    sp.imageURL,
			Category:    sp.category,
			Stock:       sp.stock,
			Rating:      sp.rating,
			Reviews:     sp.reviews,
			// Stagger creation times so the default newest-first sort is stable.
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := catRepo.Insert(ctx, p); err != nil {
			slog.Error("failed to seed product", "name", sp.name, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("catalog seeded", "products", len(seedProducts))

	demo := userdomain.User{
		ID:        uuid.NewString(),
		Email:     "demo@example.com",
		Name:      "Demo User",
		Address:   "123 Demo Street",
		Phone:     "+1 555 0100",
		CreatedAt: now,
	}
	// Re-running the seeder reuses the existing demo user.
	var existingID string
	err = db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", demo.Email).Scan(&existingID)
	switch {
	case err == nil:
		demo.ID = existingID
	case errors.Is(err, sql.ErrNoRows):
		if err := usersqlite.NewRepository(db).Insert(ctx, demo, ""); err != nil {
			slog.Error("failed to create demo user", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("failed to look up demo user", "error", err)
		os.Exit(1)
	}

	token := uuid.NewString()
	if err := authsqlite.NewRepository(db).Insert(ctx, token, demo.ID, now.Add(30*24*time.Hour)); err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	fmt.Printf("demo user: %s\nsession token: %s\n", demo.Email, token)
}
