package order

import (
	"context"
	"fmt"

	"github.com/jcmexdev/ecommerce-api/internal/order/domain"
)

// reserveStockStep applies the conditional decrement for every line item.
// If an item fails mid-loop, the step restores its own partial work before
// returning, so the orchestrator only ever compensates fully-applied steps.
type reserveStockStep struct {
	stock    StockReserver
	items    []domain.Item
	reserved []domain.Item
}

func newReserveStockStep(stock StockReserver, items []domain.Item) *reserveStockStep {
	return &reserveStockStep{stock: stock, items: items}
}

func (s *reserveStockStep) Name() string { return "Reserve_Stock_Step" }

func (s *reserveStockStep) Execute(ctx context.Context) error {
	for _, it := range s.items {
		if err := s.stock.ReserveStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.releaseReserved(ctx)
			return fmt.Errorf("reserve %d of %s: %w", it.Quantity, it.ProductID, err)
		}
		s.reserved = append(s.reserved, it)
	}
	return nil
}

func (s *reserveStockStep) Compensate(ctx context.Context) error {
	return s.releaseReserved(ctx)
}

func (s *reserveStockStep) releaseReserved(ctx context.Context) error {
	var firstErr error
	for i := len(s.reserved) - 1; i >= 0; i-- {
		it := s.reserved[i]
		if err := s.stock.ReleaseStock(ctx, it.ProductID, it.Quantity); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.reserved = nil
	return firstErr
}

// createOrderStep persists the order. Its compensation does not delete the
// row: orders are never deleted, so a failed placement that got this far is
// marked Cancelled instead.
type createOrderStep struct {
	repo  Repository
	order *domain.Order
}

func newCreateOrderStep(repo Repository, o *domain.Order) *createOrderStep {
	return &createOrderStep{repo: repo, order: o}
}

func (s *createOrderStep) Name() string { return "Create_Order_Step" }

func (s *createOrderStep) Execute(ctx context.Context) error {
	return s.repo.Create(ctx, s.order)
}

func (s *createOrderStep) Compensate(ctx context.Context) error {
	return s.repo.UpdateStatus(ctx, s.order.ID, domain.StatusCancelled)
}
