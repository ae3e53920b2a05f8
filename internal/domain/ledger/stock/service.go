package stock

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/catalog/product"
	"backoffice/pkg/logger"
)

// Service provides business operations for the stock ledger.
// Increase and Decrease open their own transaction when none is active;
// when called from an orchestrator (checkout, delivery receipt) they join
// the ambient transaction instead.
type Service struct {
	repo      Repository
	products  product.Repository
	txManager tx.Manager
}

// NewService creates a new stock ledger service.
func NewService(repo Repository, products product.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		txManager: txManager,
	}
}

// Get returns the current entry for (product, location).
// A pair with no ledger row reads as zero quantity, zero cost.
func (s *Service) Get(ctx context.Context, productID, locationID id.ID) (Entry, error) {
	return s.repo.GetEntry(ctx, productID, locationID)
}

// Increase absorbs qty units at unitPrice into the ledger and recomputes the
// weighted-average unit cost:
//
//	newCost = (oldQty*oldCost + qty*unitPrice) / (oldQty + qty)
//
// The recompute is associative, so interleaved receipts from different
// batches converge to the same average regardless of order.
// Also appends a Movement(in) and bumps Product.aggregate_stock.
func (s *Service) Increase(ctx context.Context, productID, locationID id.ID, qty int64, unitPrice types.Money, reason string) (Entry, error) {
	if qty <= 0 {
		return Entry{}, apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", qty)
	}
	if unitPrice.IsNegative() {
		return Entry{}, apperror.NewValidation("unit price cannot be negative").
			WithDetail("unit_price", unitPrice.String())
	}

	var result Entry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.repo.GetEntryForUpdate(ctx, productID, locationID)
		if err != nil {
			return fmt.Errorf("get entry for update: %w", err)
		}

		oldQty := types.NewMoneyFromInt(entry.Quantity)
		addQty := types.NewMoneyFromInt(qty)
		newQty := entry.Quantity + qty

		newCost := unitPrice
		if newQty > 0 {
			oldValue := entry.UnitCost.Mul(oldQty)
			addValue := unitPrice.Mul(addQty)
			newCost = oldValue.Add(addValue).Div(types.NewMoneyFromInt(newQty))
		}

		entry.ProductID = productID
		entry.LocationID = locationID
		entry.Quantity = newQty
		entry.UnitCost = newCost
		entry.TotalValue = newCost.Mul(types.NewMoneyFromInt(newQty))
		entry.UpdatedAt = time.Now().UTC()

		if err := s.repo.UpsertEntry(ctx, entry); err != nil {
			return fmt.Errorf("upsert entry: %w", err)
		}

		movement := NewMovement(productID, locationID, DirectionIn, qty, unitPrice, reason)
		if err := s.repo.InsertMovements(ctx, []Movement{movement}); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}

		if err := s.products.AdjustAggregateStock(ctx, productID, qty); err != nil {
			return fmt.Errorf("adjust aggregate stock: %w", err)
		}

		result = entry
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	logger.Info(ctx, "stock increased",
		"product_id", productID,
		"location_id", locationID,
		"quantity", qty,
		"unit_cost", result.UnitCost.String(),
	)

	return result, nil
}

// Decrease removes qty units from the ledger. The weighted-average unit cost
// only moves on receipt, so a decrease leaves it unchanged.
// Fails with INSUFFICIENT_STOCK when qty exceeds the locked current quantity.
// Also appends a Movement(out) and lowers Product.aggregate_stock.
func (s *Service) Decrease(ctx context.Context, productID, locationID id.ID, qty int64, reason string) (Entry, error) {
	if qty <= 0 {
		return Entry{}, apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", qty)
	}

	var result Entry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.repo.GetEntryForUpdate(ctx, productID, locationID)
		if err != nil {
			return fmt.Errorf("get entry for update: %w", err)
		}

		if entry.Quantity < qty {
			return apperror.NewInsufficientStock(productID.String(), qty, entry.Quantity)
		}

		entry.Quantity -= qty
		entry.TotalValue = entry.UnitCost.Mul(types.NewMoneyFromInt(entry.Quantity))
		entry.UpdatedAt = time.Now().UTC()

		if err := s.repo.UpsertEntry(ctx, entry); err != nil {
			return fmt.Errorf("upsert entry: %w", err)
		}

		movement := NewMovement(productID, locationID, DirectionOut, qty, entry.UnitCost, reason)
		if err := s.repo.InsertMovements(ctx, []Movement{movement}); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}

		if err := s.products.AdjustAggregateStock(ctx, productID, -qty); err != nil {
			return fmt.Errorf("adjust aggregate stock: %w", err)
		}

		result = entry
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	logger.Info(ctx, "stock decreased",
		"product_id", productID,
		"location_id", locationID,
		"quantity", qty,
	)

	return result, nil
}

// Movements returns movement history for reporting and the HTTP layer.
func (s *Service) Movements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	return s.repo.ListMovements(ctx, filter)
}

// GetLocation resolves a stock location.
func (s *Service) GetLocation(ctx context.Context, locationID id.ID) (Location, error) {
	return s.repo.GetLocation(ctx, locationID)
}
