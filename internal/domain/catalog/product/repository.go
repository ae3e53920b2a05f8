package product

import (
	"context"

	"backoffice/internal/core/id"
)

// Repository defines read and stock-sync operations on products.
type Repository interface {
	// GetByID returns a product or a NOT_FOUND error.
	GetByID(ctx context.Context, productID id.ID) (Product, error)

	// GetByIDs returns products for the given ids (missing ids are skipped).
	GetByIDs(ctx context.Context, productIDs []id.ID) ([]Product, error)

	// AdjustAggregateStock shifts aggregate_stock by delta (may be negative).
	// Must run inside the caller's transaction; a zero-row update reports
	// NOT_FOUND rather than silent success.
	AdjustAggregateStock(ctx context.Context, productID id.ID, delta int64) error
}
