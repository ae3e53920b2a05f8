package checkout

import (
	"context"

	"backoffice/internal/core/id"
)

// Repository defines storage operations for orders and payments.
type Repository interface {
	// InsertOrder persists a new order header.
	InsertOrder(ctx context.Context, order Order) error

	// UpdateOrder rewrites an existing order header, guarded by the optimistic
	// version counter. A zero-row update reports CONCURRENT_MODIFICATION.
	UpdateOrder(ctx context.Context, order Order) error

	// GetOrder returns an order header (without lines) or NOT_FOUND.
	GetOrder(ctx context.Context, orderID id.ID) (Order, error)

	// GetLines returns the order's lines in insertion order.
	GetLines(ctx context.Context, orderID id.ID) ([]OrderLine, error)

	// ReplaceLines swaps the order's line set atomically (delete-then-insert).
	// Must run inside the caller's transaction.
	ReplaceLines(ctx context.Context, orderID id.ID, lines []OrderLine) error

	// InsertPayment appends one payment row.
	InsertPayment(ctx context.Context, payment Payment) error

	// ListPayments returns payments for an order, oldest first.
	ListPayments(ctx context.Context, orderID id.ID) ([]Payment, error)
}
