package stock

import (
	"context"
	"time"

	"backoffice/internal/core/id"
)

// Repository defines storage operations for the stock ledger.
type Repository interface {
	// GetEntry returns the entry for (product, location), or the zero-quantity
	// default if no row exists.
	GetEntry(ctx context.Context, productID, locationID id.ID) (Entry, error)

	// GetEntryForUpdate returns the entry with a row lock (SELECT ... FOR UPDATE)
	// so that concurrent mutations against the same pair serialize.
	// Must be called within a transaction.
	GetEntryForUpdate(ctx context.Context, productID, locationID id.ID) (Entry, error)

	// UpsertEntry inserts or updates the entry for its (product, location) pair.
	UpsertEntry(ctx context.Context, entry Entry) error

	// InsertMovements appends audit movements (batch, COPY inside a transaction).
	InsertMovements(ctx context.Context, movements []Movement) error

	// ListMovements returns movement history, newest first.
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)

	// GetLocation returns a stock location or NOT_FOUND.
	GetLocation(ctx context.Context, locationID id.ID) (Location, error)
}

// MovementFilter for movement history queries.
type MovementFilter struct {
	ProductID  *id.ID
	LocationID *id.ID
	Direction  *Direction
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}
