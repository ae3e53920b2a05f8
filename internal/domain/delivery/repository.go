package delivery

import (
	"context"
	"time"

	"backoffice/internal/core/id"
)

// Repository defines storage operations for delivery notes.
type Repository interface {
	// GetNote returns a note header (without items) or NOT_FOUND.
	GetNote(ctx context.Context, noteID id.ID) (Note, error)

	// GetItems returns the note's items.
	GetItems(ctx context.Context, noteID id.ID) ([]Item, error)

	// UpdateItemReceived writes an item's received quantity. A zero-row update
	// reports NOT_FOUND rather than silent success.
	UpdateItemReceived(ctx context.Context, itemID id.ID, received int64) error

	// MarkReceived stamps the note received with its resolved destination.
	MarkReceived(ctx context.Context, noteID, locationID id.ID, receivedAt time.Time) error
}
