package cash

import (
	"context"
	"time"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// Repository defines storage operations for cash registers and their ledger.
type Repository interface {
	// GetRegister returns a register or NOT_FOUND.
	GetRegister(ctx context.Context, registerID id.ID) (Register, error)

	// GetRegisterForUpdate returns the register with a row lock so concurrent
	// recordings against the same drawer serialize. Must be called within a
	// transaction.
	GetRegisterForUpdate(ctx context.Context, registerID id.ID) (Register, error)

	// UpdateRegisterAmount sets the register balance. A zero-row update reports
	// NOT_FOUND rather than silent success.
	UpdateRegisterAmount(ctx context.Context, registerID id.ID, amount types.Money) error

	// InsertEntry appends one ledger entry.
	InsertEntry(ctx context.Context, entry Entry) error

	// ListEntries returns ledger history for a register, newest first.
	ListEntries(ctx context.Context, registerID id.ID, filter EntryFilter) ([]Entry, error)
}

// EntryFilter for ledger history queries.
type EntryFilter struct {
	Type     *EntryType
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
