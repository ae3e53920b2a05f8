// Package cash provides the cash register ledger: an append-only entry log
// plus a running balance per register.
package cash

import (
	"time"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// Register holds the current balance of one physical cash drawer.
type Register struct {
	ID            id.ID       `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	CurrentAmount types.Money `db:"current_amount" json:"currentAmount"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
}

// EntryType of a cash ledger entry.
type EntryType string

const (
	EntryDeposit    EntryType = "deposit"
	EntryWithdrawal EntryType = "withdrawal"
)

// Entry is one append-only cash movement. Entries are never updated or
// deleted; the register balance is the sum of deposits minus withdrawals.
type Entry struct {
	ID          id.ID       `db:"id" json:"id"`
	RegisterID  id.ID       `db:"register_id" json:"registerId"`
	Type        EntryType   `db:"entry_type" json:"type"`
	Amount      types.Money `db:"amount" json:"amount"`
	Description string      `db:"description" json:"description"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// NewEntry creates a cash ledger entry.
func NewEntry(registerID id.ID, entryType EntryType, amount types.Money, description string) Entry {
	return Entry{
		ID:          id.New(),
		RegisterID:  registerID,
		Type:        entryType,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// Signed returns the balance delta this entry applies to its register.
func (e Entry) Signed() types.Money {
	if e.Type == EntryWithdrawal {
		return e.Amount.Neg()
	}
	return e.Amount
}
