package dto

import (
	"time"

	"backoffice/internal/domain/ledger/cash"
)

// RecordCashEntryRequest appends a deposit or withdrawal.
type RecordCashEntryRequest struct {
	Type        string `json:"type" binding:"required,oneof=deposit withdrawal"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

// CashEntriesQuery filters ledger history.
type CashEntriesQuery struct {
	PaginationRequest
	Type     string     `form:"type" binding:"omitempty,oneof=deposit withdrawal"`
	FromDate *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"toDate" time_format:"2006-01-02"`
}

// CashRegisterResponse is a register with its current balance.
type CashRegisterResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CurrentAmount string    `json:"currentAmount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FromCashRegister converts a register.
func FromCashRegister(r cash.Register) CashRegisterResponse {
	return CashRegisterResponse{
		ID:            r.ID.String(),
		Name:          r.Name,
		CurrentAmount: r.CurrentAmount.String(),
		UpdatedAt:     r.UpdatedAt,
	}
}

// CashEntryResponse is one ledger entry.
type CashEntryResponse struct {
	ID          string    `json:"id"`
	RegisterID  string    `json:"registerId"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FromCashEntry converts a ledger entry.
func FromCashEntry(e cash.Entry) CashEntryResponse {
	return CashEntryResponse{
		ID:          e.ID.String(),
		RegisterID:  e.RegisterID.String(),
		Type:        string(e.Type),
		Amount:      e.Amount.String(),
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// FromCashEntries converts a ledger entry slice.
func FromCashEntries(entries []cash.Entry) []CashEntryResponse {
	out := make([]CashEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromCashEntry(e))
	}
	return out
}
