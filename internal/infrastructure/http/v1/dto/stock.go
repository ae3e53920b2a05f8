package dto

import (
	"time"

	"backoffice/internal/domain/ledger/stock"
)

// StockEntryQuery selects one stock ledger entry.
type StockEntryQuery struct {
	ProductID  string `form:"productId" binding:"required,uuid"`
	LocationID string `form:"locationId" binding:"required,uuid"`
}

// StockMovementsQuery filters movement history.
type StockMovementsQuery struct {
	PaginationRequest
	ProductID  string     `form:"productId" binding:"omitempty,uuid"`
	LocationID string     `form:"locationId" binding:"omitempty,uuid"`
	Direction  string     `form:"direction" binding:"omitempty,oneof=in out"`
	FromDate   *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"toDate" time_format:"2006-01-02"`
}

// StockEntryResponse is one stock ledger entry.
type StockEntryResponse struct {
	ProductID  string    `json:"productId"`
	LocationID string    `json:"locationId"`
	Quantity   int64     `json:"quantity"`
	UnitCost   string    `json:"unitCost"`
	TotalValue string    `json:"totalValue"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FromStockEntry converts a ledger entry.
func FromStockEntry(e stock.Entry) StockEntryResponse {
	return StockEntryResponse{
		ProductID:  e.ProductID.String(),
		LocationID: e.LocationID.String(),
		Quantity:   e.Quantity,
		UnitCost:   e.UnitCost.String(),
		TotalValue: e.TotalValue.String(),
		UpdatedAt:  e.UpdatedAt,
	}
}

// StockMovementResponse is one movement audit row.
type StockMovementResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	LocationID string    `json:"locationId"`
	Direction  string    `json:"direction"`
	Quantity   int64     `json:"quantity"`
	UnitPrice  string    `json:"unitPrice"`
	TotalValue string    `json:"totalValue"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FromStockMovement converts a movement row.
func FromStockMovement(m stock.Movement) StockMovementResponse {
	return StockMovementResponse{
		ID:         m.ID.String(),
		ProductID:  m.ProductID.String(),
		LocationID: m.LocationID.String(),
		Direction:  string(m.Direction),
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice.String(),
		TotalValue: m.TotalValue.String(),
		Reason:     m.Reason,
		CreatedAt:  m.CreatedAt,
	}
}

// FromStockMovements converts a movement slice.
func FromStockMovements(movements []stock.Movement) []StockMovementResponse {
	out := make([]StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, FromStockMovement(m))
	}
	return out
}
