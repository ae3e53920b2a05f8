// Package stock provides the per-(product, location) stock ledger with
// weighted-average unit costing.
package stock

import (
	"time"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// LocationKind distinguishes warehouses from points of sale.
// Both kinds receive deliveries and hold ledger entries directly; there is no
// fallback redirection between kinds.
type LocationKind string

const (
	LocationWarehouse   LocationKind = "warehouse"
	LocationPointOfSale LocationKind = "point_of_sale"
)

// Location is a place stock can sit. Lifecycle is external to this core.
type Location struct {
	ID   id.ID        `db:"id" json:"id"`
	Name string       `db:"name" json:"name"`
	Kind LocationKind `db:"kind" json:"kind"`
}

// Direction of a stock movement.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Entry is the authoritative quantity and weighted-average unit cost for one
// (product, location) pair. At most one entry exists per pair; entries are
// mutated only by the ledger's Increase/Decrease operations.
type Entry struct {
	ProductID  id.ID       `db:"product_id" json:"productId"`
	LocationID id.ID       `db:"location_id" json:"locationId"`
	Quantity   int64       `db:"quantity" json:"quantity"`
	UnitCost   types.Money `db:"unit_cost" json:"unitCost"`
	TotalValue types.Money `db:"total_value" json:"totalValue"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`
}

// ZeroEntry returns the default entry for a pair with no ledger row.
func ZeroEntry(productID, locationID id.ID) Entry {
	return Entry{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   0,
		UnitCost:   types.Zero(),
		TotalValue: types.Zero(),
	}
}

// Movement is an append-only audit row, created once per ledger mutation and
// never updated or deleted.
type Movement struct {
	ID         id.ID       `db:"id" json:"id"`
	ProductID  id.ID       `db:"product_id" json:"productId"`
	LocationID id.ID       `db:"location_id" json:"locationId"`
	Direction  Direction   `db:"direction" json:"direction"`
	Quantity   int64       `db:"quantity" json:"quantity"`
	UnitPrice  types.Money `db:"unit_price" json:"unitPrice"`
	TotalValue types.Money `db:"total_value" json:"totalValue"`
	Reason     string      `db:"reason" json:"reason"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
}

// NewMovement creates a movement row for a ledger mutation.
func NewMovement(productID, locationID id.ID, direction Direction, qty int64, unitPrice types.Money, reason string) Movement {
	return Movement{
		ID:         id.New(),
		ProductID:  productID,
		LocationID: locationID,
		Direction:  direction,
		Quantity:   qty,
		UnitPrice:  unitPrice,
		TotalValue: unitPrice.Mul(types.NewMoneyFromInt(qty)),
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
}
