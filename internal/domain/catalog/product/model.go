// Package product provides the product catalog contract used by the
// stock-and-checkout core. Product lifecycle is owned by catalog management;
// this core only reads products and keeps aggregate_stock in sync with the
// stock ledger.
package product

import (
	"time"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// Product is a catalog item.
// aggregate_stock is the denormalized sum of ledger quantities across all
// locations and is mutated only through Repository.AdjustAggregateStock.
type Product struct {
	ID             id.ID       `db:"id" json:"id"`
	Name           string      `db:"name" json:"name"`
	Reference      string      `db:"reference" json:"reference"`
	PurchasePrice  types.Money `db:"purchase_price" json:"purchasePrice"`
	SalePrice      types.Money `db:"sale_price" json:"salePrice"`
	AggregateStock int64       `db:"aggregate_stock" json:"aggregateStock"`
	Category       string      `db:"category" json:"category,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`
}
