// Package delivery processes delivery-note receipts: approved quantities
// flow into the stock ledger, the note is stamped received, and every item
// update rides the same transaction as the ledger increases.
package delivery

import (
	"time"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// NoteStatus of a delivery note. The purchasing lifecycle upstream of
// "approved" is external; this core only moves approved notes to received.
type NoteStatus string

const (
	NoteApproved NoteStatus = "approved"
	NoteReceived NoteStatus = "received"
)

// Note is a supplier delivery document.
type Note struct {
	ID         id.ID      `db:"id" json:"id"`
	Number     string     `db:"number" json:"number"`
	SupplierID id.ID      `db:"supplier_id" json:"supplierId"`
	Status     NoteStatus `db:"status" json:"status"`
	LocationID *id.ID     `db:"location_id" json:"locationId,omitempty"`
	ReceivedAt *time.Time `db:"received_at" json:"receivedAt,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`

	Items []Item `db:"-" json:"items"`
}

// Item is one delivery note line. QuantityReceived is written at receipt
// time and may be below the ordered quantity.
type Item struct {
	ID               id.ID       `db:"id" json:"id"`
	NoteID           id.ID       `db:"note_id" json:"noteId"`
	ProductID        id.ID       `db:"product_id" json:"productId"`
	Quantity         int64       `db:"quantity" json:"quantity"`
	QuantityReceived int64       `db:"quantity_received" json:"quantityReceived"`
	UnitPrice        types.Money `db:"unit_price" json:"unitPrice"`
}
