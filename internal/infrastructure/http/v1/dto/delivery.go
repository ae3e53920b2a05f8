package dto

import (
	"time"

	"backoffice/internal/domain/delivery"
)

// ReceiveDeliveryRequest books a delivery note's received quantities.
// Received maps item id to the quantity actually received.
type ReceiveDeliveryRequest struct {
	LocationID string           `json:"locationId" binding:"required,uuid"`
	Received   map[string]int64 `json:"received" binding:"required"`
}

// DeliveryItemResponse is one delivery note line.
type DeliveryItemResponse struct {
	ID               string `json:"id"`
	ProductID        string `json:"productId"`
	Quantity         int64  `json:"quantity"`
	QuantityReceived int64  `json:"quantityReceived"`
	UnitPrice        string `json:"unitPrice"`
}

// DeliveryNoteResponse is a delivery note with its items.
type DeliveryNoteResponse struct {
	ID         string                 `json:"id"`
	Number     string                 `json:"number"`
	SupplierID string                 `json:"supplierId"`
	Status     string                 `json:"status"`
	LocationID *string                `json:"locationId,omitempty"`
	ReceivedAt *time.Time             `json:"receivedAt,omitempty"`
	Items      []DeliveryItemResponse `json:"items"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// FromDeliveryNote converts a note with its items.
func FromDeliveryNote(n delivery.Note) DeliveryNoteResponse {
	items := make([]DeliveryItemResponse, 0, len(n.Items))
	for _, it := range n.Items {
		items = append(items, DeliveryItemResponse{
			ID:               it.ID.String(),
			ProductID:        it.ProductID.String(),
			Quantity:         it.Quantity,
			QuantityReceived: it.QuantityReceived,
			UnitPrice:        it.UnitPrice.String(),
		})
	}

	var locationID *string
	if n.LocationID != nil {
		s := n.LocationID.String()
		locationID = &s
	}

	return DeliveryNoteResponse{
		ID:         n.ID.String(),
		Number:     n.Number,
		SupplierID: n.SupplierID.String(),
		Status:     string(n.Status),
		LocationID: locationID,
		ReceivedAt: n.ReceivedAt,
		Items:      items,
		CreatedAt:  n.CreatedAt,
	}
}
