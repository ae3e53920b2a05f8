package dto

import (
	"encoding/json"
	"time"

	"backoffice/internal/domain/checkout"
)

// CheckoutRequest converts the terminal's cart into an order.
type CheckoutRequest struct {
	Terminal        string           `json:"terminal" binding:"required"`
	ClientID        string           `json:"clientId" binding:"omitempty,uuid"`
	LocationID      string           `json:"locationId" binding:"required,uuid"`
	PaidAmount      string           `json:"paidAmount" binding:"required"`
	Method          string           `json:"method" binding:"required,oneof=cash card transfer credit"`
	Notes           string           `json:"notes"`
	CashRegisterID  string           `json:"cashRegisterId" binding:"omitempty,uuid"`
	ExistingOrderID string           `json:"existingOrderId" binding:"omitempty,uuid"`
	Delivery        DeliveryIntentIn `json:"delivery"`
}

// DeliveryIntentIn is the delivery portion of a checkout request.
// PerLine maps product id to the quantity handed over at checkout.
type DeliveryIntentIn struct {
	FullyDelivered bool             `json:"fullyDelivered"`
	PerLine        map[string]int64 `json:"perLine"`
}

// OrderLineResponse is one order line.
type OrderLineResponse struct {
	ID                string `json:"id"`
	ProductID         string `json:"productId"`
	Quantity          int64  `json:"quantity"`
	UnitPrice         string `json:"unitPrice"`
	DiscountPerUnit   string `json:"discountPerUnit"`
	DeliveredQuantity int64  `json:"deliveredQuantity"`
}

// OrderResponse is a persisted order.
type OrderResponse struct {
	ID              string              `json:"id"`
	Number          string              `json:"number"`
	ClientID        *string             `json:"clientId,omitempty"`
	LocationID      string              `json:"locationId"`
	Subtotal        string              `json:"subtotal"`
	DiscountTotal   string              `json:"discountTotal"`
	FinalTotal      string              `json:"finalTotal"`
	PaidAmount      string              `json:"paidAmount"`
	RemainingAmount string              `json:"remainingAmount"`
	PaymentStatus   string              `json:"paymentStatus"`
	DeliveryStatus  string              `json:"deliveryStatus"`
	Notes           string              `json:"notes,omitempty"`
	Lines           []OrderLineResponse `json:"lines"`
	Payments        []PaymentResponse   `json:"payments,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// PaymentResponse is one payment row.
type PaymentResponse struct {
	ID        string    `json:"id"`
	Amount    string    `json:"amount"`
	Method    string    `json:"method"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditEntryResponse is one row of an order's change history.
type AuditEntryResponse struct {
	Action    string          `json:"action"`
	RequestID string          `json:"requestId,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FromOrder converts an order with its lines.
func FromOrder(o checkout.Order, payments []checkout.Payment) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ID:                l.ID.String(),
			ProductID:         l.ProductID.String(),
			Quantity:          l.Quantity,
			UnitPrice:         l.UnitPrice.String(),
			DiscountPerUnit:   l.DiscountPerUnit.String(),
			DeliveredQuantity: l.DeliveredQuantity,
		})
	}

	var paymentsOut []PaymentResponse
	for _, p := range payments {
		paymentsOut = append(paymentsOut, PaymentResponse{
			ID:        p.ID.String(),
			Amount:    p.Amount.String(),
			Method:    string(p.Method),
			Notes:     p.Notes,
			CreatedAt: p.CreatedAt,
		})
	}

	var clientID *string
	if o.ClientID != nil {
		s := o.ClientID.String()
		clientID = &s
	}

	return OrderResponse{
		ID:              o.ID.String(),
		Number:          o.Number,
		ClientID:        clientID,
		LocationID:      o.LocationID.String(),
		Subtotal:        o.Subtotal.String(),
		DiscountTotal:   o.DiscountTotal.String(),
		FinalTotal:      o.FinalTotal.String(),
		PaidAmount:      o.PaidAmount.String(),
		RemainingAmount: o.RemainingAmount.String(),
		PaymentStatus:   string(o.PaymentStatus),
		DeliveryStatus:  string(o.DeliveryStatus),
		Notes:           o.Notes,
		Lines:           lines,
		Payments:        paymentsOut,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
