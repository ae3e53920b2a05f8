// Package checkout converts a cart snapshot plus payment input into a
// persisted order, its lines, a payment, a stock decrement and (for cash) a
// cash ledger entry, as one transaction.
package checkout

import (
	"time"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/cart"
)

// PaymentMethod of a checkout payment.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
	MethodCredit   PaymentMethod = "credit"
)

// PaymentStatus of an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// DeliveryStatus of an order. Pending is reserved for orders whose delivery
// was never addressed; awaiting means the checkout explicitly deferred it.
type DeliveryStatus string

const (
	DeliveryPending  DeliveryStatus = "pending"
	DeliveryAwaiting DeliveryStatus = "awaiting"
	DeliveryPartial  DeliveryStatus = "partial"
	DeliveryComplete DeliveryStatus = "delivered"
)

// Order is the persisted result of a checkout.
type Order struct {
	ID              id.ID          `db:"id" json:"id"`
	Number          string         `db:"number" json:"number"`
	ClientID        *id.ID         `db:"client_id" json:"clientId,omitempty"`
	LocationID      id.ID          `db:"location_id" json:"locationId"`
	Subtotal        types.Money    `db:"subtotal" json:"subtotal"`
	DiscountTotal   types.Money    `db:"discount_total" json:"discountTotal"`
	FinalTotal      types.Money    `db:"final_total" json:"finalTotal"`
	PaidAmount      types.Money    `db:"paid_amount" json:"paidAmount"`
	RemainingAmount types.Money    `db:"remaining_amount" json:"remainingAmount"`
	PaymentStatus   PaymentStatus  `db:"payment_status" json:"paymentStatus"`
	DeliveryStatus  DeliveryStatus `db:"delivery_status" json:"deliveryStatus"`
	Notes           string         `db:"notes" json:"notes,omitempty"`
	Version         int64          `db:"version" json:"version"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`

	Lines []OrderLine `db:"-" json:"lines"`
}

// OrderLine is one order position. DeliveredQuantity tracks physical handoff
// separately from the sale quantity.
type OrderLine struct {
	ID                id.ID       `db:"id" json:"id"`
	OrderID           id.ID       `db:"order_id" json:"orderId"`
	ProductID         id.ID       `db:"product_id" json:"productId"`
	Quantity          int64       `db:"quantity" json:"quantity"`
	UnitPrice         types.Money `db:"unit_price" json:"unitPrice"`
	DiscountPerUnit   types.Money `db:"discount_per_unit" json:"discountPerUnit"`
	DeliveredQuantity int64       `db:"delivered_quantity" json:"deliveredQuantity"`
}

// Payment is one append-only payment row, created per checkout call with a
// positive paid amount.
type Payment struct {
	ID        id.ID         `db:"id" json:"id"`
	OrderID   id.ID         `db:"order_id" json:"orderId"`
	Amount    types.Money   `db:"amount" json:"amount"`
	Method    PaymentMethod `db:"method" json:"method"`
	Notes     string        `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
}

// DeliveryIntent says how much of the order leaves with the customer at
// checkout time. FullyDelivered wins over PerLine; an empty intent means
// delivery is deferred (status awaiting).
type DeliveryIntent struct {
	FullyDelivered bool
	PerLine        map[id.ID]int64
}

// Input is everything a checkout call needs.
type Input struct {
	Lines           []cart.Line
	ClientID        *id.ID
	LocationID      id.ID
	PaidAmount      types.Money
	Method          PaymentMethod
	Notes           string
	Delivery        DeliveryIntent
	CashRegisterID  id.ID
	ExistingOrderID *id.ID
}
