package dto

import (
	"backoffice/internal/domain/cart"
)

// AddCartItemRequest adds one unit of a product to the terminal's cart.
type AddCartItemRequest struct {
	ProductID  string `json:"productId" binding:"required,uuid"`
	LocationID string `json:"locationId" binding:"required,uuid"`
}

// SetCartQuantityRequest changes a cart line's quantity.
type SetCartQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}

// SetCartDiscountRequest sets a cart line's per-unit discount.
type SetCartDiscountRequest struct {
	DiscountPerUnit string `json:"discountPerUnit" binding:"required"`
}

// CartLineResponse is one cart line.
type CartLineResponse struct {
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	UnitPrice       string `json:"unitPrice"`
	Quantity        int64  `json:"quantity"`
	DiscountPerUnit string `json:"discountPerUnit"`
	LineTotal       string `json:"lineTotal"`
}

// CartResponse is the terminal's cart with derived totals.
type CartResponse struct {
	Terminal      string             `json:"terminal"`
	Lines         []CartLineResponse `json:"lines"`
	Subtotal      string             `json:"subtotal"`
	DiscountTotal string             `json:"discountTotal"`
	Total         string             `json:"total"`
}

// FromCart builds a CartResponse snapshot.
func FromCart(terminal string, c *cart.Cart) CartResponse {
	lines := c.Snapshot()
	out := make([]CartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, CartLineResponse{
			ProductID:       l.ProductID.String(),
			Name:            l.Name,
			UnitPrice:       l.UnitPrice.String(),
			Quantity:        l.Quantity,
			DiscountPerUnit: l.DiscountPerUnit.String(),
			LineTotal:       l.LineTotal().String(),
		})
	}
	return CartResponse{
		Terminal:      terminal,
		Lines:         out,
		Subtotal:      c.Subtotal().String(),
		DiscountTotal: c.DiscountTotal().String(),
		Total:         c.Total().String(),
	}
}
