// Package cart implements the session-local reservation layer over the stock
// ledger. A cart tracks, per product, how much of the quantity the terminal
// last saw is tentatively claimed by cart lines, so the UI gets an immediate
// "insufficient stock" answer before checkout is even attempted.
//
// The cart never writes to the ledger. Its view is advisory: the transactional
// stock decrease at checkout time is the authority, and two terminals selling
// the same last unit will be serialized there, not here.
package cart

import (
	"sync"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// ProductInfo is the product slice a cart line is built from.
type ProductInfo struct {
	ID        id.ID
	Name      string
	UnitPrice types.Money
}

// Line is one cart position. Quantity stays >= 1; removal deletes the line.
type Line struct {
	ProductID       id.ID       `json:"productId"`
	Name            string      `json:"name"`
	UnitPrice       types.Money `json:"unitPrice"`
	Quantity        int64       `json:"quantity"`
	DiscountPerUnit types.Money `json:"discountPerUnit"`
}

// LineTotal returns (unit price - discount) * quantity.
func (l Line) LineTotal() types.Money {
	qty := types.NewMoneyFromInt(l.Quantity)
	return l.UnitPrice.Sub(l.DiscountPerUnit).Mul(qty)
}

// Cart is one terminal's session state. Safe for concurrent use; every
// operation holds the cart lock so the conservation invariant
// (reserved + available == initially seen) is never observable broken.
type Cart struct {
	mu        sync.Mutex
	lines     []Line
	available map[id.ID]int64
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{
		available: make(map[id.ID]int64),
	}
}

// Add reserves one unit of the product and merges it into the cart.
// initialAvailable seeds the local availability pool the first time this
// product is touched in the session; later calls ignore it.
func (c *Cart) Add(p ProductInfo, initialAvailable int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, seeded := c.available[p.ID]; !seeded {
		c.available[p.ID] = initialAvailable
	}
	if c.available[p.ID] <= 0 {
		return apperror.NewInsufficientStock(p.ID.String(), 1, c.available[p.ID])
	}

	c.available[p.ID]--
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return nil
		}
	}
	c.lines = append(c.lines, Line{
		ProductID:       p.ID,
		Name:            p.Name,
		UnitPrice:       p.UnitPrice,
		Quantity:        1,
		DiscountPerUnit: types.Zero(),
	})
	return nil
}

// Remove deletes the product's line and restores its full quantity to the
// local availability pool.
func (c *Cart) Remove(productID id.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.available[productID] += c.lines[i].Quantity
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("cart line", productID)
}

// SetQuantity changes a line's quantity. Growth is admitted only against the
// local availability pool; shrinkage returns units to it. The floor is 1 —
// dropping a line goes through Remove.
func (c *Cart) SetQuantity(productID id.ID, newQty int64) error {
	if newQty < 1 {
		return apperror.NewValidation("quantity must be at least 1").
			WithDetail("quantity", newQty)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		delta := newQty - c.lines[i].Quantity
		if delta > 0 && c.available[productID] < delta {
			return apperror.NewInsufficientStock(productID.String(), delta, c.available[productID])
		}
		c.available[productID] -= delta
		c.lines[i].Quantity = newQty
		return nil
	}
	return apperror.NewNotFound("cart line", productID)
}

// UpdateDiscount sets the per-unit discount on a line, clamped to >= 0.
// Discounts do not touch the reservation pool.
func (c *Cart) UpdateDiscount(productID id.ID, perUnit types.Money) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].DiscountPerUnit = types.MaxMoney(perUnit, types.Zero())
			return nil
		}
	}
	return apperror.NewNotFound("cart line", productID)
}

// Clear restores every line to the availability pool and empties the cart.
// The seeded availability survives so a follow-up Add reuses the session view.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range c.lines {
		c.available[l.ProductID] += l.Quantity
	}
	c.lines = nil
}

// Snapshot returns a copy of the current lines in insertion order.
func (c *Cart) Snapshot() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Available reports the local availability for a product (0 if never seeded).
func (c *Cart) Available(productID id.ID) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available[productID]
}

// Subtotal is the sum of price*qty across lines, before discounts.
func (c *Cart) Subtotal() types.Money {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := types.Zero()
	for _, l := range c.lines {
		total = total.Add(l.UnitPrice.Mul(types.NewMoneyFromInt(l.Quantity)))
	}
	return total
}

// DiscountTotal is the sum of discount*qty across lines.
func (c *Cart) DiscountTotal() types.Money {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := types.Zero()
	for _, l := range c.lines {
		total = total.Add(l.DiscountPerUnit.Mul(types.NewMoneyFromInt(l.Quantity)))
	}
	return total
}

// Total is subtotal minus discount total.
func (c *Cart) Total() types.Money {
	return c.Subtotal().Sub(c.DiscountTotal())
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}
