package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/cart"
	"backoffice/internal/domain/catalog/product"
	"backoffice/internal/domain/ledger/stock"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// CartHandler serves the per-terminal cart session.
type CartHandler struct {
	*BaseHandler
	registry *cart.Registry
	products product.Repository
	stock    *stock.Service
}

// NewCartHandler creates a cart handler.
func NewCartHandler(base *BaseHandler, registry *cart.Registry, products product.Repository, stockService *stock.Service) *CartHandler {
	return &CartHandler{
		BaseHandler: base,
		registry:    registry,
		products:    products,
		stock:       stockService,
	}
}

// Get returns the terminal's cart with derived totals.
// GET /carts/:terminal
func (h *CartHandler) Get(c *gin.Context) {
	terminal := c.Param("terminal")
	h.OK(c, dto.FromCart(terminal, h.registry.Get(terminal)))
}

// AddItem reserves one unit of a product into the cart. The availability
// pool is seeded from the live ledger quantity the first time the product is
// touched in this session.
// POST /carts/:terminal/items
func (h *CartHandler) AddItem(c *gin.Context) {
	terminal := c.Param("terminal")

	var req dto.AddCartItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	productID := id.MustParse(req.ProductID)
	locationID := id.MustParse(req.LocationID)

	ctx := c.Request.Context()
	p, err := h.products.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	entry, err := h.stock.Get(ctx, productID, locationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	sessionCart := h.registry.Get(terminal)
	info := cart.ProductInfo{ID: p.ID, Name: p.Name, UnitPrice: p.SalePrice}
	if err := sessionCart.Add(info, entry.Quantity); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCart(terminal, sessionCart))
}

// RemoveItem deletes a cart line and restores its reservation.
// DELETE /carts/:terminal/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	terminal := c.Param("terminal")
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	sessionCart := h.registry.Get(terminal)
	if err := sessionCart.Remove(productID); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCart(terminal, sessionCart))
}

// SetQuantity changes a line's quantity (floor 1; growth checked against the
// session's availability pool).
// PATCH /carts/:terminal/items/:productId
func (h *CartHandler) SetQuantity(c *gin.Context) {
	terminal := c.Param("terminal")
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	var req dto.SetCartQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sessionCart := h.registry.Get(terminal)
	if err := sessionCart.SetQuantity(productID, req.Quantity); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCart(terminal, sessionCart))
}

// SetDiscount sets a line's per-unit discount.
// PATCH /carts/:terminal/items/:productId/discount
func (h *CartHandler) SetDiscount(c *gin.Context) {
	terminal := c.Param("terminal")
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	var req dto.SetCartDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	discount, err := types.NewMoneyFromString(req.DiscountPerUnit)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid discount").WithDetail("discountPerUnit", req.DiscountPerUnit))
		return
	}

	sessionCart := h.registry.Get(terminal)
	if err := sessionCart.UpdateDiscount(productID, discount); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCart(terminal, sessionCart))
}

// Clear empties the cart, restoring all reservations.
// DELETE /carts/:terminal
func (h *CartHandler) Clear(c *gin.Context) {
	terminal := c.Param("terminal")
	h.registry.Get(terminal).Clear()
	h.NoContent(c)
}
