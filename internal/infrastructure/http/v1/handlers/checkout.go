package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/cart"
	"backoffice/internal/domain/checkout"
	"backoffice/internal/infrastructure/http/v1/dto"
	"backoffice/internal/infrastructure/storage/postgres"
)

// CheckoutHandler turns a terminal's cart into an order.
type CheckoutHandler struct {
	*BaseHandler
	service  *checkout.Service
	registry *cart.Registry
	audit    *postgres.AuditService
}

// NewCheckoutHandler creates a checkout handler. audit may be nil.
func NewCheckoutHandler(base *BaseHandler, service *checkout.Service, registry *cart.Registry, audit *postgres.AuditService) *CheckoutHandler {
	return &CheckoutHandler{
		BaseHandler: base,
		service:     service,
		registry:    registry,
		audit:       audit,
	}
}

// Checkout persists the terminal's cart as an order and clears the cart on
// success.
// POST /checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := h.buildInput(req)
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.Checkout(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Checkout succeeded; the reservations are now real ledger decrements.
	// Dropping the cart makes the next Add reseed availability from the ledger.
	h.registry.Drop(req.Terminal)

	h.OK(c, dto.FromOrder(order, nil))
}

// GetOrder returns an order with its lines and payment history.
// GET /orders/:id
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, payments, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(order, payments))
}

// History returns the audit trail of an order's edits, newest first.
// GET /orders/:id/history
func (h *CheckoutHandler) History(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 20)

	items := []dto.AuditEntryResponse{}
	if h.audit != nil {
		entries, err := h.audit.GetEntityHistory(c.Request.Context(), "order", orderID, limit)
		if err != nil {
			h.Error(c, err)
			return
		}
		for _, e := range entries {
			items = append(items, dto.AuditEntryResponse{
				Action:    e.Action,
				RequestID: e.RequestID,
				Changes:   e.Changes,
				CreatedAt: e.CreatedAt,
			})
		}
	}
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

func (h *CheckoutHandler) buildInput(req dto.CheckoutRequest) (checkout.Input, error) {
	sessionCart := h.registry.Get(req.Terminal)

	paid, err := types.NewMoneyFromString(req.PaidAmount)
	if err != nil {
		return checkout.Input{}, apperror.NewValidation("invalid paid amount").
			WithDetail("paidAmount", req.PaidAmount)
	}

	input := checkout.Input{
		Lines:      sessionCart.Snapshot(),
		LocationID: id.MustParse(req.LocationID),
		PaidAmount: paid,
		Method:     checkout.PaymentMethod(req.Method),
		Notes:      req.Notes,
	}

	if req.ClientID != "" {
		clientID := id.MustParse(req.ClientID)
		input.ClientID = &clientID
	}
	if req.ExistingOrderID != "" {
		orderID := id.MustParse(req.ExistingOrderID)
		input.ExistingOrderID = &orderID
	}
	if input.Method == checkout.MethodCash {
		if req.CashRegisterID == "" {
			return checkout.Input{}, apperror.NewValidation("cash register is required for cash payments")
		}
		input.CashRegisterID = id.MustParse(req.CashRegisterID)
	}

	input.Delivery.FullyDelivered = req.Delivery.FullyDelivered
	if len(req.Delivery.PerLine) > 0 {
		input.Delivery.PerLine = make(map[id.ID]int64, len(req.Delivery.PerLine))
		for productID, qty := range req.Delivery.PerLine {
			parsed, err := id.Parse(productID)
			if err != nil {
				return checkout.Input{}, apperror.NewValidation("invalid product id in delivery intent").
					WithDetail("productId", productID)
			}
			input.Delivery.PerLine[parsed] = qty
		}
	}

	return input, nil
}
