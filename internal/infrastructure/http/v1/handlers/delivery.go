package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/delivery"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// DeliveryHandler serves delivery note receipt.
type DeliveryHandler struct {
	*BaseHandler
	service *delivery.Service
}

// NewDeliveryHandler creates a delivery handler.
func NewDeliveryHandler(base *BaseHandler, service *delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Get returns a delivery note with its items.
// GET /delivery-notes/:id
func (h *DeliveryHandler) Get(c *gin.Context) {
	noteID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	note, err := h.service.Get(c.Request.Context(), noteID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDeliveryNote(note))
}

// Receive books received quantities into the stock ledger and marks the note
// received.
// POST /delivery-notes/:id/receive
func (h *DeliveryHandler) Receive(c *gin.Context) {
	noteID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReceiveDeliveryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	received := make(map[id.ID]int64, len(req.Received))
	for itemID, qty := range req.Received {
		parsed, err := id.Parse(itemID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid item id").WithDetail("itemId", itemID))
			return
		}
		received[parsed] = qty
	}

	note, err := h.service.Receive(c.Request.Context(), noteID, received, id.MustParse(req.LocationID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDeliveryNote(note))
}
