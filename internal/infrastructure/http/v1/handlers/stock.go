package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/ledger/stock"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// StockHandler serves read access to the stock ledger.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetEntry returns the ledger entry for (product, location); a pair with no
// row reads as zero quantity, zero cost.
// GET /stock/entries?productId=...&locationId=...
func (h *StockHandler) GetEntry(c *gin.Context) {
	var query dto.StockEntryQuery
	if !h.BindQuery(c, &query) {
		return
	}

	entry, err := h.service.Get(c.Request.Context(), id.MustParse(query.ProductID), id.MustParse(query.LocationID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromStockEntry(entry))
}

// GetMovements returns movement history, newest first.
// GET /stock/movements
func (h *StockHandler) GetMovements(c *gin.Context) {
	var query dto.StockMovementsQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	filter := stock.MovementFilter{
		FromDate: query.FromDate,
		ToDate:   query.ToDate,
		Limit:    query.PageSize,
		Offset:   query.Offset(),
	}
	if query.ProductID != "" {
		productID := id.MustParse(query.ProductID)
		filter.ProductID = &productID
	}
	if query.LocationID != "" {
		locationID := id.MustParse(query.LocationID)
		filter.LocationID = &locationID
	}
	if query.Direction != "" {
		direction := stock.Direction(query.Direction)
		filter.Direction = &direction
	}

	movements, err := h.service.Movements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromStockMovements(movements)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}
