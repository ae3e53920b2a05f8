package handlers

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/ledger/cash"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// CashHandler serves cash registers and their ledger.
type CashHandler struct {
	*BaseHandler
	service *cash.Service
}

// NewCashHandler creates a cash handler.
func NewCashHandler(base *BaseHandler, service *cash.Service) *CashHandler {
	return &CashHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Get returns a register with its current balance.
// GET /cash-registers/:id
func (h *CashHandler) Get(c *gin.Context) {
	registerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	register, err := h.service.GetRegister(c.Request.Context(), registerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCashRegister(register))
}

// Record appends a deposit or withdrawal and moves the balance.
// POST /cash-registers/:id/entries
func (h *CashHandler) Record(c *gin.Context) {
	registerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordCashEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	amount, err := types.NewMoneyFromString(req.Amount)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid amount").WithDetail("amount", req.Amount))
		return
	}

	entry, err := h.service.Record(c.Request.Context(), registerID, cash.EntryType(req.Type), amount, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCashEntry(entry))
}

// ListEntries returns ledger history for a register, newest first.
// GET /cash-registers/:id/entries
func (h *CashHandler) ListEntries(c *gin.Context) {
	registerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var query dto.CashEntriesQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	filter := cash.EntryFilter{
		FromDate: query.FromDate,
		ToDate:   query.ToDate,
		Limit:    query.PageSize,
		Offset:   query.Offset(),
	}
	if query.Type != "" {
		entryType := cash.EntryType(query.Type)
		filter.Type = &entryType
	}

	entries, err := h.service.Entries(c.Request.Context(), registerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromCashEntries(entries)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}
