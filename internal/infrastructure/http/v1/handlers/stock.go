package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/ledger"
	"kardex/internal/infrastructure/http/v1/dto"
)

// StockHandler serves read-only ledger queries: on-hand stock, cost
// layers, the movement log, and turnover reports. All stock mutation
// goes through documents; there is no direct write endpoint here.
type StockHandler struct {
	*BaseHandler
	ledger *ledger.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, ledgerSvc *ledger.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, ledger: ledgerSvc}
}

// Current returns on-hand quantity for item+holder.
// GET /stock/:itemId/current
func (h *StockHandler) Current(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "itemId")
	if !ok {
		return
	}

	var query dto.StockQuery
	if !h.BindQuery(c, &query) {
		return
	}
	holder, err := query.Holder()
	if err != nil {
		h.Error(c, err)
		return
	}

	quantity, err := h.ledger.CurrentStock(c.Request.Context(), itemID, holder)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.CurrentStockResponse{
		ItemID:   itemID,
		Holder:   holder,
		Quantity: quantity,
	})
}

// Batches returns the cost layers for item+holder, oldest first.
// GET /stock/:itemId/batches
func (h *StockHandler) Batches(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "itemId")
	if !ok {
		return
	}

	var query dto.BatchListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	holder, err := query.Holder()
	if err != nil {
		h.Error(c, err)
		return
	}

	batches, err := h.ledger.ListBatches(c.Request.Context(), itemID, holder, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": batches})
}

// Movements returns the movement log for an item.
// GET /stock/:itemId/movements
func (h *StockHandler) Movements(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "itemId")
	if !ok {
		return
	}

	var query dto.MovementListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	movements, err := h.ledger.MovementHistory(c.Request.Context(), itemID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": movements})
}

// Turnover aggregates receipt/expense totals for a period.
// GET /stock/turnover
func (h *StockHandler) Turnover(c *gin.Context) {
	var query dto.TurnoverQuery
	if !h.BindQuery(c, &query) {
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	turnover, err := h.ledger.Turnover(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, turnover)
}
