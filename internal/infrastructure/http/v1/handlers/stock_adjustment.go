package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/stock_adjustment"
	"kardex/internal/infrastructure/http/v1/dto"
	"kardex/internal/infrastructure/storage/postgres"
)

// StockAdjustmentHandler serves stock adjustment endpoints.
type StockAdjustmentHandler struct {
	*BaseHandler
	service *stock_adjustment.Service
}

// NewStockAdjustmentHandler creates a new stock adjustment handler.
func NewStockAdjustmentHandler(base *BaseHandler, service *stock_adjustment.Service) *StockAdjustmentHandler {
	return &StockAdjustmentHandler{BaseHandler: base, service: service}
}

// Create handles POST /stock-adjustments
func (h *StockAdjustmentHandler) Create(c *gin.Context) {
	var req dto.CreateStockAdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	doc.CreatedBy = h.GetUserID(c)

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, "stock_adjustment", doc.ID, postgres.AuditActionCreate, doc)
	h.Created(c, doc.ID)
}

// GetByID handles GET /stock-adjustments/:id
func (h *StockAdjustmentHandler) GetByID(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /stock-adjustments
func (h *StockAdjustmentHandler) List(c *gin.Context) {
	var query dto.HolderListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	base, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	holder, err := query.Holder()
	if err != nil {
		h.Error(c, err)
		return
	}
	filter := stock_adjustment.ListFilter{ListFilter: base, Holder: holder}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}
