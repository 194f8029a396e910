package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/stock_audit"
	"kardex/internal/infrastructure/http/v1/dto"
	"kardex/internal/infrastructure/storage/postgres"
)

// StockAuditHandler serves stock audit (count) endpoints.
type StockAuditHandler struct {
	*BaseHandler
	service *stock_audit.Service
}

// NewStockAuditHandler creates a new stock audit handler.
func NewStockAuditHandler(base *BaseHandler, service *stock_audit.Service) *StockAuditHandler {
	return &StockAuditHandler{BaseHandler: base, service: service}
}

// Create handles POST /stock-audits
func (h *StockAuditHandler) Create(c *gin.Context) {
	var req dto.CreateStockAuditRequest
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

	h.Audit(c, "stock_audit", doc.ID, postgres.AuditActionCreate, doc)
	h.Created(c, doc.ID)
}

// GetByID handles GET /stock-audits/:id
func (h *StockAuditHandler) GetByID(c *gin.Context) {
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

// List handles GET /stock-audits
func (h *StockAuditHandler) List(c *gin.Context) {
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
	filter := stock_audit.ListFilter{ListFilter: base, Holder: holder}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}
