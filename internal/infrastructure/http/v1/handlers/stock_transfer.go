package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/stock_transfer"
	"kardex/internal/infrastructure/http/v1/dto"
	"kardex/internal/infrastructure/storage/postgres"
)

// StockTransferHandler serves stock transfer endpoints.
type StockTransferHandler struct {
	*BaseHandler
	service *stock_transfer.Service
}

// NewStockTransferHandler creates a new stock transfer handler.
func NewStockTransferHandler(base *BaseHandler, service *stock_transfer.Service) *StockTransferHandler {
	return &StockTransferHandler{BaseHandler: base, service: service}
}

// Create handles POST /stock-transfers
func (h *StockTransferHandler) Create(c *gin.Context) {
	var req dto.CreateStockTransferRequest
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

	h.Audit(c, "stock_transfer", doc.ID, postgres.AuditActionCreate, doc)
	h.Created(c, doc.ID)
}

// GetByID handles GET /stock-transfers/:id
func (h *StockTransferHandler) GetByID(c *gin.Context) {
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

// List handles GET /stock-transfers
func (h *StockTransferHandler) List(c *gin.Context) {
	var query dto.TransferListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}
