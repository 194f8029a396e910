package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/goods_receipt"
	"kardex/internal/infrastructure/http/v1/dto"
	"kardex/internal/infrastructure/storage/postgres"
)

// GoodsReceiptHandler serves goods receipt endpoints.
type GoodsReceiptHandler struct {
	*BaseHandler
	service *goods_receipt.Service
}

// NewGoodsReceiptHandler creates a new goods receipt handler.
func NewGoodsReceiptHandler(base *BaseHandler, service *goods_receipt.Service) *GoodsReceiptHandler {
	return &GoodsReceiptHandler{BaseHandler: base, service: service}
}

// Create handles POST /goods-receipts
func (h *GoodsReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateGoodsReceiptRequest
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

	h.Audit(c, "goods_receipt", doc.ID, postgres.AuditActionCreate, doc)
	h.Created(c, doc.ID)
}

// GetByID handles GET /goods-receipts/:id
func (h *GoodsReceiptHandler) GetByID(c *gin.Context) {
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

// List handles GET /goods-receipts
func (h *GoodsReceiptHandler) List(c *gin.Context) {
	var query dto.GoodsReceiptListQuery
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
