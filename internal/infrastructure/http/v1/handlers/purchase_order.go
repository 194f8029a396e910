package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/purchase_order"
	"kardex/internal/domain/fulfillment"
	"kardex/internal/infrastructure/http/v1/dto"
	"kardex/internal/infrastructure/storage/postgres"
)

// PurchaseOrderHandler serves purchase order endpoints. Status is
// derived from goods receipts; there is no status mutation endpoint.
type PurchaseOrderHandler struct {
	*BaseHandler
	service     *purchase_order.Service
	fulfillment *fulfillment.Service
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchase_order.Service, ff *fulfillment.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{BaseHandler: base, service: service, fulfillment: ff}
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
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

	h.Audit(c, "purchase_order", doc.ID, postgres.AuditActionCreate, doc)
	h.Created(c, doc.ID)
}

// GetByID handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
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

// Progress handles GET /purchase-orders/:id/progress
func (h *PurchaseOrderHandler) Progress(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	lines, err := h.fulfillment.PurchaseOrderProgress(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"lines": lines})
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var query dto.PurchaseOrderListQuery
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
