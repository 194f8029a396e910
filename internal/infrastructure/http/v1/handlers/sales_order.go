package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/sales_order"
	"kardex/internal/domain/fulfillment"
	"kardex/internal/infrastructure/http/v1/dto"
	"kardex/internal/infrastructure/storage/postgres"
)

// SalesOrderHandler serves sales order endpoints. Status is derived
// from waybills; there is no status mutation endpoint.
type SalesOrderHandler struct {
	*BaseHandler
	service     *sales_order.Service
	fulfillment *fulfillment.Service
}

// NewSalesOrderHandler creates a new sales order handler.
func NewSalesOrderHandler(base *BaseHandler, service *sales_order.Service, ff *fulfillment.Service) *SalesOrderHandler {
	return &SalesOrderHandler{BaseHandler: base, service: service, fulfillment: ff}
}

// Create handles POST /sales-orders
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req dto.CreateSalesOrderRequest
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

	h.Audit(c, "sales_order", doc.ID, postgres.AuditActionCreate, doc)
	h.Created(c, doc.ID)
}

// GetByID handles GET /sales-orders/:id
func (h *SalesOrderHandler) GetByID(c *gin.Context) {
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

// Progress handles GET /sales-orders/:id/progress
func (h *SalesOrderHandler) Progress(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	lines, err := h.fulfillment.SalesOrderProgress(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"lines": lines})
}

// List handles GET /sales-orders
func (h *SalesOrderHandler) List(c *gin.Context) {
	var query dto.SalesOrderListQuery
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
