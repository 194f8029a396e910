package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/waybill"
	"kardex/internal/infrastructure/http/v1/dto"
	"kardex/internal/infrastructure/storage/postgres"
)

// WaybillHandler serves waybill (outbound shipment) endpoints.
type WaybillHandler struct {
	*BaseHandler
	service *waybill.Service
}

// NewWaybillHandler creates a new waybill handler.
func NewWaybillHandler(base *BaseHandler, service *waybill.Service) *WaybillHandler {
	return &WaybillHandler{BaseHandler: base, service: service}
}

// Create handles POST /waybills
func (h *WaybillHandler) Create(c *gin.Context) {
	var req dto.CreateWaybillRequest
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

	h.Audit(c, "waybill", doc.ID, postgres.AuditActionCreate, doc)
	h.Created(c, doc.ID)
}

// GetByID handles GET /waybills/:id
func (h *WaybillHandler) GetByID(c *gin.Context) {
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

// List handles GET /waybills
func (h *WaybillHandler) List(c *gin.Context) {
	var query dto.WaybillListQuery
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
