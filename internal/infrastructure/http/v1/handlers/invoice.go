package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/documents/invoice_payment"
	"kardex/internal/infrastructure/http/v1/dto"
	"kardex/internal/infrastructure/storage/postgres"
)

// InvoiceHandler serves invoice and payment endpoints. Payments only
// ever move an invoice forward; there is no void or refund endpoint.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice_payment.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice_payment.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	inv.CreatedBy = h.GetUserID(c)

	if err := h.service.CreateInvoice(c.Request.Context(), inv); err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, "invoice", inv.ID, postgres.AuditActionCreate, inv)
	h.Created(c, inv.ID)
}

// GetByID handles GET /invoices/:id
// Returns the invoice together with its payment history.
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	inv, payments, err := h.service.GetInvoice(c.Request.Context(), invID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"invoice":  inv,
		"payments": payments,
	})
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var query dto.InvoiceListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// AttachSource handles POST /invoices/:id/source
// Links a goods receipt or waybill and marks it invoiced.
func (h *InvoiceHandler) AttachSource(c *gin.Context) {
	invID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AttachSourceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sourceID, err := dto.ParseID("sourceDocumentId", req.SourceDocumentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.AttachSource(c.Request.Context(), invID, sourceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, "invoice", inv.ID, postgres.AuditActionUpdate, inv)
	h.OK(c, inv)
}

// DetachSource handles DELETE /invoices/:id/source
// Clears the invoiced flag on the linked document.
func (h *InvoiceHandler) DetachSource(c *gin.Context) {
	invID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.DetachSource(c.Request.Context(), invID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, "invoice", inv.ID, postgres.AuditActionUpdate, inv)
	h.OK(c, inv)
}

// ApplyPayment handles POST /invoices/:id/payments
func (h *InvoiceHandler) ApplyPayment(c *gin.Context) {
	var req dto.ApplyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := req.ToEntity(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	payment.CreatedBy = h.GetUserID(c)

	state, err := h.service.ApplyPayment(c.Request.Context(), payment)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Audit(c, "payment", payment.ID, postgres.AuditActionCreate, payment)
	h.OK(c, gin.H{
		"paymentId": payment.ID,
		"state":     state,
	})
}
