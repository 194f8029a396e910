package dto

import (
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/types"
	"kardex/internal/domain/documents/invoice_payment"
)

// CreateInvoiceRequest for raising a payable or receivable invoice.
type CreateInvoiceRequest struct {
	Date             *time.Time  `json:"date"`
	Kind             string      `json:"kind" binding:"required"`
	CounterpartyID   string      `json:"counterpartyId" binding:"required"`
	SourceDocumentID *string     `json:"sourceDocumentId"`
	GrandTotal       types.Money `json:"grandTotal" binding:"required"`
	Comment          string      `json:"comment"`
}

// ToEntity builds the domain invoice.
func (r CreateInvoiceRequest) ToEntity() (*invoice_payment.Invoice, error) {
	kind := invoice_payment.InvoiceKind(r.Kind)
	if !kind.Valid() {
		return nil, apperror.NewValidation("unknown invoice kind").
			WithDetail("kind", r.Kind)
	}
	counterpartyID, err := ParseID("counterpartyId", r.CounterpartyID)
	if err != nil {
		return nil, err
	}

	inv := invoice_payment.NewInvoice(kind, counterpartyID, r.GrandTotal)
	if r.Date != nil {
		inv.Date = *r.Date
	}
	inv.Comment = r.Comment
	if inv.SourceDocumentID, err = ParseOptionalID("sourceDocumentId", r.SourceDocumentID); err != nil {
		return nil, err
	}
	return inv, nil
}

// AttachSourceRequest links a goods receipt or waybill to an invoice.
type AttachSourceRequest struct {
	SourceDocumentID string `json:"sourceDocumentId" binding:"required"`
}

// ApplyPaymentRequest records one payment against an invoice.
type ApplyPaymentRequest struct {
	Date    *time.Time  `json:"date"`
	Amount  types.Money `json:"amount" binding:"required"`
	Method  string      `json:"method"`
	Comment string      `json:"comment"`
}

// ToEntity builds the domain payment for the given invoice.
func (r ApplyPaymentRequest) ToEntity(invoiceID string) (*invoice_payment.Payment, error) {
	invID, err := ParseID("invoiceId", invoiceID)
	if err != nil {
		return nil, err
	}

	p := invoice_payment.NewPayment(invID, r.Amount, r.Method)
	if r.Date != nil {
		p.Date = *r.Date
	}
	p.Comment = r.Comment
	return p, nil
}

// InvoiceListQuery for listing invoices.
type InvoiceListQuery struct {
	ListQuery
	Kind           string `form:"kind"`
	CounterpartyID string `form:"counterpartyId"`
	Status         string `form:"status"`
}

// ToFilter converts to the repository filter.
func (q InvoiceListQuery) ToFilter() (invoice_payment.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return invoice_payment.ListFilter{}, err
	}
	filter := invoice_payment.ListFilter{ListFilter: base}
	if q.Kind != "" {
		kind := invoice_payment.InvoiceKind(q.Kind)
		if !kind.Valid() {
			return filter, apperror.NewValidation("unknown invoice kind").
				WithDetail("kind", q.Kind)
		}
		filter.Kind = &kind
	}
	if filter.CounterpartyID, err = ParseOptionalID("counterpartyId", &q.CounterpartyID); err != nil {
		return filter, err
	}
	if q.Status != "" {
		status := entity.PaymentStatus(q.Status)
		filter.Status = &status
	}
	return filter, nil
}
