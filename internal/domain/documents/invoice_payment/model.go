// Package invoice_payment provides invoices and their payments.
package invoice_payment

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// InvoiceKind distinguishes payables from receivables.
type InvoiceKind string

const (
	// InvoicePurchase is owed to a supplier (raised from a goods receipt).
	InvoicePurchase InvoiceKind = "purchase"
	// InvoiceSales is owed by a customer (raised from a waybill).
	InvoiceSales InvoiceKind = "sales"
)

// Valid reports whether k is a known invoice kind.
func (k InvoiceKind) Valid() bool {
	return k == InvoicePurchase || k == InvoiceSales
}

// Invoice carries a payable or receivable amount. Its payment position
// advances strictly forward as payments arrive; there is no void path.
type Invoice struct {
	entity.Document

	Kind InvoiceKind `db:"kind" json:"kind"`

	// CounterpartyID is the supplier or customer owing/owed the amount
	CounterpartyID id.ID `db:"counterparty_id" json:"counterpartyId"`

	// SourceDocumentID links the goods receipt or waybill invoiced
	SourceDocumentID *id.ID `db:"source_document_id" json:"sourceDocumentId,omitempty"`

	GrandTotal      types.Money          `db:"grand_total" json:"grandTotal"`
	PaidAmount      types.Money          `db:"paid_amount" json:"paidAmount"`
	RemainingAmount types.Money          `db:"remaining_amount" json:"remainingAmount"`
	Status          entity.PaymentStatus `db:"status" json:"status"`
}

// NewInvoice creates an unpaid invoice.
func NewInvoice(kind InvoiceKind, counterpartyID id.ID, grandTotal types.Money) *Invoice {
	return &Invoice{
		Document:        entity.NewDocument(),
		Kind:            kind,
		CounterpartyID:  counterpartyID,
		GrandTotal:      grandTotal,
		PaidAmount:      types.ZeroMoney(),
		RemainingAmount: grandTotal,
		Status:          entity.PaymentUnpaid,
	}
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}
	if !inv.Kind.Valid() {
		return apperror.NewValidation("unknown invoice kind").
			WithDetail("kind", string(inv.Kind))
	}
	if id.IsNil(inv.CounterpartyID) {
		return apperror.NewValidation("counterparty is required")
	}
	if !inv.GrandTotal.IsPositive() {
		return apperror.NewValidation("invoice total must be positive")
	}
	return nil
}

// Payment is one payment applied to an invoice.
type Payment struct {
	entity.Document

	InvoiceID id.ID       `db:"invoice_id" json:"invoiceId"`
	Amount    types.Money `db:"amount" json:"amount"`

	// Method is free-form: cash, bank, card
	Method string `db:"method" json:"method,omitempty"`
}

// NewPayment creates a payment against an invoice.
func NewPayment(invoiceID id.ID, amount types.Money, method string) *Payment {
	return &Payment{
		Document:  entity.NewDocument(),
		InvoiceID: invoiceID,
		Amount:    amount,
		Method:    method,
	}
}

// Validate implements entity.Validatable.
func (p *Payment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.InvoiceID) {
		return apperror.NewValidation("invoice is required")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive")
	}
	return nil
}
