package invoice_payment

import (
	"context"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/documents"
)

// Repository defines operations for invoices and payments.
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// GetInvoiceForUpdate locks the invoice row so two concurrent
	// payments cannot both read the same remaining balance.
	GetInvoiceForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// SetPaymentState persists the advanced payment position.
	SetPaymentState(ctx context.Context, invoiceID id.ID, paid, remaining types.Money, status entity.PaymentStatus) error

	CreatePayment(ctx context.Context, p *Payment) error
	GetPayments(ctx context.Context, invoiceID id.ID) ([]Payment, error)

	// SetSourceDocument rewrites the invoice's source document link.
	SetSourceDocument(ctx context.Context, invoiceID id.ID, sourceDocumentID *id.ID) error

	// MarkSourceInvoiced flips the invoiced flag on the source document
	// (goods receipt for purchase invoices, waybill for sales). Fails
	// with a conflict when the flag already has the requested value.
	MarkSourceInvoiced(ctx context.Context, kind InvoiceKind, sourceDocumentID id.ID, invoiced bool) error

	ListInvoices(ctx context.Context, filter ListFilter) (documents.ListResult[*Invoice], error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	documents.ListFilter

	Kind           *InvoiceKind
	CounterpartyID *id.ID
	Status         *entity.PaymentStatus
}
