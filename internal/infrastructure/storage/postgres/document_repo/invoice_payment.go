package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/documents"
	"kardex/internal/domain/documents/invoice_payment"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable = "doc_invoices"
	paymentsTable = "doc_payments"
)

var invoiceColumns = docCols(
	"kind", "counterparty_id", "source_document_id",
	"grand_total", "paid_amount", "remaining_amount", "status",
)

var paymentColumns = docCols(
	"invoice_id", "amount", "method",
)

// InvoicePaymentRepo implements invoice_payment.Repository.
type InvoicePaymentRepo struct {
	baseRepo
}

// NewInvoicePaymentRepo creates a new invoice/payment repository.
func NewInvoicePaymentRepo(txManager *postgres.TxManager) *InvoicePaymentRepo {
	return &InvoicePaymentRepo{baseRepo{txManager: txManager, table: invoicesTable}}
}

// CreateInvoice inserts a new invoice.
func (r *InvoicePaymentRepo) CreateInvoice(ctx context.Context, inv *invoice_payment.Invoice) error {
	q := r.builder().Insert(invoicesTable).
		Columns(invoiceColumns...).
		Values(
			inv.ID, inv.Version, inv.CreatedAt, inv.UpdatedAt, inv.CreatedBy, inv.UpdatedBy,
			inv.Number, inv.Date, inv.Comment,
			string(inv.Kind), inv.CounterpartyID, inv.SourceDocumentID,
			inv.GrandTotal, inv.PaidAmount, inv.RemainingAmount, string(inv.Status),
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetInvoice retrieves an invoice by id.
func (r *InvoicePaymentRepo) GetInvoice(ctx context.Context, invoiceID id.ID) (*invoice_payment.Invoice, error) {
	return r.getInvoice(ctx, invoiceID, "")
}

// GetInvoiceForUpdate retrieves an invoice with a row lock. Payments
// serialize on this lock so two concurrent payments never both read
// the same remaining balance.
func (r *InvoicePaymentRepo) GetInvoiceForUpdate(ctx context.Context, invoiceID id.ID) (*invoice_payment.Invoice, error) {
	return r.getInvoice(ctx, invoiceID, "FOR UPDATE")
}

func (r *InvoicePaymentRepo) getInvoice(ctx context.Context, invoiceID id.ID, suffix string) (*invoice_payment.Invoice, error) {
	q := r.builder().Select(invoiceColumns...).
		From(invoicesTable).
		Where(squirrel.Eq{"id": invoiceID})
	if suffix != "" {
		q = q.Suffix(suffix)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv invoice_payment.Invoice
	if err := pgxscan.Get(ctx, r.querier(ctx), &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// SetPaymentState persists the advanced payment position.
func (r *InvoicePaymentRepo) SetPaymentState(ctx context.Context, invoiceID id.ID, paid, remaining types.Money, status entity.PaymentStatus) error {
	q := r.builder().Update(invoicesTable).
		Set("paid_amount", paid).
		Set("remaining_amount", remaining).
		Set("status", string(status)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update payment state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}
	return nil
}

// CreatePayment inserts a payment row.
func (r *InvoicePaymentRepo) CreatePayment(ctx context.Context, p *invoice_payment.Payment) error {
	q := r.builder().Insert(paymentsTable).
		Columns(paymentColumns...).
		Values(
			p.ID, p.Version, p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy,
			p.Number, p.Date, p.Comment,
			p.InvoiceID, p.Amount, p.Method,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetPayments retrieves all payments for an invoice, oldest first.
func (r *InvoicePaymentRepo) GetPayments(ctx context.Context, invoiceID id.ID) ([]invoice_payment.Payment, error) {
	q := r.builder().Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("created_at", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []invoice_payment.Payment
	if err := pgxscan.Select(ctx, r.querier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}
	return payments, nil
}

// SetSourceDocument rewrites the invoice's source document link.
func (r *InvoicePaymentRepo) SetSourceDocument(ctx context.Context, invoiceID id.ID, sourceDocumentID *id.ID) error {
	q := r.builder().Update(invoicesTable).
		Set("source_document_id", sourceDocumentID).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update source document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}
	return nil
}

// MarkSourceInvoiced flips the invoiced flag on a goods receipt or
// waybill. The WHERE clause requires the opposite current value, so a
// double attach (or double detach) surfaces as a conflict instead of
// silently overwriting.
func (r *InvoicePaymentRepo) MarkSourceInvoiced(ctx context.Context, kind invoice_payment.InvoiceKind, sourceDocumentID id.ID, invoiced bool) error {
	table := goodsReceiptsTable
	docName := "goods receipt"
	if kind == invoice_payment.InvoiceSales {
		table = waybillsTable
		docName = "waybill"
	}

	q := r.builder().Update(table).
		Set("invoiced", invoiced).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": sourceDocumentID, "invoiced": !invoiced})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark %s invoiced: %w", docName, err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	// Nothing matched: either the document does not exist or the flag
	// already holds the requested value.
	existsSQL := "SELECT EXISTS (SELECT 1 FROM " + table + " WHERE id = $1)"
	var exists bool
	if err := r.querier(ctx).QueryRow(ctx, existsSQL, sourceDocumentID).Scan(&exists); err != nil {
		return fmt.Errorf("check %s: %w", docName, err)
	}
	if !exists {
		return apperror.NewNotFound(docName, sourceDocumentID.String())
	}
	if invoiced {
		return apperror.NewConflict(docName + " is already invoiced").
			WithDetail("source_document_id", sourceDocumentID)
	}
	return apperror.NewConflict(docName + " is not invoiced").
		WithDetail("source_document_id", sourceDocumentID)
}

// ListInvoices retrieves invoices with filtering.
func (r *InvoicePaymentRepo) ListInvoices(ctx context.Context, filter invoice_payment.ListFilter) (documents.ListResult[*invoice_payment.Invoice], error) {
	result := documents.ListResult[*invoice_payment.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(invoiceColumns...).From(invoicesTable)
	q = r.applyCommonFilter(q, filter.ListFilter)

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": string(*filter.Kind)})
	}
	if filter.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"counterparty_id": *filter.CounterpartyID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q, err = r.applyPage(q, filter.ListFilter, "kind", "counterparty_id", "status", "grand_total", "remaining_amount")
	if err != nil {
		return result, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var invoices []*invoice_payment.Invoice
	if err := pgxscan.Select(ctx, r.querier(ctx), &invoices, sql, args...); err != nil {
		return result, fmt.Errorf("select invoices: %w", err)
	}

	result.Items = invoices
	return result, nil
}

// Ensure interface compliance.
var _ invoice_payment.Repository = (*InvoicePaymentRepo)(nil)
