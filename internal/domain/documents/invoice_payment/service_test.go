package invoice_payment

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/documents"
	"kardex/pkg/numerator"
)

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type seqRow struct{ n int64 }

func (r seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.n
	}
	return nil
}

type seqQuerier struct{ n int64 }

func (q *seqQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	q.n++
	return seqRow{q.n}
}

type memoryRepo struct {
	invoices map[id.ID]*Invoice
	payments map[id.ID][]Payment

	// invoiced tracks the flag on source documents. Documents exist
	// implicitly: any id can be marked.
	invoiced map[id.ID]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		invoices: make(map[id.ID]*Invoice),
		payments: make(map[id.ID][]Payment),
		invoiced: make(map[id.ID]bool),
	}
}

func (r *memoryRepo) CreateInvoice(_ context.Context, inv *Invoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *memoryRepo) GetInvoice(_ context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", invoiceID)
	}
	return inv, nil
}

func (r *memoryRepo) GetInvoiceForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return r.GetInvoice(ctx, invoiceID)
}

func (r *memoryRepo) SetPaymentState(_ context.Context, invoiceID id.ID, paid, remaining types.Money, status entity.PaymentStatus) error {
	inv := r.invoices[invoiceID]
	inv.PaidAmount = paid
	inv.RemainingAmount = remaining
	inv.Status = status
	return nil
}

func (r *memoryRepo) CreatePayment(_ context.Context, p *Payment) error {
	r.payments[p.InvoiceID] = append(r.payments[p.InvoiceID], *p)
	return nil
}

func (r *memoryRepo) GetPayments(_ context.Context, invoiceID id.ID) ([]Payment, error) {
	return r.payments[invoiceID], nil
}

func (r *memoryRepo) SetSourceDocument(_ context.Context, invoiceID id.ID, sourceDocumentID *id.ID) error {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return apperror.NewNotFound("invoice", invoiceID)
	}
	inv.SourceDocumentID = sourceDocumentID
	return nil
}

func (r *memoryRepo) MarkSourceInvoiced(_ context.Context, _ InvoiceKind, sourceDocumentID id.ID, invoiced bool) error {
	if r.invoiced[sourceDocumentID] == invoiced {
		if invoiced {
			return apperror.NewConflict("already invoiced")
		}
		return apperror.NewConflict("not invoiced")
	}
	r.invoiced[sourceDocumentID] = invoiced
	return nil
}

func (r *memoryRepo) ListInvoices(context.Context, ListFilter) (documents.ListResult[*Invoice], error) {
	return documents.ListResult[*Invoice]{}, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, numerator.New(&seqQuerier{}), passTxManager{})
}

func TestApplyPayment_AdvancesInvoice(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	inv := NewInvoice(InvoiceSales, id.New(), types.MustMoney("100"))
	require.NoError(t, svc.CreateInvoice(ctx, inv))
	require.Equal(t, entity.PaymentUnpaid, inv.Status)

	state, err := svc.ApplyPayment(ctx, NewPayment(inv.ID, types.MustMoney("40"), "bank"))
	require.NoError(t, err)
	require.Equal(t, entity.PaymentPartiallyPaid, state.Status)
	require.True(t, state.RemainingAmount.Equal(types.MustMoney("60")))
	require.True(t, repo.invoices[inv.ID].RemainingAmount.Equal(types.MustMoney("60")))

	state, err = svc.ApplyPayment(ctx, NewPayment(inv.ID, types.MustMoney("60"), "bank"))
	require.NoError(t, err)
	require.Equal(t, entity.PaymentPaid, state.Status)
	require.True(t, state.RemainingAmount.IsZero())

	payments, err := repo.GetPayments(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
}

func TestApplyPayment_RejectsOverpayment(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	inv := NewInvoice(InvoicePurchase, id.New(), types.MustMoney("50"))
	require.NoError(t, svc.CreateInvoice(ctx, inv))

	_, err := svc.ApplyPayment(ctx, NewPayment(inv.ID, types.MustMoney("70"), "cash"))
	require.Error(t, err)

	// Nothing persisted: the invoice is still untouched.
	require.Equal(t, entity.PaymentUnpaid, repo.invoices[inv.ID].Status)
	require.Empty(t, repo.payments[inv.ID])
}

func TestApplyPayment_UnknownInvoice(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.ApplyPayment(context.Background(), NewPayment(id.New(), types.MustMoney("10"), "cash"))
	require.True(t, apperror.IsNotFound(err))
}

func TestCreateInvoice_MarksSourceInvoiced(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	receiptID := id.New()
	inv := NewInvoice(InvoicePurchase, id.New(), types.MustMoney("100"))
	inv.SourceDocumentID = &receiptID

	require.NoError(t, svc.CreateInvoice(ctx, inv))
	require.True(t, repo.invoiced[receiptID])

	// A second invoice against the same receipt conflicts.
	dup := NewInvoice(InvoicePurchase, id.New(), types.MustMoney("100"))
	dup.SourceDocumentID = &receiptID
	require.Error(t, svc.CreateInvoice(ctx, dup))
}

func TestAttachDetachSource(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	inv := NewInvoice(InvoiceSales, id.New(), types.MustMoney("200"))
	require.NoError(t, svc.CreateInvoice(ctx, inv))

	waybillID := id.New()
	got, err := svc.AttachSource(ctx, inv.ID, waybillID)
	require.NoError(t, err)
	require.NotNil(t, got.SourceDocumentID)
	require.Equal(t, waybillID, *got.SourceDocumentID)
	require.True(t, repo.invoiced[waybillID])

	// Attaching a second source conflicts.
	_, err = svc.AttachSource(ctx, inv.ID, id.New())
	require.Error(t, err)

	got, err = svc.DetachSource(ctx, inv.ID)
	require.NoError(t, err)
	require.Nil(t, got.SourceDocumentID)
	require.False(t, repo.invoiced[waybillID])

	// Detaching twice conflicts.
	_, err = svc.DetachSource(ctx, inv.ID)
	require.Error(t, err)
}

func TestCreateInvoice_RequiresPositiveTotal(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	inv := NewInvoice(InvoiceSales, id.New(), types.ZeroMoney())
	require.Error(t, svc.CreateInvoice(context.Background(), inv))
}
