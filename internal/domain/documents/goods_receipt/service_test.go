package goods_receipt

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

// passTxManager runs the function directly; rollback is simulated by
// the test checking that nothing was recorded after an error.
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

func testNumerator() *numerator.Service {
	return numerator.New(&seqQuerier{})
}

type memoryRepo struct {
	docs  map[id.ID]*GoodsReceipt
	lines map[id.ID][]GoodsReceiptLine
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		docs:  make(map[id.ID]*GoodsReceipt),
		lines: make(map[id.ID][]GoodsReceiptLine),
	}
}

func (r *memoryRepo) Create(_ context.Context, doc *GoodsReceipt) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, docID id.ID) (*GoodsReceipt, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("goods receipt", docID)
	}
	return doc, nil
}

func (r *memoryRepo) GetByNumber(_ context.Context, number string) (*GoodsReceipt, error) {
	for _, doc := range r.docs {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("goods receipt", number)
}

func (r *memoryRepo) GetLines(_ context.Context, docID id.ID) ([]GoodsReceiptLine, error) {
	return r.lines[docID], nil
}

func (r *memoryRepo) SaveLines(_ context.Context, docID id.ID, lines []GoodsReceiptLine) error {
	r.lines[docID] = lines
	return nil
}

func (r *memoryRepo) List(context.Context, ListFilter) (documents.ListResult[*GoodsReceipt], error) {
	return documents.ListResult[*GoodsReceipt]{}, nil
}

type receiveCall struct {
	itemID   id.ID
	holder   entity.Holder
	quantity types.Quantity
	unitCost types.Money
	ref      entity.Reference
}

type fakeLedger struct {
	calls []receiveCall
	err   error
}

func (l *fakeLedger) Receive(_ context.Context, itemID id.ID, holder entity.Holder, quantity types.Quantity, unitCost types.Money, ref entity.Reference) (id.ID, error) {
	if l.err != nil {
		return id.Nil(), l.err
	}
	l.calls = append(l.calls, receiveCall{itemID, holder, quantity, unitCost, ref})
	return id.New(), nil
}

type fakeResolver struct {
	recomputed []id.ID
}

func (r *fakeResolver) RecomputePurchaseOrder(_ context.Context, orderID id.ID) (entity.PurchaseOrderStatus, error) {
	r.recomputed = append(r.recomputed, orderID)
	return entity.PurchaseOrderPartiallyReceived, nil
}

func qty(v int64) types.Quantity { return types.NewQuantityFromInt(v) }

func TestCreate_ReceivesEveryLineAndRecomputesOrders(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &fakeLedger{}
	resolver := &fakeResolver{}
	svc := NewService(repo, ledger, resolver, testNumerator(), passTxManager{})
	ctx := context.Background()

	holder := entity.WarehouseHolder(id.New())
	doc := NewGoodsReceipt(id.New(), holder)
	orderID := id.New()
	orderLineID := id.New()

	line := doc.AddLine(id.New(), qty(10), types.MustMoney("4"))
	line.PurchaseOrderID = &orderID
	line.PurchaseOrderLineID = &orderLineID
	doc.AddLine(id.New(), qty(3), types.MustMoney("2.50"))

	require.NoError(t, svc.Create(ctx, doc))

	require.NotEmpty(t, doc.Number)
	require.Contains(t, doc.Number, "GR-")
	require.Len(t, repo.docs, 1)
	require.Len(t, repo.lines[doc.ID], 2)

	require.Len(t, ledger.calls, 2)
	require.Equal(t, doc.Lines[0].LineID, ledger.calls[0].ref.ID)
	require.Equal(t, entity.ReferenceGoodsReceiptLine, ledger.calls[0].ref.Type)
	require.Equal(t, holder, ledger.calls[0].holder)
	require.Equal(t, qty(10), ledger.calls[0].quantity)

	require.Equal(t, []id.ID{orderID}, resolver.recomputed)
}

func TestCreate_LedgerFailureAbortsDocument(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &fakeLedger{err: apperror.NewInsufficientStock("x", 1, 0)}
	svc := NewService(repo, ledger, &fakeResolver{}, testNumerator(), passTxManager{})

	doc := NewGoodsReceipt(id.New(), entity.WarehouseHolder(id.New()))
	doc.AddLine(id.New(), qty(1), types.MustMoney("1"))

	err := svc.Create(context.Background(), doc)
	require.Error(t, err)
	require.True(t, apperror.IsInsufficientStock(err))
}

func TestCreate_ValidationBeforeNumbering(t *testing.T) {
	svc := NewService(newMemoryRepo(), &fakeLedger{}, &fakeResolver{}, testNumerator(), passTxManager{})

	doc := NewGoodsReceipt(id.New(), entity.WarehouseHolder(id.New()))
	// No lines: must fail before a number is consumed.
	err := svc.Create(context.Background(), doc)
	require.Error(t, err)
	require.Empty(t, doc.Number)
}

func TestCreate_KeepsExplicitNumber(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, &fakeLedger{}, &fakeResolver{}, testNumerator(), passTxManager{})

	doc := NewGoodsReceipt(id.New(), entity.BranchHolder(id.New()))
	doc.Number = "GR-2026-99999"
	doc.AddLine(id.New(), qty(1), types.MustMoney("1"))

	require.NoError(t, svc.Create(context.Background(), doc))
	require.Equal(t, "GR-2026-99999", doc.Number)
}
