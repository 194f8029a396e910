package stock_audit

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
	"kardex/internal/domain/ledger"
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
	docs  map[id.ID]*StockAudit
	lines map[id.ID][]StockAuditLine
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		docs:  make(map[id.ID]*StockAudit),
		lines: make(map[id.ID][]StockAuditLine),
	}
}

func (r *memoryRepo) Create(_ context.Context, doc *StockAudit) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, docID id.ID) (*StockAudit, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("stock audit", docID)
	}
	return doc, nil
}

func (r *memoryRepo) GetLines(_ context.Context, docID id.ID) ([]StockAuditLine, error) {
	return r.lines[docID], nil
}

func (r *memoryRepo) SaveLines(_ context.Context, docID id.ID, lines []StockAuditLine) error {
	r.lines[docID] = lines
	return nil
}

func (r *memoryRepo) List(context.Context, ListFilter) (documents.ListResult[*StockAudit], error) {
	return documents.ListResult[*StockAudit]{}, nil
}

type adjustCall struct {
	itemID id.ID
	delta  types.Quantity
	ref    entity.Reference
}

// fakeLedger holds per-item book quantities. Each AdjustTo reads the
// books and applies the correction in one step, the way the real
// allocator does under its lock.
type fakeLedger struct {
	stock   map[id.ID]types.Quantity
	adjusts []adjustCall
}

func (l *fakeLedger) AdjustTo(_ context.Context, itemID id.ID, _ entity.Holder, counted types.Quantity, _ *types.Money, ref entity.Reference) (ledger.AdjustToResult, error) {
	book := l.stock[itemID]
	result := ledger.AdjustToResult{BookQuantity: book, Delta: counted - book}
	if result.Delta.IsZero() {
		return result, nil
	}
	l.stock[itemID] = counted
	l.adjusts = append(l.adjusts, adjustCall{itemID, result.Delta, ref})
	result.Takes = []ledger.BatchTake{{BatchID: id.New(), Quantity: result.Delta.Abs()}}
	return result, nil
}

func qty(v int64) types.Quantity { return types.NewQuantityFromInt(v) }

func TestCreate_PostsCountedDifferences(t *testing.T) {
	shortItem := id.New()
	surplusItem := id.New()
	exactItem := id.New()

	stockLedger := &fakeLedger{stock: map[id.ID]types.Quantity{
		shortItem:   qty(20),
		surplusItem: qty(20),
		exactItem:   qty(8),
	}}
	repo := newMemoryRepo()
	svc := NewService(repo, stockLedger, numerator.New(&seqQuerier{}), passTxManager{})
	ctx := context.Background()

	doc := NewStockAudit(entity.WarehouseHolder(id.New()))
	doc.AddLine(shortItem, qty(15), nil)   // counted 15, book 20 -> -5
	doc.AddLine(surplusItem, qty(28), nil) // counted 28, book 20 -> +8
	doc.AddLine(exactItem, qty(8), nil)    // no difference

	require.NoError(t, svc.Create(ctx, doc))

	// Book quantities snapshotted onto the lines.
	saved := repo.lines[doc.ID]
	require.Equal(t, qty(20), saved[0].BookQuantity)
	require.Equal(t, qty(-5), saved[0].SignedDelta())
	require.Equal(t, qty(8), saved[1].SignedDelta())
	require.Equal(t, types.Quantity(0), saved[2].SignedDelta())

	// Two corrections posted, matching lines carry the audit reference.
	require.Len(t, stockLedger.adjusts, 2)
	require.Equal(t, qty(-5), stockLedger.adjusts[0].delta)
	require.Equal(t, entity.ReferenceAuditLine, stockLedger.adjusts[0].ref.Type)
	require.Equal(t, saved[0].LineID, stockLedger.adjusts[0].ref.ID)
	require.Equal(t, qty(8), stockLedger.adjusts[1].delta)

	// Ledger ends at the counted values.
	require.Equal(t, qty(15), stockLedger.stock[shortItem])
	require.Equal(t, qty(28), stockLedger.stock[surplusItem])
	require.Equal(t, qty(8), stockLedger.stock[exactItem])
}

func TestCreate_RejectsNegativeCountAndDuplicates(t *testing.T) {
	svc := NewService(newMemoryRepo(), &fakeLedger{stock: map[id.ID]types.Quantity{}}, numerator.New(&seqQuerier{}), passTxManager{})
	ctx := context.Background()
	holder := entity.BranchHolder(id.New())

	doc := NewStockAudit(holder)
	doc.AddLine(id.New(), qty(-1), nil)
	require.Error(t, svc.Create(ctx, doc))

	itemID := id.New()
	doc = NewStockAudit(holder)
	doc.AddLine(itemID, qty(1), nil)
	doc.AddLine(itemID, qty(2), nil)
	require.Error(t, svc.Create(ctx, doc))
}
