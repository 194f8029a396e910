package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// memoryRepo is an in-memory Repository for service tests. Batches are
// kept in insertion order, which matches the created_at,id ordering the
// real store uses.
type memoryRepo struct {
	batches   []entity.StockBatch
	movements []entity.StockMovement

	failSetQuantity bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{}
}

func (r *memoryRepo) CreateBatch(_ context.Context, batch entity.StockBatch) error {
	r.batches = append(r.batches, batch)
	return nil
}

func (r *memoryRepo) GetBatch(_ context.Context, batchID id.ID) (entity.StockBatch, error) {
	for _, b := range r.batches {
		if b.ID == batchID {
			return b, nil
		}
	}
	return entity.StockBatch{}, apperror.NewNotFound("stock batch", batchID)
}

func (r *memoryRepo) matching(itemID id.ID, holder entity.Holder) []entity.StockBatch {
	var out []entity.StockBatch
	for _, b := range r.batches {
		if b.ItemID == itemID && b.Holder == holder {
			out = append(out, b)
		}
	}
	return out
}

func (r *memoryRepo) ListBatches(_ context.Context, itemID id.ID, holder entity.Holder, filter BatchFilter) ([]entity.StockBatch, error) {
	out := r.matching(itemID, holder)
	if filter.ExcludeEmpty {
		filtered := out[:0]
		for _, b := range out {
			if !b.Quantity.IsZero() {
				filtered = append(filtered, b)
			}
		}
		out = filtered
	}
	return out, nil
}

func (r *memoryRepo) ListBatchesForUpdate(_ context.Context, itemID id.ID, holder entity.Holder) ([]entity.StockBatch, error) {
	return r.matching(itemID, holder), nil
}

func (r *memoryRepo) SetBatchQuantity(_ context.Context, batchID id.ID, quantity types.Quantity) error {
	if r.failSetQuantity {
		return apperror.NewInternal(nil)
	}
	for i := range r.batches {
		if r.batches[i].ID == batchID {
			r.batches[i].Quantity = quantity
			return nil
		}
	}
	return apperror.NewNotFound("stock batch", batchID)
}

func (r *memoryRepo) SumBatchQuantities(_ context.Context, itemID id.ID, holder entity.Holder) (types.Quantity, error) {
	var total types.Quantity
	for _, b := range r.matching(itemID, holder) {
		total += b.Quantity
	}
	return total, nil
}

func (r *memoryRepo) LastUnitCost(_ context.Context, itemID id.ID, holder entity.Holder) (types.Money, error) {
	batches := r.matching(itemID, holder)
	if len(batches) == 0 {
		return types.ZeroMoney(), apperror.NewNotFound("stock batch", itemID)
	}
	return batches[len(batches)-1].UnitCost, nil
}

func (r *memoryRepo) InsertMovements(_ context.Context, _ id.ID, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memoryRepo) GetMovementHistory(_ context.Context, itemID id.ID, _ MovementFilter) ([]entity.StockMovement, error) {
	batchIDs := make(map[id.ID]bool)
	for _, b := range r.batches {
		if b.ItemID == itemID {
			batchIDs[b.ID] = true
		}
	}
	var out []entity.StockMovement
	for _, m := range r.movements {
		if batchIDs[m.BatchID] {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) GetTurnover(_ context.Context, _ TurnoverFilter) (Turnover, error) {
	return Turnover{}, nil
}

func testRef(t entity.ReferenceType) entity.Reference {
	return entity.Reference{Type: t, ID: id.New()}
}

func qty(v int64) types.Quantity { return types.NewQuantityFromInt(v) }

func TestReceive_CreatesBatchAndMovement(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())

	batchID, err := svc.Receive(ctx, itemID, holder, qty(10), types.MustMoney("12.50"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)
	require.False(t, id.IsNil(batchID))

	require.Len(t, repo.batches, 1)
	require.Equal(t, qty(10), repo.batches[0].Quantity)
	require.True(t, repo.batches[0].UnitCost.Equal(types.MustMoney("12.50")))

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	require.Equal(t, entity.MovementKindIn, m.Kind)
	require.Equal(t, types.Quantity(0), m.PreviousQuantity)
	require.Equal(t, qty(10), m.AfterQuantity)
	require.True(t, m.Reconciles())
}

func TestReceive_RejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	for _, q := range []types.Quantity{qty(0), qty(-3)} {
		_, err := svc.Receive(ctx, id.New(), entity.BranchHolder(id.New()), q, types.MustMoney("1"), testRef(entity.ReferenceGoodsReceiptLine))
		require.True(t, apperror.IsInvalidQuantity(err), "quantity %s must be rejected", q)
	}
}

func TestIssue_FIFOSplitsAcrossBatches(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())
	ref := testRef(entity.ReferenceGoodsReceiptLine)

	b1, err := svc.Receive(ctx, itemID, holder, qty(5), types.MustMoney("10"), ref)
	require.NoError(t, err)
	b2, err := svc.Receive(ctx, itemID, holder, qty(5), types.MustMoney("20"), ref)
	require.NoError(t, err)

	takes, err := svc.Issue(ctx, itemID, holder, qty(7), testRef(entity.ReferenceWaybillLine))
	require.NoError(t, err)

	require.Len(t, takes, 2)
	require.Equal(t, b1, takes[0].BatchID)
	require.Equal(t, qty(5), takes[0].Quantity)
	require.Equal(t, b2, takes[1].BatchID)
	require.Equal(t, qty(2), takes[1].Quantity)

	require.Equal(t, types.Quantity(0), repo.batches[0].Quantity)
	require.Equal(t, qty(3), repo.batches[1].Quantity)

	// 2 receive movements + 2 issue movements
	require.Len(t, repo.movements, 4)
	out1, out2 := repo.movements[2], repo.movements[3]
	require.Equal(t, entity.MovementKindOut, out1.Kind)
	require.Equal(t, types.Quantity(0), out1.AfterQuantity)
	require.Equal(t, qty(3), out2.AfterQuantity)
	require.True(t, out1.Reconciles())
	require.True(t, out2.Reconciles())
}

func TestIssue_DrainedBatchStaysAsCostLayer(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.BranchHolder(id.New())

	_, err := svc.Receive(ctx, itemID, holder, qty(4), types.MustMoney("9"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)

	_, err = svc.Issue(ctx, itemID, holder, qty(4), testRef(entity.ReferenceWaybillLine))
	require.NoError(t, err)

	// Drained, not deleted.
	require.Len(t, repo.batches, 1)
	require.Equal(t, types.Quantity(0), repo.batches[0].Quantity)

	// A later issue skips the empty layer.
	b2, err := svc.Receive(ctx, itemID, holder, qty(2), types.MustMoney("11"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)
	takes, err := svc.Issue(ctx, itemID, holder, qty(1), testRef(entity.ReferenceWaybillLine))
	require.NoError(t, err)
	require.Len(t, takes, 1)
	require.Equal(t, b2, takes[0].BatchID)
}

func TestIssue_InsufficientStockLeavesStateUntouched(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())

	_, err := svc.Receive(ctx, itemID, holder, qty(5), types.MustMoney("10"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)
	_, err = svc.Receive(ctx, itemID, holder, qty(2), types.MustMoney("20"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)

	movementsBefore := len(repo.movements)

	_, err = svc.Issue(ctx, itemID, holder, qty(8), testRef(entity.ReferenceWaybillLine))
	require.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, itemID.String(), appErr.Details["item_id"])
	require.Equal(t, 8.0, appErr.Details["requested"])
	require.Equal(t, 7.0, appErr.Details["available"])

	// Availability is checked before any deduction, so nothing changed.
	require.Equal(t, qty(5), repo.batches[0].Quantity)
	require.Equal(t, qty(2), repo.batches[1].Quantity)
	require.Len(t, repo.movements, movementsBefore)
}

func TestAdjust_NegativeDrainsOldestFirst(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())

	_, err := svc.Receive(ctx, itemID, holder, qty(12), types.MustMoney("5"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)
	_, err = svc.Receive(ctx, itemID, holder, qty(8), types.MustMoney("6"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)

	// stock=20, counted=15
	takes, err := svc.Adjust(ctx, itemID, holder, qty(-5), nil, testRef(entity.ReferenceAuditLine))
	require.NoError(t, err)
	require.Len(t, takes, 1)
	require.Equal(t, qty(5), takes[0].Quantity)

	stock, err := svc.CurrentStock(ctx, itemID, holder)
	require.NoError(t, err)
	require.Equal(t, qty(15), stock)

	last := repo.movements[len(repo.movements)-1]
	require.Equal(t, entity.MovementKindAdjustmentDecrease, last.Kind)
	require.Equal(t, qty(7), last.AfterQuantity)
}

func TestAdjust_PositiveCreatesOneBatch(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())

	_, err := svc.Receive(ctx, itemID, holder, qty(20), types.MustMoney("5"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)

	// stock=20, counted=28; no caller cost, so last batch cost applies
	takes, err := svc.Adjust(ctx, itemID, holder, qty(8), nil, testRef(entity.ReferenceAuditLine))
	require.NoError(t, err)
	require.Len(t, takes, 1)
	require.Equal(t, qty(8), takes[0].Quantity)
	require.True(t, takes[0].UnitCost.Equal(types.MustMoney("5")))

	stock, err := svc.CurrentStock(ctx, itemID, holder)
	require.NoError(t, err)
	require.Equal(t, qty(28), stock)

	require.Len(t, repo.batches, 2)
	last := repo.movements[len(repo.movements)-1]
	require.Equal(t, entity.MovementKindAdjustmentIncrease, last.Kind)
	require.Equal(t, qty(8), last.AfterQuantity)
}

func TestAdjust_PositiveCostPolicy(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.BranchHolder(id.New())

	// Item never seen at this holder: zero cost.
	takes, err := svc.Adjust(ctx, itemID, holder, qty(3), nil, testRef(entity.ReferenceAdjustmentLine))
	require.NoError(t, err)
	require.True(t, takes[0].UnitCost.IsZero())

	// Caller-supplied cost wins over last batch cost.
	cost := types.MustMoney("7.25")
	takes, err = svc.Adjust(ctx, itemID, holder, qty(2), &cost, testRef(entity.ReferenceAdjustmentLine))
	require.NoError(t, err)
	require.True(t, takes[0].UnitCost.Equal(cost))
}

func TestAdjust_ZeroDeltaIsNoOp(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())

	_, err := svc.Receive(ctx, itemID, holder, qty(5), types.MustMoney("3"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)
	before := len(repo.movements)

	takes, err := svc.Adjust(ctx, itemID, holder, qty(0), nil, testRef(entity.ReferenceAuditLine))
	require.NoError(t, err)
	require.Empty(t, takes)
	require.Len(t, repo.movements, before)
	require.Len(t, repo.batches, 1)
}

func TestAdjustTo_DrainsDownToCount(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())

	_, err := svc.Receive(ctx, itemID, holder, qty(12), types.MustMoney("5"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)
	_, err = svc.Receive(ctx, itemID, holder, qty(8), types.MustMoney("6"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)

	result, err := svc.AdjustTo(ctx, itemID, holder, qty(15), nil, testRef(entity.ReferenceAuditLine))
	require.NoError(t, err)
	require.Equal(t, qty(20), result.BookQuantity)
	require.Equal(t, qty(-5), result.Delta)

	// Oldest batch drains first.
	require.Equal(t, qty(7), repo.batches[0].Quantity)
	require.Equal(t, qty(8), repo.batches[1].Quantity)

	stock, err := svc.CurrentStock(ctx, itemID, holder)
	require.NoError(t, err)
	require.Equal(t, qty(15), stock)

	last := repo.movements[len(repo.movements)-1]
	require.Equal(t, entity.MovementKindAdjustmentDecrease, last.Kind)
	require.True(t, last.Reconciles())
}

func TestAdjustTo_SurplusCreatesOneBatch(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.BranchHolder(id.New())

	_, err := svc.Receive(ctx, itemID, holder, qty(20), types.MustMoney("5"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)

	result, err := svc.AdjustTo(ctx, itemID, holder, qty(28), nil, testRef(entity.ReferenceAuditLine))
	require.NoError(t, err)
	require.Equal(t, qty(20), result.BookQuantity)
	require.Equal(t, qty(8), result.Delta)
	require.Len(t, result.Takes, 1)
	require.True(t, result.Takes[0].UnitCost.Equal(types.MustMoney("5")))

	require.Len(t, repo.batches, 2)
	last := repo.movements[len(repo.movements)-1]
	require.Equal(t, entity.MovementKindAdjustmentIncrease, last.Kind)
}

func TestAdjustTo_ExactCountIsNoOp(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())

	_, err := svc.Receive(ctx, itemID, holder, qty(5), types.MustMoney("3"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)
	before := len(repo.movements)

	result, err := svc.AdjustTo(ctx, itemID, holder, qty(5), nil, testRef(entity.ReferenceAuditLine))
	require.NoError(t, err)
	require.Equal(t, qty(5), result.BookQuantity)
	require.True(t, result.Delta.IsZero())
	require.Empty(t, result.Takes)
	require.Len(t, repo.movements, before)
}

func TestAdjustTo_RejectsNegativeCount(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.AdjustTo(context.Background(), id.New(), entity.BranchHolder(id.New()), qty(-1), nil, testRef(entity.ReferenceAuditLine))
	require.True(t, apperror.IsInvalidQuantity(err))
}

// lockedReadsRepo fails any stock read that bypasses the row locks,
// proving the counted-value path never reads the books unlocked.
type lockedReadsRepo struct{ *memoryRepo }

func (r lockedReadsRepo) SumBatchQuantities(context.Context, id.ID, entity.Holder) (types.Quantity, error) {
	return 0, apperror.NewConsistencyViolation("unlocked stock read during counted adjustment")
}

func TestAdjustTo_ReadsBooksUnderLock(t *testing.T) {
	inner := newMemoryRepo()
	svc := NewService(lockedReadsRepo{inner})
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())

	_, err := svc.Receive(ctx, itemID, holder, qty(20), types.MustMoney("5"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)

	result, err := svc.AdjustTo(ctx, itemID, holder, qty(15), nil, testRef(entity.ReferenceAuditLine))
	require.NoError(t, err)
	require.Equal(t, qty(20), result.BookQuantity)
	require.Equal(t, qty(-5), result.Delta)
}

func TestTransfer_WeightedAverageCost(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	from := entity.WarehouseHolder(id.New())
	to := entity.BranchHolder(id.New())

	_, err := svc.Receive(ctx, itemID, from, qty(5), types.MustMoney("10"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)
	_, err = svc.Receive(ctx, itemID, from, qty(5), types.MustMoney("20"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)

	res, err := svc.Transfer(ctx, itemID, from, to, qty(7), testRef(entity.ReferenceTransferLine))
	require.NoError(t, err)

	// (5*10 + 2*20) / 7 = 90/7
	want := types.MustMoney("90").Div(types.MustMoney("7"))
	require.True(t, res.UnitCost.Equal(want), "got %s want %s", res.UnitCost, want)

	dst, err := repo.GetBatch(ctx, res.ReceivedBatch)
	require.NoError(t, err)
	require.Equal(t, qty(7), dst.Quantity)
	require.Equal(t, to, dst.Holder)

	for _, m := range repo.movements[2:] {
		require.Equal(t, entity.MovementKindTransfer, m.Kind)
	}
}

func TestTransfer_RoundTripRestoresStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	a := entity.WarehouseHolder(id.New())
	b := entity.WarehouseHolder(id.New())

	_, err := svc.Receive(ctx, itemID, a, qty(10), types.MustMoney("10"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)

	stockA0, _ := svc.CurrentStock(ctx, itemID, a)
	stockB0, _ := svc.CurrentStock(ctx, itemID, b)
	before := len(repo.movements)

	_, err = svc.Transfer(ctx, itemID, a, b, qty(4), testRef(entity.ReferenceTransferLine))
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, itemID, b, a, qty(4), testRef(entity.ReferenceTransferLine))
	require.NoError(t, err)

	stockA, err := svc.CurrentStock(ctx, itemID, a)
	require.NoError(t, err)
	stockB, err := svc.CurrentStock(ctx, itemID, b)
	require.NoError(t, err)

	require.Equal(t, stockA0, stockA)
	require.Equal(t, stockB0, stockB)
	require.Len(t, repo.movements, before+4)
}

func TestTransfer_SameHolderRejected(t *testing.T) {
	svc := NewService(newMemoryRepo())
	holder := entity.WarehouseHolder(id.New())

	_, err := svc.Transfer(context.Background(), id.New(), holder, holder, qty(1), testRef(entity.ReferenceTransferLine))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestReplay_MovementSumsMatchBatchSums(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())
	other := entity.BranchHolder(id.New())

	steps := []func() error{
		func() error {
			_, err := svc.Receive(ctx, itemID, holder, qty(5), types.MustMoney("10"), testRef(entity.ReferenceGoodsReceiptLine))
			return err
		},
		func() error {
			_, err := svc.Receive(ctx, itemID, holder, qty(3), types.MustMoney("12"), testRef(entity.ReferenceGoodsReceiptLine))
			return err
		},
		func() error {
			_, err := svc.Issue(ctx, itemID, holder, qty(6), testRef(entity.ReferenceWaybillLine))
			return err
		},
		func() error {
			_, err := svc.Adjust(ctx, itemID, holder, qty(4), nil, testRef(entity.ReferenceAuditLine))
			return err
		},
		func() error {
			_, err := svc.Transfer(ctx, itemID, holder, other, qty(2), testRef(entity.ReferenceTransferLine))
			return err
		},
		func() error {
			_, err := svc.Adjust(ctx, itemID, holder, qty(-1), nil, testRef(entity.ReferenceAdjustmentLine))
			return err
		},
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)

		// After every step: batch sum equals signed movement sum and
		// never goes negative, per holder.
		for _, h := range []entity.Holder{holder, other} {
			stock, err := svc.CurrentStock(ctx, itemID, h)
			require.NoError(t, err)
			require.GreaterOrEqual(t, stock.Int64Scaled(), int64(0))

			var signed types.Quantity
			for _, m := range repo.movements {
				if m.Holder == h {
					signed += m.SignedQuantity()
				}
			}
			require.Equal(t, signed, stock, "step %d holder %s", i, h)
		}
	}
}

func TestMovementHistory_OrderedByTime(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	itemID := id.New()
	holder := entity.WarehouseHolder(id.New())

	_, err := svc.Receive(ctx, itemID, holder, qty(5), types.MustMoney("1"), testRef(entity.ReferenceGoodsReceiptLine))
	require.NoError(t, err)
	_, err = svc.Issue(ctx, itemID, holder, qty(2), testRef(entity.ReferenceWaybillLine))
	require.NoError(t, err)

	history, err := svc.MovementHistory(ctx, itemID, MovementFilter{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	for i := 1; i < len(history); i++ {
		require.False(t, history[i].CreatedAt.Before(history[i-1].CreatedAt))
	}
}

func TestTurnover_RejectsInvertedPeriod(t *testing.T) {
	svc := NewService(newMemoryRepo())
	now := time.Now()

	_, err := svc.Turnover(context.Background(), TurnoverFilter{
		FromDate: now,
		ToDate:   now.Add(-time.Hour),
	})
	require.Error(t, err)
}
