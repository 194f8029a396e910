package ledger

import (
	"context"
	"fmt"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/pkg/logger"
)

// BatchTake records how much was taken from (or placed into) one batch
// by an allocator call.
type BatchTake struct {
	BatchID  id.ID          `json:"batchId"`
	Quantity types.Quantity `json:"quantity"`
	UnitCost types.Money    `json:"unitCost"`
}

// TransferResult describes both sides of a completed transfer.
type TransferResult struct {
	IssuedFrom    []BatchTake `json:"issuedFrom"`
	ReceivedBatch id.ID       `json:"receivedBatch"`
	UnitCost      types.Money `json:"unitCost"`
}

// Service is the batch allocator. It mutates the batch store and records
// a movement for every batch it touches. All operations compose inside
// the caller's transaction: a failed allocation must roll back the whole
// document that requested it.
type Service struct {
	repo Repository
}

// NewService creates a new ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Receive creates one new batch and emits one "in" movement.
func (s *Service) Receive(
	ctx context.Context,
	itemID id.ID,
	holder entity.Holder,
	quantity types.Quantity,
	unitCost types.Money,
	ref entity.Reference,
) (id.ID, error) {
	if err := validateCall(itemID, holder, ref); err != nil {
		return id.Nil(), err
	}
	if !quantity.IsPositive() {
		return id.Nil(), apperror.NewInvalidQuantity("receive quantity must be positive").
			WithDetail("quantity", quantity.String())
	}
	if unitCost.IsNegative() {
		return id.Nil(), apperror.NewValidation("unit cost must not be negative")
	}

	batch, err := s.createBatch(ctx, itemID, holder, quantity, unitCost, entity.MovementKindIn, ref)
	if err != nil {
		return id.Nil(), err
	}

	logger.Info(ctx, "received stock",
		"item_id", itemID,
		"holder", holder.String(),
		"batch_id", batch.ID,
		"quantity", quantity,
	)

	return batch.ID, nil
}

// Issue deducts quantity using oldest-batch-first allocation, emitting
// one "out" movement per batch touched. Fails with InsufficientStock if
// the holder does not hold enough; nothing is deducted in that case.
func (s *Service) Issue(
	ctx context.Context,
	itemID id.ID,
	holder entity.Holder,
	quantity types.Quantity,
	ref entity.Reference,
) ([]BatchTake, error) {
	if err := validateCall(itemID, holder, ref); err != nil {
		return nil, err
	}
	if !quantity.IsPositive() {
		return nil, apperror.NewInvalidQuantity("issue quantity must be positive").
			WithDetail("quantity", quantity.String())
	}

	takes, err := s.allocate(ctx, itemID, holder, quantity, entity.MovementKindOut, ref)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "issued stock",
		"item_id", itemID,
		"holder", holder.String(),
		"quantity", quantity,
		"batches_touched", len(takes),
	)

	return takes, nil
}

// Adjust forces system quantity to match a counted value. A negative
// delta drains batches oldest first with adjustment_decrease movements.
// A positive delta creates one new batch for the excess with an
// adjustment_increase movement; its unit cost is the caller-supplied
// cost when given, otherwise the last known batch cost for the item at
// this holder, otherwise zero. A zero delta is a pure no-op.
func (s *Service) Adjust(
	ctx context.Context,
	itemID id.ID,
	holder entity.Holder,
	signedDelta types.Quantity,
	unitCost *types.Money,
	ref entity.Reference,
) ([]BatchTake, error) {
	if err := validateCall(itemID, holder, ref); err != nil {
		return nil, err
	}

	if signedDelta.IsZero() {
		logger.Debug(ctx, "zero-delta adjustment skipped",
			"item_id", itemID,
			"holder", holder.String(),
		)
		return nil, nil
	}

	if signedDelta.IsNegative() {
		takes, err := s.allocate(ctx, itemID, holder, signedDelta.Abs(), entity.MovementKindAdjustmentDecrease, ref)
		if err != nil {
			return nil, err
		}

		logger.Info(ctx, "adjusted stock down",
			"item_id", itemID,
			"holder", holder.String(),
			"delta", signedDelta,
			"batches_touched", len(takes),
		)
		return takes, nil
	}

	cost, err := s.resolveAdjustCost(ctx, itemID, holder, unitCost)
	if err != nil {
		return nil, err
	}

	batch, err := s.createBatch(ctx, itemID, holder, signedDelta, cost, entity.MovementKindAdjustmentIncrease, ref)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "adjusted stock up",
		"item_id", itemID,
		"holder", holder.String(),
		"delta", signedDelta,
		"batch_id", batch.ID,
	)

	return []BatchTake{{BatchID: batch.ID, Quantity: signedDelta, UnitCost: cost}}, nil
}

// AdjustToResult reports what a counted-value correction did.
type AdjustToResult struct {
	// BookQuantity is the on-hand total read under the allocation lock,
	// before the correction.
	BookQuantity types.Quantity `json:"bookQuantity"`

	// Delta is counted minus book; zero means no movement was posted.
	Delta types.Quantity `json:"delta"`

	Takes []BatchTake `json:"takes,omitempty"`
}

// AdjustTo forces on-hand quantity to match a physically counted value.
// The book quantity is summed from the same locked batch rows the
// correction then mutates, so a concurrent issue cannot land between
// reading the books and posting the difference. Cost policy for surplus
// follows Adjust.
func (s *Service) AdjustTo(
	ctx context.Context,
	itemID id.ID,
	holder entity.Holder,
	counted types.Quantity,
	unitCost *types.Money,
	ref entity.Reference,
) (AdjustToResult, error) {
	if err := validateCall(itemID, holder, ref); err != nil {
		return AdjustToResult{}, err
	}
	if counted.IsNegative() {
		return AdjustToResult{}, apperror.NewInvalidQuantity("counted quantity must not be negative").
			WithDetail("quantity", counted.String())
	}

	batches, err := s.repo.ListBatchesForUpdate(ctx, itemID, holder)
	if err != nil {
		return AdjustToResult{}, fmt.Errorf("lock batches: %w", err)
	}

	var book types.Quantity
	for _, b := range batches {
		if b.Quantity.IsNegative() {
			return AdjustToResult{}, apperror.NewConsistencyViolation("batch quantity is negative").
				WithDetail("batch_id", b.ID).
				WithDetail("quantity", b.Quantity.String())
		}
		book += b.Quantity
	}

	result := AdjustToResult{BookQuantity: book, Delta: counted - book}

	if result.Delta.IsZero() {
		logger.Debug(ctx, "count matches books",
			"item_id", itemID,
			"holder", holder.String(),
			"counted", counted,
		)
		return result, nil
	}

	if result.Delta.IsNegative() {
		takes, err := s.allocateLocked(ctx, itemID, holder, batches, result.Delta.Abs(), entity.MovementKindAdjustmentDecrease, ref)
		if err != nil {
			return AdjustToResult{}, err
		}
		result.Takes = takes
	} else {
		cost, err := s.resolveAdjustCost(ctx, itemID, holder, unitCost)
		if err != nil {
			return AdjustToResult{}, err
		}
		batch, err := s.createBatch(ctx, itemID, holder, result.Delta, cost, entity.MovementKindAdjustmentIncrease, ref)
		if err != nil {
			return AdjustToResult{}, err
		}
		result.Takes = []BatchTake{{BatchID: batch.ID, Quantity: result.Delta, UnitCost: cost}}
	}

	logger.Info(ctx, "adjusted stock to count",
		"item_id", itemID,
		"holder", holder.String(),
		"book", book,
		"counted", counted,
		"delta", result.Delta,
	)

	return result, nil
}

// Transfer moves quantity between holders: an issue from the source
// followed by a receive at the destination priced at the weighted
// average cost of the issued batches. All movements carry kind
// "transfer" and the same reference; the caller's transaction makes
// both sides atomic.
func (s *Service) Transfer(
	ctx context.Context,
	itemID id.ID,
	from, to entity.Holder,
	quantity types.Quantity,
	ref entity.Reference,
) (TransferResult, error) {
	if err := validateCall(itemID, from, ref); err != nil {
		return TransferResult{}, err
	}
	if err := to.Validate(); err != nil {
		return TransferResult{}, err
	}
	if from == to {
		return TransferResult{}, apperror.NewValidation("transfer source and destination must differ").
			WithDetail("holder", from.String())
	}
	if !quantity.IsPositive() {
		return TransferResult{}, apperror.NewInvalidQuantity("transfer quantity must be positive").
			WithDetail("quantity", quantity.String())
	}

	takes, err := s.allocate(ctx, itemID, from, quantity, entity.MovementKindTransfer, ref)
	if err != nil {
		return TransferResult{}, err
	}

	avgCost := weightedAverageCost(takes, quantity)

	batch, err := s.createBatch(ctx, itemID, to, quantity, avgCost, entity.MovementKindTransfer, ref)
	if err != nil {
		return TransferResult{}, err
	}

	logger.Info(ctx, "transferred stock",
		"item_id", itemID,
		"from", from.String(),
		"to", to.String(),
		"quantity", quantity,
		"unit_cost", avgCost.String(),
	)

	return TransferResult{
		IssuedFrom:    takes,
		ReceivedBatch: batch.ID,
		UnitCost:      avgCost,
	}, nil
}

// CurrentStock returns total on-hand quantity for item+holder.
func (s *Service) CurrentStock(ctx context.Context, itemID id.ID, holder entity.Holder) (types.Quantity, error) {
	if err := holder.Validate(); err != nil {
		return 0, err
	}
	return s.repo.SumBatchQuantities(ctx, itemID, holder)
}

// ListBatches returns the cost layers for item+holder, oldest first.
func (s *Service) ListBatches(ctx context.Context, itemID id.ID, holder entity.Holder, filter BatchFilter) ([]entity.StockBatch, error) {
	if err := holder.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListBatches(ctx, itemID, holder, filter)
}

// MovementHistory returns the movement log for an item.
func (s *Service) MovementHistory(ctx context.Context, itemID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	if id.IsNil(itemID) {
		return nil, apperror.NewValidation("item id is required")
	}
	return s.repo.GetMovementHistory(ctx, itemID, filter)
}

// Turnover aggregates receipt/expense totals for a period.
func (s *Service) Turnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	if filter.ToDate.Before(filter.FromDate) {
		return Turnover{}, apperror.NewValidation("turnover period end precedes start")
	}
	return s.repo.GetTurnover(ctx, filter)
}

// allocate performs FIFO deduction of quantity over the holder's
// batches, recording one movement per batch touched. Callers guarantee
// quantity > 0. Runs entirely under the row locks taken by
// ListBatchesForUpdate, so concurrent allocators for the same
// item+holder serialize here.
func (s *Service) allocate(
	ctx context.Context,
	itemID id.ID,
	holder entity.Holder,
	quantity types.Quantity,
	kind entity.MovementKind,
	ref entity.Reference,
) ([]BatchTake, error) {
	batches, err := s.repo.ListBatchesForUpdate(ctx, itemID, holder)
	if err != nil {
		return nil, fmt.Errorf("lock batches: %w", err)
	}
	return s.allocateLocked(ctx, itemID, holder, batches, quantity, kind, ref)
}

// allocateLocked is allocate over batch rows the caller already holds
// row locks on.
func (s *Service) allocateLocked(
	ctx context.Context,
	itemID id.ID,
	holder entity.Holder,
	batches []entity.StockBatch,
	quantity types.Quantity,
	kind entity.MovementKind,
	ref entity.Reference,
) ([]BatchTake, error) {
	var available types.Quantity
	for _, b := range batches {
		if b.Quantity.IsNegative() {
			return nil, apperror.NewConsistencyViolation("batch quantity is negative").
				WithDetail("batch_id", b.ID).
				WithDetail("quantity", b.Quantity.String())
		}
		available += b.Quantity
	}

	if available < quantity {
		return nil, apperror.NewInsufficientStock(itemID.String(), quantity.Float64(), available.Float64()).
			WithDetail("holder", holder.String())
	}

	remaining := quantity
	takes := make([]BatchTake, 0, 4)
	movements := make([]entity.StockMovement, 0, 4)

	for _, b := range batches {
		if remaining.IsZero() {
			break
		}
		if b.Quantity.IsZero() {
			continue
		}

		take := remaining.Min(b.Quantity)
		after := b.Quantity - take

		if err := s.repo.SetBatchQuantity(ctx, b.ID, after); err != nil {
			return nil, fmt.Errorf("deduct batch %s: %w", b.ID, err)
		}

		m := entity.NewStockMovement(b.ID, holder, kind, b.Quantity, take, after, ref)
		if !m.Reconciles() {
			return nil, apperror.NewConsistencyViolation("movement quantities do not reconcile").
				WithDetail("batch_id", b.ID)
		}

		takes = append(takes, BatchTake{BatchID: b.ID, Quantity: take, UnitCost: b.UnitCost})
		movements = append(movements, m)
		remaining -= take
	}

	// The availability check above makes this unreachable unless a batch
	// mutated under our lock. Treat as corruption, not a retry case.
	if !remaining.IsZero() {
		return nil, apperror.NewConsistencyViolation("allocation did not satisfy requested quantity").
			WithDetail("item_id", itemID).
			WithDetail("remaining", remaining.String())
	}

	if err := s.repo.InsertMovements(ctx, itemID, movements); err != nil {
		return nil, fmt.Errorf("record movements: %w", err)
	}

	return takes, nil
}

// createBatch inserts a new batch and its paired inbound movement.
func (s *Service) createBatch(
	ctx context.Context,
	itemID id.ID,
	holder entity.Holder,
	quantity types.Quantity,
	unitCost types.Money,
	kind entity.MovementKind,
	ref entity.Reference,
) (entity.StockBatch, error) {
	batch := entity.NewStockBatch(itemID, holder, quantity, unitCost)
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return entity.StockBatch{}, fmt.Errorf("create batch: %w", err)
	}

	m := entity.NewStockMovement(batch.ID, holder, kind, 0, quantity, quantity, ref)
	if !m.Reconciles() {
		return entity.StockBatch{}, apperror.NewConsistencyViolation("movement quantities do not reconcile").
			WithDetail("batch_id", batch.ID)
	}

	if err := s.repo.InsertMovements(ctx, itemID, []entity.StockMovement{m}); err != nil {
		return entity.StockBatch{}, fmt.Errorf("record movement: %w", err)
	}

	return batch, nil
}

// resolveAdjustCost picks the unit cost for a positive adjustment:
// caller-supplied cost wins, then the last known batch cost at this
// holder, then zero for items never seen here.
func (s *Service) resolveAdjustCost(ctx context.Context, itemID id.ID, holder entity.Holder, unitCost *types.Money) (types.Money, error) {
	if unitCost != nil {
		if unitCost.IsNegative() {
			return types.ZeroMoney(), apperror.NewValidation("unit cost must not be negative")
		}
		return *unitCost, nil
	}

	cost, err := s.repo.LastUnitCost(ctx, itemID, holder)
	if err != nil {
		if apperror.IsNotFound(err) {
			return types.ZeroMoney(), nil
		}
		return types.ZeroMoney(), fmt.Errorf("resolve adjust cost: %w", err)
	}
	return cost, nil
}

// weightedAverageCost prices transferred stock by the cost layers it
// came from. total is guaranteed positive by the caller.
func weightedAverageCost(takes []BatchTake, total types.Quantity) types.Money {
	value := types.ZeroMoney()
	for _, t := range takes {
		value = value.Add(t.UnitCost.Mul(t.Quantity.Decimal()))
	}
	return value.Div(total.Decimal())
}

func validateCall(itemID id.ID, holder entity.Holder, ref entity.Reference) error {
	if id.IsNil(itemID) {
		return apperror.NewValidation("item id is required")
	}
	if err := holder.Validate(); err != nil {
		return err
	}
	return ref.Validate()
}
