// Package ledger provides the batch stock ledger: batches as cost
// layers, FIFO allocation, and an append-only movement log.
package ledger

import (
	"context"
	"time"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// Repository defines storage operations for batches and movements.
// All mutating methods run inside the caller's transaction; the ledger
// never opens one itself.
type Repository interface {
	// Batch operations

	// CreateBatch inserts a new batch row.
	CreateBatch(ctx context.Context, batch entity.StockBatch) error

	// GetBatch retrieves a single batch by id.
	GetBatch(ctx context.Context, batchID id.ID) (entity.StockBatch, error)

	// ListBatches returns batches for item+holder ordered oldest first.
	ListBatches(ctx context.Context, itemID id.ID, holder entity.Holder, filter BatchFilter) ([]entity.StockBatch, error)

	// ListBatchesForUpdate returns all batches for item+holder ordered
	// by (created_at, id) with a row lock (SELECT ... FOR UPDATE).
	// The allocator must hold these locks before computing FIFO takes,
	// otherwise two concurrent issues can over-allocate the same stock.
	ListBatchesForUpdate(ctx context.Context, itemID id.ID, holder entity.Holder) ([]entity.StockBatch, error)

	// SetBatchQuantity updates the remaining quantity of a batch.
	// Batches are never deleted: a drained batch stays at zero.
	SetBatchQuantity(ctx context.Context, batchID id.ID, quantity types.Quantity) error

	// SumBatchQuantities returns total on-hand quantity for item+holder.
	SumBatchQuantities(ctx context.Context, itemID id.ID, holder entity.Holder) (types.Quantity, error)

	// LastUnitCost returns the unit cost of the most recently created
	// batch for item+holder. Returns apperror CodeNotFound when the
	// item has never had a batch at this holder.
	LastUnitCost(ctx context.Context, itemID id.ID, holder entity.Holder) (types.Money, error)

	// Movement operations

	// InsertMovements appends movement rows. Movements are immutable:
	// there is no update or delete path.
	InsertMovements(ctx context.Context, itemID id.ID, movements []entity.StockMovement) error

	// GetMovementHistory returns the movement log for an item.
	GetMovementHistory(ctx context.Context, itemID id.ID, filter MovementFilter) ([]entity.StockMovement, error)

	// GetTurnover aggregates receipt and expense totals for a period.
	GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)
}

// BatchFilter for batch listing queries.
type BatchFilter struct {
	ExcludeEmpty bool
	Limit        int
	Offset       int
}

// MovementFilter for movement history queries.
type MovementFilter struct {
	Holder   *entity.Holder
	Kind     *entity.MovementKind
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// TurnoverFilter for turnover reports.
type TurnoverFilter struct {
	ItemID   *id.ID
	Holder   *entity.Holder
	FromDate time.Time
	ToDate   time.Time
}

// Turnover represents receipt/expense totals for a period.
type Turnover struct {
	ItemID         id.ID          `json:"itemId,omitempty"`
	OpeningBalance types.Quantity `json:"openingBalance"`
	Receipt        types.Quantity `json:"receipt"`
	Expense        types.Quantity `json:"expense"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}
