// Package ledger_repo provides the PostgreSQL implementation of the
// stock ledger repository.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/ledger"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	batchesTable   = "stock_batches"
	movementsTable = "stock_movements"
)

// batchRow is the storage shape of a batch: the holder is flattened
// into two columns and the quantity is a scaled BIGINT.
type batchRow struct {
	ID         id.ID     `db:"id"`
	ItemID     id.ID     `db:"item_id"`
	HolderType string    `db:"holder_type"`
	HolderID   id.ID     `db:"holder_id"`
	Quantity   int64     `db:"quantity"`
	UnitCost   string    `db:"unit_cost"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r batchRow) toEntity() (entity.StockBatch, error) {
	cost, err := types.NewMoneyFromString(r.UnitCost)
	if err != nil {
		return entity.StockBatch{}, fmt.Errorf("parse unit cost %q: %w", r.UnitCost, err)
	}
	return entity.StockBatch{
		ID:        r.ID,
		ItemID:    r.ItemID,
		Holder:    entity.Holder{Type: entity.HolderType(r.HolderType), ID: r.HolderID},
		Quantity:  types.NewQuantityFromInt64Scaled(r.Quantity),
		UnitCost:  cost,
		CreatedAt: r.CreatedAt,
	}, nil
}

// movementRow is the storage shape of a movement: holder and reference
// flattened, item_id denormalized so the per-item history query needs
// no join through batches.
type movementRow struct {
	ID               id.ID     `db:"id"`
	ItemID           id.ID     `db:"item_id"`
	BatchID          id.ID     `db:"batch_id"`
	HolderType       string    `db:"holder_type"`
	HolderID         id.ID     `db:"holder_id"`
	Kind             string    `db:"kind"`
	PreviousQuantity int64     `db:"previous_quantity"`
	MovementQuantity int64     `db:"movement_quantity"`
	AfterQuantity    int64     `db:"after_quantity"`
	ReferenceType    string    `db:"reference_type"`
	ReferenceID      id.ID     `db:"reference_id"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r movementRow) toEntity() entity.StockMovement {
	return entity.StockMovement{
		ID:               r.ID,
		BatchID:          r.BatchID,
		Holder:           entity.Holder{Type: entity.HolderType(r.HolderType), ID: r.HolderID},
		Kind:             entity.MovementKind(r.Kind),
		PreviousQuantity: types.NewQuantityFromInt64Scaled(r.PreviousQuantity),
		MovementQuantity: types.NewQuantityFromInt64Scaled(r.MovementQuantity),
		AfterQuantity:    types.NewQuantityFromInt64Scaled(r.AfterQuantity),
		Reference: entity.Reference{
			Type: entity.ReferenceType(r.ReferenceType),
			ID:   r.ReferenceID,
		},
		CreatedAt: r.CreatedAt,
	}
}

var batchColumns = []string{
	"id", "item_id", "holder_type", "holder_id",
	"quantity", "unit_cost", "created_at",
}

var movementColumns = []string{
	"id", "item_id", "batch_id", "holder_type", "holder_id",
	"kind", "previous_quantity", "movement_quantity", "after_quantity",
	"reference_type", "reference_id", "created_at",
}

// StockRepo implements ledger.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateBatch inserts a new batch row.
func (r *StockRepo) CreateBatch(ctx context.Context, batch entity.StockBatch) error {
	q := r.builder.Insert(batchesTable).
		Columns(batchColumns...).
		Values(
			batch.ID, batch.ItemID, string(batch.Holder.Type), batch.Holder.ID,
			batch.Quantity.Int64Scaled(), batch.UnitCost.String(), batch.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetBatch retrieves a single batch by id.
func (r *StockRepo) GetBatch(ctx context.Context, batchID id.ID) (entity.StockBatch, error) {
	q := r.builder.Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{"id": batchID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return entity.StockBatch{}, fmt.Errorf("build query: %w", err)
	}

	var row batchRow
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.StockBatch{}, apperror.NewNotFound("stock batch", batchID.String())
		}
		return entity.StockBatch{}, fmt.Errorf("get batch: %w", err)
	}
	return row.toEntity()
}

// ListBatches returns batches for item+holder ordered oldest first.
func (r *StockRepo) ListBatches(ctx context.Context, itemID id.ID, holder entity.Holder, filter ledger.BatchFilter) ([]entity.StockBatch, error) {
	q := r.builder.Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{
			"item_id":     itemID,
			"holder_type": string(holder.Type),
			"holder_id":   holder.ID,
		})

	if filter.ExcludeEmpty {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	q = q.OrderBy("created_at", "id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []batchRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}
	return batchRowsToEntities(rows)
}

// ListBatchesForUpdate returns all batches for item+holder with row
// locks. Lock order is (created_at, id), the same order the FIFO
// allocator consumes in, so concurrent issues queue instead of
// deadlocking.
func (r *StockRepo) ListBatchesForUpdate(ctx context.Context, itemID id.ID, holder entity.Holder) ([]entity.StockBatch, error) {
	sql := `
		SELECT id, item_id, holder_type, holder_id, quantity, unit_cost, created_at
		FROM stock_batches
		WHERE item_id = $1 AND holder_type = $2 AND holder_id = $3
		ORDER BY created_at, id
		FOR UPDATE
	`

	var rows []batchRow
	err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql,
		itemID, string(holder.Type), holder.ID)
	if err != nil {
		return nil, fmt.Errorf("select batches for update: %w", err)
	}
	return batchRowsToEntities(rows)
}

// SetBatchQuantity updates the remaining quantity of a batch.
func (r *StockRepo) SetBatchQuantity(ctx context.Context, batchID id.ID, quantity types.Quantity) error {
	q := r.builder.Update(batchesTable).
		Set("quantity", quantity.Int64Scaled()).
		Where(squirrel.Eq{"id": batchID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update batch quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock batch", batchID.String())
	}
	return nil
}

// SumBatchQuantities returns total on-hand quantity for item+holder.
func (r *StockRepo) SumBatchQuantities(ctx context.Context, itemID id.ID, holder entity.Holder) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_batches
		WHERE item_id = $1 AND holder_type = $2 AND holder_id = $3
	`

	var totalScaled int64
	err := r.txManager.GetQuerier(ctx).
		QueryRow(ctx, sql, itemID, string(holder.Type), holder.ID).
		Scan(&totalScaled)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("sum batch quantities: %w", err)
	}
	return types.NewQuantityFromInt64Scaled(totalScaled), nil
}

// LastUnitCost returns the unit cost of the most recently created batch.
func (r *StockRepo) LastUnitCost(ctx context.Context, itemID id.ID, holder entity.Holder) (types.Money, error) {
	sql := `
		SELECT unit_cost
		FROM stock_batches
		WHERE item_id = $1 AND holder_type = $2 AND holder_id = $3
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var costStr string
	err := r.txManager.GetQuerier(ctx).
		QueryRow(ctx, sql, itemID, string(holder.Type), holder.ID).
		Scan(&costStr)
	if err != nil {
		if err == pgx.ErrNoRows {
			return types.ZeroMoney(), apperror.NewNotFound("stock batch", itemID.String()).
				WithDetail("holder", holder.String())
		}
		return types.ZeroMoney(), fmt.Errorf("get last unit cost: %w", err)
	}

	cost, err := types.NewMoneyFromString(costStr)
	if err != nil {
		return types.ZeroMoney(), fmt.Errorf("parse unit cost %q: %w", costStr, err)
	}
	return cost, nil
}

// InsertMovements appends movement rows via COPY. Requires the caller's
// transaction: a multi-line document lands all its movements in one
// round-trip or not at all.
func (r *StockRepo) InsertMovements(ctx context.Context, itemID id.ID, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, movementRowValues(itemID, m))
		}
		if _, err := inserter.CopyFromSlice(ctx, movementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback for the rare non-transactional caller (tests, tooling).
	q := r.builder.Insert(movementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(movementRowValues(itemID, m)...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

// GetMovementHistory returns the movement log for an item.
func (r *StockRepo) GetMovementHistory(ctx context.Context, itemID id.ID, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"item_id": itemID})

	if filter.Holder != nil {
		q = q.Where(squirrel.Eq{
			"holder_type": string(filter.Holder.Type),
			"holder_id":   filter.Holder.ID,
		})
	}
	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": string(*filter.Kind)})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []movementRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	movements := make([]entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, row.toEntity())
	}
	return movements, nil
}

// GetTurnover aggregates receipt and expense totals for a period.
// Per-row signs come from comparing after to previous, so transfer rows
// land on the correct side without a kind-specific case.
func (r *StockRepo) GetTurnover(ctx context.Context, filter ledger.TurnoverFilter) (ledger.Turnover, error) {
	var result ledger.Turnover
	if filter.ItemID != nil {
		result.ItemID = *filter.ItemID
	}

	conditions := squirrel.And{
		squirrel.GtOrEq{"created_at": filter.FromDate},
		squirrel.Lt{"created_at": filter.ToDate},
	}
	openingConditions := squirrel.And{
		squirrel.Lt{"created_at": filter.FromDate},
	}
	if filter.ItemID != nil {
		conditions = append(conditions, squirrel.Eq{"item_id": *filter.ItemID})
		openingConditions = append(openingConditions, squirrel.Eq{"item_id": *filter.ItemID})
	}
	if filter.Holder != nil {
		holderEq := squirrel.Eq{
			"holder_type": string(filter.Holder.Type),
			"holder_id":   filter.Holder.ID,
		}
		conditions = append(conditions, holderEq)
		openingConditions = append(openingConditions, holderEq)
	}

	q := r.builder.Select(
		"COALESCE(SUM(CASE WHEN after_quantity >= previous_quantity THEN movement_quantity ELSE 0 END), 0) AS receipt",
		"COALESCE(SUM(CASE WHEN after_quantity < previous_quantity THEN movement_quantity ELSE 0 END), 0) AS expense",
	).From(movementsTable).Where(conditions)

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var receiptScaled, expenseScaled int64
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&receiptScaled, &expenseScaled)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}
	result.Receipt = types.NewQuantityFromInt64Scaled(receiptScaled)
	result.Expense = types.NewQuantityFromInt64Scaled(expenseScaled)

	openingQ := r.builder.Select(
		"COALESCE(SUM(CASE WHEN after_quantity >= previous_quantity THEN movement_quantity ELSE -movement_quantity END), 0)",
	).From(movementsTable).Where(openingConditions)

	openingSQL, openingArgs, err := openingQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build opening query: %w", err)
	}

	var openingScaled int64
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, openingSQL, openingArgs...).Scan(&openingScaled)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate opening balance: %w", err)
	}
	result.OpeningBalance = types.NewQuantityFromInt64Scaled(openingScaled)
	result.ClosingBalance = result.OpeningBalance + result.Receipt - result.Expense

	return result, nil
}

func movementRowValues(itemID id.ID, m entity.StockMovement) []any {
	return []any{
		m.ID, itemID, m.BatchID,
		string(m.Holder.Type), m.Holder.ID,
		string(m.Kind),
		m.PreviousQuantity.Int64Scaled(), m.MovementQuantity.Int64Scaled(), m.AfterQuantity.Int64Scaled(),
		string(m.Reference.Type), m.Reference.ID,
		m.CreatedAt,
	}
}

func batchRowsToEntities(rows []batchRow) ([]entity.StockBatch, error) {
	batches := make([]entity.StockBatch, 0, len(rows))
	for _, row := range rows {
		b, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*StockRepo)(nil)
