package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/domain/documents"
	"kardex/internal/domain/documents/stock_adjustment"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	stockAdjustmentsTable     = "doc_stock_adjustments"
	stockAdjustmentLinesTable = "doc_stock_adjustment_lines"
)

type stockAdjustmentRow struct {
	stock_adjustment.StockAdjustment
	HolderType string `db:"holder_type"`
	HolderID   id.ID  `db:"holder_id"`
}

func (r *stockAdjustmentRow) toDoc() *stock_adjustment.StockAdjustment {
	doc := r.StockAdjustment
	doc.Holder = entity.Holder{Type: entity.HolderType(r.HolderType), ID: r.HolderID}
	return &doc
}

var stockAdjustmentColumns = docCols(
	"holder_type", "holder_id", "reason",
)

// StockAdjustmentRepo implements stock_adjustment.Repository.
type StockAdjustmentRepo struct {
	baseRepo
}

// NewStockAdjustmentRepo creates a new stock adjustment repository.
func NewStockAdjustmentRepo(txManager *postgres.TxManager) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{baseRepo{txManager: txManager, table: stockAdjustmentsTable}}
}

// Create inserts the document header.
func (r *StockAdjustmentRepo) Create(ctx context.Context, doc *stock_adjustment.StockAdjustment) error {
	q := r.builder().Insert(stockAdjustmentsTable).
		Columns(stockAdjustmentColumns...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
			doc.Number, doc.Date, doc.Comment,
			string(doc.Holder.Type), doc.Holder.ID, doc.Reason,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock adjustment: %w", err)
	}
	return nil
}

// GetByID retrieves a stock adjustment header by id.
func (r *StockAdjustmentRepo) GetByID(ctx context.Context, docID id.ID) (*stock_adjustment.StockAdjustment, error) {
	q := r.builder().Select(stockAdjustmentColumns...).
		From(stockAdjustmentsTable).
		Where(squirrel.Eq{"id": docID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row stockAdjustmentRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock adjustment", docID.String())
		}
		return nil, fmt.Errorf("get stock adjustment: %w", err)
	}
	return row.toDoc(), nil
}

// GetLines retrieves lines ordered by line number.
func (r *StockAdjustmentRepo) GetLines(ctx context.Context, docID id.ID) ([]stock_adjustment.StockAdjustmentLine, error) {
	q := r.builder().Select(
		"line_id", "line_no", "item_id", "signed_delta", "unit_cost",
	).From(stockAdjustmentLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []stock_adjustment.StockAdjustmentLine
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

// SaveLines replaces the line set of a document.
func (r *StockAdjustmentRepo) SaveLines(ctx context.Context, docID id.ID, lines []stock_adjustment.StockAdjustmentLine) error {
	deleteSQL := "DELETE FROM " + stockAdjustmentLinesTable + " WHERE document_id = $1"
	if _, err := r.querier(ctx).Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder().Insert(stockAdjustmentLinesTable).
		Columns("line_id", "document_id", "line_no", "item_id", "signed_delta", "unit_cost")
	for _, line := range lines {
		q = q.Values(line.LineID, docID, line.LineNo, line.ItemID, line.SignedDelta, line.UnitCost)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}
	return nil
}

// List retrieves stock adjustments with filtering.
func (r *StockAdjustmentRepo) List(ctx context.Context, filter stock_adjustment.ListFilter) (documents.ListResult[*stock_adjustment.StockAdjustment], error) {
	result := documents.ListResult[*stock_adjustment.StockAdjustment]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(stockAdjustmentColumns...).From(stockAdjustmentsTable)
	q = r.applyCommonFilter(q, filter.ListFilter)

	if filter.Holder != nil {
		q = q.Where(squirrel.Eq{
			"holder_type": string(filter.Holder.Type),
			"holder_id":   filter.Holder.ID,
		})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q, err = r.applyPage(q, filter.ListFilter, "reason")
	if err != nil {
		return result, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []stockAdjustmentRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return result, fmt.Errorf("select stock adjustments: %w", err)
	}

	result.Items = make([]*stock_adjustment.StockAdjustment, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, rows[i].toDoc())
	}
	return result, nil
}

// Ensure interface compliance.
var _ stock_adjustment.Repository = (*StockAdjustmentRepo)(nil)
