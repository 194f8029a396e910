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
	"kardex/internal/domain/documents/stock_audit"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	stockAuditsTable     = "doc_stock_audits"
	stockAuditLinesTable = "doc_stock_audit_lines"
)

type stockAuditRow struct {
	stock_audit.StockAudit
	HolderType string `db:"holder_type"`
	HolderID   id.ID  `db:"holder_id"`
}

func (r *stockAuditRow) toDoc() *stock_audit.StockAudit {
	doc := r.StockAudit
	doc.Holder = entity.Holder{Type: entity.HolderType(r.HolderType), ID: r.HolderID}
	return &doc
}

var stockAuditColumns = docCols(
	"holder_type", "holder_id",
)

// StockAuditRepo implements stock_audit.Repository.
type StockAuditRepo struct {
	baseRepo
}

// NewStockAuditRepo creates a new stock audit repository.
func NewStockAuditRepo(txManager *postgres.TxManager) *StockAuditRepo {
	return &StockAuditRepo{baseRepo{txManager: txManager, table: stockAuditsTable}}
}

// Create inserts the document header.
func (r *StockAuditRepo) Create(ctx context.Context, doc *stock_audit.StockAudit) error {
	q := r.builder().Insert(stockAuditsTable).
		Columns(stockAuditColumns...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
			doc.Number, doc.Date, doc.Comment,
			string(doc.Holder.Type), doc.Holder.ID,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock audit: %w", err)
	}
	return nil
}

// GetByID retrieves a stock audit header by id.
func (r *StockAuditRepo) GetByID(ctx context.Context, docID id.ID) (*stock_audit.StockAudit, error) {
	q := r.builder().Select(stockAuditColumns...).
		From(stockAuditsTable).
		Where(squirrel.Eq{"id": docID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row stockAuditRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock audit", docID.String())
		}
		return nil, fmt.Errorf("get stock audit: %w", err)
	}
	return row.toDoc(), nil
}

// GetLines retrieves lines ordered by line number.
func (r *StockAuditRepo) GetLines(ctx context.Context, docID id.ID) ([]stock_audit.StockAuditLine, error) {
	q := r.builder().Select(
		"line_id", "line_no", "item_id",
		"counted_quantity", "book_quantity", "unit_cost",
	).From(stockAuditLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []stock_audit.StockAuditLine
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

// SaveLines replaces the line set of a document. Lines are persisted
// after the service fills in book quantities, so the stored snapshot
// matches what the adjustment deltas were computed from.
func (r *StockAuditRepo) SaveLines(ctx context.Context, docID id.ID, lines []stock_audit.StockAuditLine) error {
	deleteSQL := "DELETE FROM " + stockAuditLinesTable + " WHERE document_id = $1"
	if _, err := r.querier(ctx).Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder().Insert(stockAuditLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id",
			"counted_quantity", "book_quantity", "unit_cost",
		)
	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ItemID,
			line.CountedQuantity, line.BookQuantity, line.UnitCost,
		)
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

// List retrieves stock audits with filtering.
func (r *StockAuditRepo) List(ctx context.Context, filter stock_audit.ListFilter) (documents.ListResult[*stock_audit.StockAudit], error) {
	result := documents.ListResult[*stock_audit.StockAudit]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(stockAuditColumns...).From(stockAuditsTable)
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

	q, err = r.applyPage(q, filter.ListFilter)
	if err != nil {
		return result, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []stockAuditRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return result, fmt.Errorf("select stock audits: %w", err)
	}

	result.Items = make([]*stock_audit.StockAudit, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, rows[i].toDoc())
	}
	return result, nil
}

// Ensure interface compliance.
var _ stock_audit.Repository = (*StockAuditRepo)(nil)
