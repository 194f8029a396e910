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
	"kardex/internal/domain/documents/stock_transfer"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	stockTransfersTable     = "doc_stock_transfers"
	stockTransferLinesTable = "doc_stock_transfer_lines"
)

type stockTransferRow struct {
	stock_transfer.StockTransfer
	FromHolderType string `db:"from_holder_type"`
	FromHolderID   id.ID  `db:"from_holder_id"`
	ToHolderType   string `db:"to_holder_type"`
	ToHolderID     id.ID  `db:"to_holder_id"`
}

func (r *stockTransferRow) toDoc() *stock_transfer.StockTransfer {
	doc := r.StockTransfer
	doc.From = entity.Holder{Type: entity.HolderType(r.FromHolderType), ID: r.FromHolderID}
	doc.To = entity.Holder{Type: entity.HolderType(r.ToHolderType), ID: r.ToHolderID}
	return &doc
}

var stockTransferColumns = docCols(
	"from_holder_type", "from_holder_id", "to_holder_type", "to_holder_id",
)

// StockTransferRepo implements stock_transfer.Repository.
type StockTransferRepo struct {
	baseRepo
}

// NewStockTransferRepo creates a new stock transfer repository.
func NewStockTransferRepo(txManager *postgres.TxManager) *StockTransferRepo {
	return &StockTransferRepo{baseRepo{txManager: txManager, table: stockTransfersTable}}
}

// Create inserts the document header.
func (r *StockTransferRepo) Create(ctx context.Context, doc *stock_transfer.StockTransfer) error {
	q := r.builder().Insert(stockTransfersTable).
		Columns(stockTransferColumns...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
			doc.Number, doc.Date, doc.Comment,
			string(doc.From.Type), doc.From.ID,
			string(doc.To.Type), doc.To.ID,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock transfer: %w", err)
	}
	return nil
}

// GetByID retrieves a stock transfer header by id.
func (r *StockTransferRepo) GetByID(ctx context.Context, docID id.ID) (*stock_transfer.StockTransfer, error) {
	q := r.builder().Select(stockTransferColumns...).
		From(stockTransfersTable).
		Where(squirrel.Eq{"id": docID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row stockTransferRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock transfer", docID.String())
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}
	return row.toDoc(), nil
}

// GetLines retrieves lines ordered by line number.
func (r *StockTransferRepo) GetLines(ctx context.Context, docID id.ID) ([]stock_transfer.StockTransferLine, error) {
	q := r.builder().Select(
		"line_id", "line_no", "item_id", "quantity",
	).From(stockTransferLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []stock_transfer.StockTransferLine
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

// SaveLines replaces the line set of a document.
func (r *StockTransferRepo) SaveLines(ctx context.Context, docID id.ID, lines []stock_transfer.StockTransferLine) error {
	deleteSQL := "DELETE FROM " + stockTransferLinesTable + " WHERE document_id = $1"
	if _, err := r.querier(ctx).Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder().Insert(stockTransferLinesTable).
		Columns("line_id", "document_id", "line_no", "item_id", "quantity")
	for _, line := range lines {
		q = q.Values(line.LineID, docID, line.LineNo, line.ItemID, line.Quantity)
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

// List retrieves stock transfers with filtering.
func (r *StockTransferRepo) List(ctx context.Context, filter stock_transfer.ListFilter) (documents.ListResult[*stock_transfer.StockTransfer], error) {
	result := documents.ListResult[*stock_transfer.StockTransfer]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(stockTransferColumns...).From(stockTransfersTable)
	q = r.applyCommonFilter(q, filter.ListFilter)

	if filter.From != nil {
		q = q.Where(squirrel.Eq{
			"from_holder_type": string(filter.From.Type),
			"from_holder_id":   filter.From.ID,
		})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Eq{
			"to_holder_type": string(filter.To.Type),
			"to_holder_id":   filter.To.ID,
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

	var rows []stockTransferRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return result, fmt.Errorf("select stock transfers: %w", err)
	}

	result.Items = make([]*stock_transfer.StockTransfer, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, rows[i].toDoc())
	}
	return result, nil
}

// Ensure interface compliance.
var _ stock_transfer.Repository = (*StockTransferRepo)(nil)
