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
	"kardex/internal/domain/documents/sales_order"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	salesOrdersTable     = "doc_sales_orders"
	salesOrderLinesTable = "doc_sales_order_lines"
)

type salesOrderRow struct {
	sales_order.SalesOrder
	HolderType string `db:"holder_type"`
	HolderID   id.ID  `db:"holder_id"`
}

func (r *salesOrderRow) toDoc() *sales_order.SalesOrder {
	doc := r.SalesOrder
	doc.Holder = entity.Holder{Type: entity.HolderType(r.HolderType), ID: r.HolderID}
	return &doc
}

var salesOrderColumns = docCols(
	"customer_id", "holder_type", "holder_id", "status", "total_amount",
)

// SalesOrderRepo implements sales_order.Repository.
type SalesOrderRepo struct {
	baseRepo
}

// NewSalesOrderRepo creates a new sales order repository.
func NewSalesOrderRepo(txManager *postgres.TxManager) *SalesOrderRepo {
	return &SalesOrderRepo{baseRepo{txManager: txManager, table: salesOrdersTable}}
}

// Create inserts the document header.
func (r *SalesOrderRepo) Create(ctx context.Context, doc *sales_order.SalesOrder) error {
	q := r.builder().Insert(salesOrdersTable).
		Columns(salesOrderColumns...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
			doc.Number, doc.Date, doc.Comment,
			doc.CustomerID, string(doc.Holder.Type), doc.Holder.ID,
			string(doc.Status), doc.TotalAmount,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sales order: %w", err)
	}
	return nil
}

// GetByID retrieves a sales order header by id.
func (r *SalesOrderRepo) GetByID(ctx context.Context, docID id.ID) (*sales_order.SalesOrder, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID.String())
}

// GetByNumber retrieves a sales order header by number.
func (r *SalesOrderRepo) GetByNumber(ctx context.Context, number string) (*sales_order.SalesOrder, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number)
}

func (r *SalesOrderRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*sales_order.SalesOrder, error) {
	q := r.builder().Select(salesOrderColumns...).
		From(salesOrdersTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row salesOrderRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sales order", key)
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	return row.toDoc(), nil
}

// GetLines retrieves lines ordered by line number.
func (r *SalesOrderRepo) GetLines(ctx context.Context, docID id.ID) ([]sales_order.SalesOrderLine, error) {
	q := r.builder().Select(
		"line_id", "line_no", "item_id",
		"quantity", "unit_price", "amount",
	).From(salesOrderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sales_order.SalesOrderLine
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

// SaveLines replaces the line set of a document.
func (r *SalesOrderRepo) SaveLines(ctx context.Context, docID id.ID, lines []sales_order.SalesOrderLine) error {
	deleteSQL := "DELETE FROM " + salesOrderLinesTable + " WHERE document_id = $1"
	if _, err := r.querier(ctx).Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder().Insert(salesOrderLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id",
			"quantity", "unit_price", "amount",
		)
	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ItemID,
			line.Quantity, line.UnitPrice, line.Amount,
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

// SetStatus persists the derived fulfillment status.
func (r *SalesOrderRepo) SetStatus(ctx context.Context, docID id.ID, status entity.SalesOrderStatus) error {
	return setOrderStatus(ctx, r.querier(ctx), salesOrdersTable, docID, string(status))
}

// List retrieves sales orders with filtering.
func (r *SalesOrderRepo) List(ctx context.Context, filter sales_order.ListFilter) (documents.ListResult[*sales_order.SalesOrder], error) {
	result := documents.ListResult[*sales_order.SalesOrder]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(salesOrderColumns...).From(salesOrdersTable)
	q = r.applyCommonFilter(q, filter.ListFilter)

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q, err = r.applyPage(q, filter.ListFilter, "customer_id", "status", "total_amount")
	if err != nil {
		return result, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []salesOrderRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return result, fmt.Errorf("select sales orders: %w", err)
	}

	result.Items = make([]*sales_order.SalesOrder, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, rows[i].toDoc())
	}
	return result, nil
}

// Ensure interface compliance.
var _ sales_order.Repository = (*SalesOrderRepo)(nil)
