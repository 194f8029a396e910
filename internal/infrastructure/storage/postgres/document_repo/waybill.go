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
	"kardex/internal/domain/documents/waybill"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	waybillsTable     = "doc_waybills"
	waybillLinesTable = "doc_waybill_lines"
)

type waybillRow struct {
	waybill.Waybill
	HolderType string `db:"holder_type"`
	HolderID   id.ID  `db:"holder_id"`
}

func (r *waybillRow) toDoc() *waybill.Waybill {
	doc := r.Waybill
	doc.Holder = entity.Holder{Type: entity.HolderType(r.HolderType), ID: r.HolderID}
	return &doc
}

var waybillColumns = docCols(
	"customer_id", "holder_type", "holder_id", "total_amount", "invoiced",
)

// WaybillRepo implements waybill.Repository.
type WaybillRepo struct {
	baseRepo
}

// NewWaybillRepo creates a new waybill repository.
func NewWaybillRepo(txManager *postgres.TxManager) *WaybillRepo {
	return &WaybillRepo{baseRepo{txManager: txManager, table: waybillsTable}}
}

// Create inserts the document header.
func (r *WaybillRepo) Create(ctx context.Context, doc *waybill.Waybill) error {
	q := r.builder().Insert(waybillsTable).
		Columns(waybillColumns...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
			doc.Number, doc.Date, doc.Comment,
			doc.CustomerID, string(doc.Holder.Type), doc.Holder.ID,
			doc.TotalAmount, doc.Invoiced,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert waybill: %w", err)
	}
	return nil
}

// GetByID retrieves a waybill header by id.
func (r *WaybillRepo) GetByID(ctx context.Context, docID id.ID) (*waybill.Waybill, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID.String())
}

// GetByNumber retrieves a waybill header by number.
func (r *WaybillRepo) GetByNumber(ctx context.Context, number string) (*waybill.Waybill, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number)
}

func (r *WaybillRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*waybill.Waybill, error) {
	q := r.builder().Select(waybillColumns...).
		From(waybillsTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row waybillRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("waybill", key)
		}
		return nil, fmt.Errorf("get waybill: %w", err)
	}
	return row.toDoc(), nil
}

// GetLines retrieves lines ordered by line number.
func (r *WaybillRepo) GetLines(ctx context.Context, docID id.ID) ([]waybill.WaybillLine, error) {
	q := r.builder().Select(
		"line_id", "line_no", "item_id",
		"quantity", "unit_price", "amount",
		"sales_order_id", "sales_order_line_id",
	).From(waybillLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []waybill.WaybillLine
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

// SaveLines replaces the line set of a document.
func (r *WaybillRepo) SaveLines(ctx context.Context, docID id.ID, lines []waybill.WaybillLine) error {
	deleteSQL := "DELETE FROM " + waybillLinesTable + " WHERE document_id = $1"
	if _, err := r.querier(ctx).Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder().Insert(waybillLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id",
			"quantity", "unit_price", "amount",
			"sales_order_id", "sales_order_line_id",
		)
	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ItemID,
			line.Quantity, line.UnitPrice, line.Amount,
			line.SalesOrderID, line.SalesOrderLineID,
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

// List retrieves waybills with filtering.
func (r *WaybillRepo) List(ctx context.Context, filter waybill.ListFilter) (documents.ListResult[*waybill.Waybill], error) {
	result := documents.ListResult[*waybill.Waybill]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(waybillColumns...).From(waybillsTable)
	q = r.applyCommonFilter(q, filter.ListFilter)

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q, err = r.applyPage(q, filter.ListFilter, "customer_id", "total_amount")
	if err != nil {
		return result, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []waybillRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return result, fmt.Errorf("select waybills: %w", err)
	}

	result.Items = make([]*waybill.Waybill, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, rows[i].toDoc())
	}
	return result, nil
}

// Ensure interface compliance.
var _ waybill.Repository = (*WaybillRepo)(nil)
