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
	"kardex/internal/domain/documents/purchase_order"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable     = "doc_purchase_orders"
	purchaseOrderLinesTable = "doc_purchase_order_lines"
)

type purchaseOrderRow struct {
	purchase_order.PurchaseOrder
	HolderType string `db:"holder_type"`
	HolderID   id.ID  `db:"holder_id"`
}

func (r *purchaseOrderRow) toDoc() *purchase_order.PurchaseOrder {
	doc := r.PurchaseOrder
	doc.Holder = entity.Holder{Type: entity.HolderType(r.HolderType), ID: r.HolderID}
	return &doc
}

var purchaseOrderColumns = docCols(
	"supplier_id", "holder_type", "holder_id", "status", "total_amount",
)

// PurchaseOrderRepo implements purchase_order.Repository.
type PurchaseOrderRepo struct {
	baseRepo
}

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo(txManager *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{baseRepo{txManager: txManager, table: purchaseOrdersTable}}
}

// Create inserts the document header.
func (r *PurchaseOrderRepo) Create(ctx context.Context, doc *purchase_order.PurchaseOrder) error {
	q := r.builder().Insert(purchaseOrdersTable).
		Columns(purchaseOrderColumns...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
			doc.Number, doc.Date, doc.Comment,
			doc.SupplierID, string(doc.Holder.Type), doc.Holder.ID,
			string(doc.Status), doc.TotalAmount,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

// GetByID retrieves a purchase order header by id.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, docID id.ID) (*purchase_order.PurchaseOrder, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID.String())
}

// GetByNumber retrieves a purchase order header by number.
func (r *PurchaseOrderRepo) GetByNumber(ctx context.Context, number string) (*purchase_order.PurchaseOrder, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number)
}

func (r *PurchaseOrderRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*purchase_order.PurchaseOrder, error) {
	q := r.builder().Select(purchaseOrderColumns...).
		From(purchaseOrdersTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row purchaseOrderRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase order", key)
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return row.toDoc(), nil
}

// GetLines retrieves lines ordered by line number.
func (r *PurchaseOrderRepo) GetLines(ctx context.Context, docID id.ID) ([]purchase_order.PurchaseOrderLine, error) {
	q := r.builder().Select(
		"line_id", "line_no", "item_id",
		"quantity", "unit_price", "amount",
	).From(purchaseOrderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase_order.PurchaseOrderLine
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

// SaveLines replaces the line set of a document.
func (r *PurchaseOrderRepo) SaveLines(ctx context.Context, docID id.ID, lines []purchase_order.PurchaseOrderLine) error {
	deleteSQL := "DELETE FROM " + purchaseOrderLinesTable + " WHERE document_id = $1"
	if _, err := r.querier(ctx).Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder().Insert(purchaseOrderLinesTable).
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
func (r *PurchaseOrderRepo) SetStatus(ctx context.Context, docID id.ID, status entity.PurchaseOrderStatus) error {
	return setOrderStatus(ctx, r.querier(ctx), purchaseOrdersTable, docID, string(status))
}

// List retrieves purchase orders with filtering.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter purchase_order.ListFilter) (documents.ListResult[*purchase_order.PurchaseOrder], error) {
	result := documents.ListResult[*purchase_order.PurchaseOrder]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(purchaseOrderColumns...).From(purchaseOrdersTable)
	q = r.applyCommonFilter(q, filter.ListFilter)

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q, err = r.applyPage(q, filter.ListFilter, "supplier_id", "status", "total_amount")
	if err != nil {
		return result, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []purchaseOrderRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return result, fmt.Errorf("select purchase orders: %w", err)
	}

	result.Items = make([]*purchase_order.PurchaseOrder, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, rows[i].toDoc())
	}
	return result, nil
}

// setOrderStatus updates a derived status column and bumps the version.
// Derived statuses bypass optimistic locking: the recompute runs inside
// the transaction that changed the underlying lines, last write wins.
func setOrderStatus(ctx context.Context, querier postgres.Querier, table string, docID id.ID, status string) error {
	sql := "UPDATE " + table + " SET status = $1, version = version + 1, updated_at = NOW() WHERE id = $2"
	result, err := querier.Exec(ctx, sql, status, docID)
	if err != nil {
		return fmt.Errorf("update %s status: %w", table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(table, docID.String())
	}
	return nil
}

// Ensure interface compliance.
var _ purchase_order.Repository = (*PurchaseOrderRepo)(nil)
