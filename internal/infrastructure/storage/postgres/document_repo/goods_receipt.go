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
	"kardex/internal/domain/documents/goods_receipt"
	"kardex/internal/infrastructure/storage/postgres"
)

const (
	goodsReceiptsTable     = "doc_goods_receipts"
	goodsReceiptLinesTable = "doc_goods_receipt_lines"
)

// goodsReceiptRow adds the flattened holder columns for scanning.
type goodsReceiptRow struct {
	goods_receipt.GoodsReceipt
	HolderType string `db:"holder_type"`
	HolderID   id.ID  `db:"holder_id"`
}

func (r *goodsReceiptRow) toDoc() *goods_receipt.GoodsReceipt {
	doc := r.GoodsReceipt
	doc.Holder = entity.Holder{Type: entity.HolderType(r.HolderType), ID: r.HolderID}
	return &doc
}

var goodsReceiptColumns = docCols(
	"supplier_id", "holder_type", "holder_id",
	"supplier_doc_number", "supplier_doc_date", "total_amount", "invoiced",
)

// GoodsReceiptRepo implements goods_receipt.Repository.
type GoodsReceiptRepo struct {
	baseRepo
}

// NewGoodsReceiptRepo creates a new goods receipt repository.
func NewGoodsReceiptRepo(txManager *postgres.TxManager) *GoodsReceiptRepo {
	return &GoodsReceiptRepo{baseRepo{txManager: txManager, table: goodsReceiptsTable}}
}

// Create inserts the document header.
func (r *GoodsReceiptRepo) Create(ctx context.Context, doc *goods_receipt.GoodsReceipt) error {
	q := r.builder().Insert(goodsReceiptsTable).
		Columns(goodsReceiptColumns...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
			doc.Number, doc.Date, doc.Comment,
			doc.SupplierID, string(doc.Holder.Type), doc.Holder.ID,
			doc.SupplierDocNumber, doc.SupplierDocDate, doc.TotalAmount, doc.Invoiced,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert goods receipt: %w", err)
	}
	return nil
}

// GetByID retrieves a goods receipt header by id.
func (r *GoodsReceiptRepo) GetByID(ctx context.Context, docID id.ID) (*goods_receipt.GoodsReceipt, error) {
	return r.getOne(ctx, squirrel.Eq{"id": docID}, docID.String())
}

// GetByNumber retrieves a goods receipt header by number.
func (r *GoodsReceiptRepo) GetByNumber(ctx context.Context, number string) (*goods_receipt.GoodsReceipt, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number)
}

func (r *GoodsReceiptRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*goods_receipt.GoodsReceipt, error) {
	q := r.builder().Select(goodsReceiptColumns...).
		From(goodsReceiptsTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row goodsReceiptRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("goods receipt", key)
		}
		return nil, fmt.Errorf("get goods receipt: %w", err)
	}
	return row.toDoc(), nil
}

// GetLines retrieves lines ordered by line number.
func (r *GoodsReceiptRepo) GetLines(ctx context.Context, docID id.ID) ([]goods_receipt.GoodsReceiptLine, error) {
	q := r.builder().Select(
		"line_id", "line_no", "item_id",
		"quantity", "unit_cost", "amount",
		"purchase_order_id", "purchase_order_line_id",
	).From(goodsReceiptLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []goods_receipt.GoodsReceiptLine
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

// SaveLines replaces the line set of a document.
func (r *GoodsReceiptRepo) SaveLines(ctx context.Context, docID id.ID, lines []goods_receipt.GoodsReceiptLine) error {
	deleteSQL := "DELETE FROM " + goodsReceiptLinesTable + " WHERE document_id = $1"
	if _, err := r.querier(ctx).Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder().Insert(goodsReceiptLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id",
			"quantity", "unit_cost", "amount",
			"purchase_order_id", "purchase_order_line_id",
		)
	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ItemID,
			line.Quantity, line.UnitCost, line.Amount,
			line.PurchaseOrderID, line.PurchaseOrderLineID,
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

// List retrieves goods receipts with filtering.
func (r *GoodsReceiptRepo) List(ctx context.Context, filter goods_receipt.ListFilter) (documents.ListResult[*goods_receipt.GoodsReceipt], error) {
	result := documents.ListResult[*goods_receipt.GoodsReceipt]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(goodsReceiptColumns...).From(goodsReceiptsTable)
	q = r.applyCommonFilter(q, filter.ListFilter)

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q, err = r.applyPage(q, filter.ListFilter, "supplier_id", "total_amount")
	if err != nil {
		return result, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []goodsReceiptRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return result, fmt.Errorf("select goods receipts: %w", err)
	}

	result.Items = make([]*goods_receipt.GoodsReceipt, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, rows[i].toDoc())
	}
	return result, nil
}

// Ensure interface compliance.
var _ goods_receipt.Repository = (*GoodsReceiptRepo)(nil)
