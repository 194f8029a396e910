package document_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/fulfillment"
	"kardex/internal/infrastructure/storage/postgres"
)

// progressRow is one order line with its fulfilled quantity summed
// from persisted child document lines.
type progressRow struct {
	Required  int64 `db:"required"`
	Fulfilled int64 `db:"fulfilled"`
}

// FulfillmentRepo implements fulfillment.Repository by joining order
// lines against the child documents that fulfill them. It reads the
// caller's transaction, so a recompute right after SaveLines sees the
// lines written moments earlier.
type FulfillmentRepo struct {
	txManager *postgres.TxManager
}

// NewFulfillmentRepo creates a new fulfillment repository.
func NewFulfillmentRepo(txManager *postgres.TxManager) *FulfillmentRepo {
	return &FulfillmentRepo{txManager: txManager}
}

// GetPurchaseOrderProgress returns ordered vs received per line.
func (r *FulfillmentRepo) GetPurchaseOrderProgress(ctx context.Context, orderID id.ID) ([]fulfillment.LineProgress, error) {
	sql := `
		SELECT pol.quantity AS required,
		       COALESCE(SUM(grl.quantity), 0) AS fulfilled
		FROM doc_purchase_order_lines pol
		LEFT JOIN doc_goods_receipt_lines grl
		       ON grl.purchase_order_line_id = pol.line_id
		WHERE pol.document_id = $1
		GROUP BY pol.line_id, pol.line_no, pol.quantity
		ORDER BY pol.line_no
	`
	return r.selectProgress(ctx, sql, orderID)
}

// SetPurchaseOrderStatus persists the derived status.
func (r *FulfillmentRepo) SetPurchaseOrderStatus(ctx context.Context, orderID id.ID, status entity.PurchaseOrderStatus) error {
	return setOrderStatus(ctx, r.txManager.GetQuerier(ctx), purchaseOrdersTable, orderID, string(status))
}

// GetSalesOrderProgress returns ordered vs shipped per line.
func (r *FulfillmentRepo) GetSalesOrderProgress(ctx context.Context, orderID id.ID) ([]fulfillment.LineProgress, error) {
	sql := `
		SELECT sol.quantity AS required,
		       COALESCE(SUM(wbl.quantity), 0) AS fulfilled
		FROM doc_sales_order_lines sol
		LEFT JOIN doc_waybill_lines wbl
		       ON wbl.sales_order_line_id = sol.line_id
		WHERE sol.document_id = $1
		GROUP BY sol.line_id, sol.line_no, sol.quantity
		ORDER BY sol.line_no
	`
	return r.selectProgress(ctx, sql, orderID)
}

// SetSalesOrderStatus persists the derived status.
func (r *FulfillmentRepo) SetSalesOrderStatus(ctx context.Context, orderID id.ID, status entity.SalesOrderStatus) error {
	return setOrderStatus(ctx, r.txManager.GetQuerier(ctx), salesOrdersTable, orderID, string(status))
}

func (r *FulfillmentRepo) selectProgress(ctx context.Context, sql string, orderID id.ID) ([]fulfillment.LineProgress, error) {
	var rows []progressRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, orderID); err != nil {
		return nil, fmt.Errorf("select progress: %w", err)
	}

	lines := make([]fulfillment.LineProgress, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fulfillment.LineProgress{
			Required:  types.NewQuantityFromInt64Scaled(row.Required),
			Fulfilled: types.NewQuantityFromInt64Scaled(row.Fulfilled),
		})
	}
	return lines, nil
}

// Ensure interface compliance.
var _ fulfillment.Repository = (*FulfillmentRepo)(nil)
