package entity

import (
	"time"

	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// StockBatch is a discrete lot of on-hand stock for one item at one
// holder, with its own quantity and unit cost. Batches are created by
// Receive and Transfer-in, decremented by Issue, Transfer-out and
// downward adjustments, and never physically deleted or merged: drained
// batches stay at zero as cost layers for reporting.
type StockBatch struct {
	ID        id.ID          `db:"id" json:"id"`
	ItemID    id.ID          `db:"item_id" json:"itemId"`
	Holder    Holder         `db:"-" json:"holder"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitCost  types.Money    `db:"unit_cost" json:"unitCost"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// NewStockBatch creates a batch with a generated time-ordered id.
func NewStockBatch(itemID id.ID, holder Holder, quantity types.Quantity, unitCost types.Money) StockBatch {
	return StockBatch{
		ID:        id.New(),
		ItemID:    itemID,
		Holder:    holder,
		Quantity:  quantity,
		UnitCost:  unitCost,
		CreatedAt: time.Now().UTC(),
	}
}

// Value returns the batch's remaining cost value (quantity * unit cost).
func (b *StockBatch) Value() types.Money {
	return b.UnitCost.Mul(b.Quantity.Decimal())
}
