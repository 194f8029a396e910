// Package goods_receipt provides the GoodsReceipt document.
package goods_receipt

import (
	"context"
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// GoodsReceipt records incoming goods from a supplier. Every line
// creates one new batch at the receiving holder.
type GoodsReceipt struct {
	entity.Document

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// Holder receiving the goods
	Holder entity.Holder `db:"-" json:"holder"`

	// Supplier's document reference
	SupplierDocNumber string     `db:"supplier_doc_number" json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time `db:"supplier_doc_date" json:"supplierDocDate,omitempty"`

	// Totals calculated from lines
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Invoiced is set when a purchase invoice attaches to this receipt
	// and cleared when it detaches. Not quantity-derived.
	Invoiced bool `db:"invoiced" json:"invoiced"`

	Lines []GoodsReceiptLine `db:"-" json:"lines"`
}

// GoodsReceiptLine is one received item. When the receipt fulfills a
// purchase order, the line points at the order line it covers.
type GoodsReceiptLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// Quantity received, in base units
	Quantity types.Quantity `db:"quantity" json:"quantity"`
	UnitCost types.Money    `db:"unit_cost" json:"unitCost"`
	Amount   types.Money    `db:"amount" json:"amount"`

	// Purchase order linkage (optional)
	PurchaseOrderID     *id.ID `db:"purchase_order_id" json:"purchaseOrderId,omitempty"`
	PurchaseOrderLineID *id.ID `db:"purchase_order_line_id" json:"purchaseOrderLineId,omitempty"`
}

// NewGoodsReceipt creates a new goods receipt document.
func NewGoodsReceipt(supplierID id.ID, holder entity.Holder) *GoodsReceipt {
	return &GoodsReceipt{
		Document:    entity.NewDocument(),
		SupplierID:  supplierID,
		Holder:      holder,
		TotalAmount: types.ZeroMoney(),
		Lines:       make([]GoodsReceiptLine, 0),
	}
}

// AddLine appends a received item and recalculates totals.
func (g *GoodsReceipt) AddLine(itemID id.ID, quantity types.Quantity, unitCost types.Money) *GoodsReceiptLine {
	amount := unitCost.Mul(quantity.Decimal())
	g.Lines = append(g.Lines, GoodsReceiptLine{
		LineID:   id.New(),
		LineNo:   len(g.Lines) + 1,
		ItemID:   itemID,
		Quantity: quantity,
		UnitCost: unitCost,
		Amount:   amount,
	})
	g.TotalAmount = g.TotalAmount.Add(amount)
	return &g.Lines[len(g.Lines)-1]
}

// OrderIDs returns the distinct purchase orders this receipt fulfills.
func (g *GoodsReceipt) OrderIDs() []id.ID {
	seen := make(map[id.ID]bool)
	var out []id.ID
	for _, line := range g.Lines {
		if line.PurchaseOrderID != nil && !seen[*line.PurchaseOrderID] {
			seen[*line.PurchaseOrderID] = true
			out = append(out, *line.PurchaseOrderID)
		}
	}
	return out
}

// Validate implements entity.Validatable.
func (g *GoodsReceipt) Validate(ctx context.Context) error {
	if err := g.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(g.SupplierID) {
		return apperror.NewValidation("supplier is required")
	}
	if err := g.Holder.Validate(); err != nil {
		return err
	}
	if len(g.Lines) == 0 {
		return apperror.NewValidation("goods receipt must have at least one line")
	}
	for _, line := range g.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("line item is required").
				WithDetail("line_no", line.LineNo)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity("line quantity must be positive").
				WithDetail("line_no", line.LineNo)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("line cost must not be negative").
				WithDetail("line_no", line.LineNo)
		}
		if line.PurchaseOrderLineID != nil && line.PurchaseOrderID == nil {
			return apperror.NewValidation("order line given without order").
				WithDetail("line_no", line.LineNo)
		}
	}
	return nil
}
