// Package purchase_order provides the PurchaseOrder document.
package purchase_order

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// PurchaseOrder represents an order placed with a supplier. Its status
// is derived from linked goods-receipt quantities, never set by hand.
type PurchaseOrder struct {
	entity.Document

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// Holder that will receive the ordered goods
	Holder entity.Holder `db:"-" json:"holder"`

	Status entity.PurchaseOrderStatus `db:"status" json:"status"`

	// Totals calculated from lines
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	Lines []PurchaseOrderLine `db:"-" json:"lines"`
}

// PurchaseOrderLine is one ordered item.
type PurchaseOrderLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// Quantity ordered, in base units
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Amount    types.Money    `db:"amount" json:"amount"`
}

// NewPurchaseOrder creates a new purchase order in pending status.
func NewPurchaseOrder(supplierID id.ID, holder entity.Holder) *PurchaseOrder {
	return &PurchaseOrder{
		Document:    entity.NewDocument(),
		SupplierID:  supplierID,
		Holder:      holder,
		Status:      entity.PurchaseOrderPending,
		TotalAmount: types.ZeroMoney(),
		Lines:       make([]PurchaseOrderLine, 0),
	}
}

// AddLine appends an ordered item and recalculates totals.
func (p *PurchaseOrder) AddLine(itemID id.ID, quantity types.Quantity, unitPrice types.Money) {
	amount := unitPrice.Mul(quantity.Decimal())
	p.Lines = append(p.Lines, PurchaseOrderLine{
		LineID:    id.New(),
		LineNo:    len(p.Lines) + 1,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    amount,
	})
	p.TotalAmount = p.TotalAmount.Add(amount)
}

// Validate implements entity.Validatable.
func (p *PurchaseOrder) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required")
	}
	if err := p.Holder.Validate(); err != nil {
		return err
	}
	if len(p.Lines) == 0 {
		return apperror.NewValidation("purchase order must have at least one line")
	}
	for _, line := range p.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("line item is required").
				WithDetail("line_no", line.LineNo)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity("line quantity must be positive").
				WithDetail("line_no", line.LineNo)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("line price must not be negative").
				WithDetail("line_no", line.LineNo)
		}
	}
	return nil
}
