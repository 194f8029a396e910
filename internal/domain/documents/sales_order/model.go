// Package sales_order provides the SalesOrder document.
package sales_order

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// SalesOrder represents a customer order. Its status is derived from
// linked waybill quantities, never set by hand.
type SalesOrder struct {
	entity.Document

	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Holder the goods will ship from
	Holder entity.Holder `db:"-" json:"holder"`

	Status entity.SalesOrderStatus `db:"status" json:"status"`

	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	Lines []SalesOrderLine `db:"-" json:"lines"`
}

// SalesOrderLine is one ordered item.
type SalesOrderLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Amount    types.Money    `db:"amount" json:"amount"`
}

// NewSalesOrder creates a new sales order in pending status.
func NewSalesOrder(customerID id.ID, holder entity.Holder) *SalesOrder {
	return &SalesOrder{
		Document:    entity.NewDocument(),
		CustomerID:  customerID,
		Holder:      holder,
		Status:      entity.SalesOrderPending,
		TotalAmount: types.ZeroMoney(),
		Lines:       make([]SalesOrderLine, 0),
	}
}

// AddLine appends an ordered item and recalculates totals.
func (so *SalesOrder) AddLine(itemID id.ID, quantity types.Quantity, unitPrice types.Money) {
	amount := unitPrice.Mul(quantity.Decimal())
	so.Lines = append(so.Lines, SalesOrderLine{
		LineID:    id.New(),
		LineNo:    len(so.Lines) + 1,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    amount,
	})
	so.TotalAmount = so.TotalAmount.Add(amount)
}

// Validate implements entity.Validatable.
func (so *SalesOrder) Validate(ctx context.Context) error {
	if err := so.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(so.CustomerID) {
		return apperror.NewValidation("customer is required")
	}
	if err := so.Holder.Validate(); err != nil {
		return err
	}
	if len(so.Lines) == 0 {
		return apperror.NewValidation("sales order must have at least one line")
	}
	for _, line := range so.Lines {
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
