// Package waybill provides the Waybill document (outbound shipment).
package waybill

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// Waybill records goods shipped to a customer. Every line issues stock
// from the holder using FIFO allocation over its batches.
type Waybill struct {
	entity.Document

	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Holder the goods ship from
	Holder entity.Holder `db:"-" json:"holder"`

	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Invoiced is set when a sales invoice attaches to this waybill and
	// cleared when it detaches. Not quantity-derived.
	Invoiced bool `db:"invoiced" json:"invoiced"`

	Lines []WaybillLine `db:"-" json:"lines"`
}

// WaybillLine is one shipped item. When the shipment fulfills a sales
// order, the line points at the order line it covers.
type WaybillLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// Quantity shipped, in base units
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Amount    types.Money    `db:"amount" json:"amount"`

	// Sales order linkage (optional)
	SalesOrderID     *id.ID `db:"sales_order_id" json:"salesOrderId,omitempty"`
	SalesOrderLineID *id.ID `db:"sales_order_line_id" json:"salesOrderLineId,omitempty"`
}

// NewWaybill creates a new waybill document.
func NewWaybill(customerID id.ID, holder entity.Holder) *Waybill {
	return &Waybill{
		Document:    entity.NewDocument(),
		CustomerID:  customerID,
		Holder:      holder,
		TotalAmount: types.ZeroMoney(),
		Lines:       make([]WaybillLine, 0),
	}
}

// AddLine appends a shipped item and recalculates totals.
func (w *Waybill) AddLine(itemID id.ID, quantity types.Quantity, unitPrice types.Money) *WaybillLine {
	amount := unitPrice.Mul(quantity.Decimal())
	w.Lines = append(w.Lines, WaybillLine{
		LineID:    id.New(),
		LineNo:    len(w.Lines) + 1,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    amount,
	})
	w.TotalAmount = w.TotalAmount.Add(amount)
	return &w.Lines[len(w.Lines)-1]
}

// OrderIDs returns the distinct sales orders this waybill fulfills.
func (w *Waybill) OrderIDs() []id.ID {
	seen := make(map[id.ID]bool)
	var out []id.ID
	for _, line := range w.Lines {
		if line.SalesOrderID != nil && !seen[*line.SalesOrderID] {
			seen[*line.SalesOrderID] = true
			out = append(out, *line.SalesOrderID)
		}
	}
	return out
}

// Validate implements entity.Validatable.
func (w *Waybill) Validate(ctx context.Context) error {
	if err := w.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(w.CustomerID) {
		return apperror.NewValidation("customer is required")
	}
	if err := w.Holder.Validate(); err != nil {
		return err
	}
	if len(w.Lines) == 0 {
		return apperror.NewValidation("waybill must have at least one line")
	}
	for _, line := range w.Lines {
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
		if line.SalesOrderLineID != nil && line.SalesOrderID == nil {
			return apperror.NewValidation("order line given without order").
				WithDetail("line_no", line.LineNo)
		}
	}
	return nil
}
