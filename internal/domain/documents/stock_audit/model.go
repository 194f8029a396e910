// Package stock_audit provides the StockAudit document (physical count).
package stock_audit

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// StockAudit records a physical count at one holder. Each line compares
// the counted quantity with the book quantity at creation time; the
// difference is posted to the ledger as a signed adjustment.
type StockAudit struct {
	entity.Document

	// Holder being counted
	Holder entity.Holder `db:"-" json:"holder"`

	Lines []StockAuditLine `db:"-" json:"lines"`
}

// StockAuditLine is one counted item. BookQuantity is captured by the
// service inside the creation transaction, under the same locks the
// resulting adjustment takes, so count and correction see one state.
type StockAuditLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// CountedQuantity as found on the shelf, in base units
	CountedQuantity types.Quantity `db:"counted_quantity" json:"countedQuantity"`

	// BookQuantity per the ledger at audit time (filled by the service)
	BookQuantity types.Quantity `db:"book_quantity" json:"bookQuantity"`

	// UnitCost prices surplus stock. Optional: when nil, the ledger
	// falls back to the last known batch cost.
	UnitCost *types.Money `db:"unit_cost" json:"unitCost,omitempty"`
}

// SignedDelta is the correction this line requires.
func (l *StockAuditLine) SignedDelta() types.Quantity {
	return l.CountedQuantity - l.BookQuantity
}

// NewStockAudit creates a new stock audit document.
func NewStockAudit(holder entity.Holder) *StockAudit {
	return &StockAudit{
		Document: entity.NewDocument(),
		Holder:   holder,
		Lines:    make([]StockAuditLine, 0),
	}
}

// AddLine appends a counted item.
func (a *StockAudit) AddLine(itemID id.ID, counted types.Quantity, unitCost *types.Money) {
	a.Lines = append(a.Lines, StockAuditLine{
		LineID:          id.New(),
		LineNo:          len(a.Lines) + 1,
		ItemID:          itemID,
		CountedQuantity: counted,
		UnitCost:        unitCost,
	})
}

// Validate implements entity.Validatable.
func (a *StockAudit) Validate(ctx context.Context) error {
	if err := a.Document.Validate(ctx); err != nil {
		return err
	}
	if err := a.Holder.Validate(); err != nil {
		return err
	}
	if len(a.Lines) == 0 {
		return apperror.NewValidation("audit must have at least one line")
	}
	seen := make(map[id.ID]bool)
	for _, line := range a.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("line item is required").
				WithDetail("line_no", line.LineNo)
		}
		if line.CountedQuantity.IsNegative() {
			return apperror.NewInvalidQuantity("counted quantity must not be negative").
				WithDetail("line_no", line.LineNo)
		}
		if seen[line.ItemID] {
			return apperror.NewValidation("item counted twice").
				WithDetail("line_no", line.LineNo).
				WithDetail("item_id", line.ItemID)
		}
		seen[line.ItemID] = true
		if line.UnitCost != nil && line.UnitCost.IsNegative() {
			return apperror.NewValidation("line cost must not be negative").
				WithDetail("line_no", line.LineNo)
		}
	}
	return nil
}
