// Package stock_adjustment provides the StockAdjustment document.
package stock_adjustment

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// StockAdjustment records signed quantity corrections outside a full
// stock audit: damage write-offs, found goods, data-entry fixes.
type StockAdjustment struct {
	entity.Document

	// Holder whose stock is corrected
	Holder entity.Holder `db:"-" json:"holder"`

	// Reason is a free-form explanation required for the paper trail
	Reason string `db:"reason" json:"reason"`

	Lines []StockAdjustmentLine `db:"-" json:"lines"`
}

// StockAdjustmentLine is one signed correction. A positive delta adds
// stock as a new batch; a negative delta drains batches oldest first.
type StockAdjustmentLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// SignedDelta in base units; must not be zero
	SignedDelta types.Quantity `db:"signed_delta" json:"signedDelta"`

	// UnitCost prices the new batch on a positive delta. Optional: when
	// nil, the ledger falls back to the last known batch cost.
	UnitCost *types.Money `db:"unit_cost" json:"unitCost,omitempty"`
}

// NewStockAdjustment creates a new adjustment document.
func NewStockAdjustment(holder entity.Holder, reason string) *StockAdjustment {
	return &StockAdjustment{
		Document: entity.NewDocument(),
		Holder:   holder,
		Reason:   reason,
		Lines:    make([]StockAdjustmentLine, 0),
	}
}

// AddLine appends a correction line.
func (a *StockAdjustment) AddLine(itemID id.ID, signedDelta types.Quantity, unitCost *types.Money) {
	a.Lines = append(a.Lines, StockAdjustmentLine{
		LineID:      id.New(),
		LineNo:      len(a.Lines) + 1,
		ItemID:      itemID,
		SignedDelta: signedDelta,
		UnitCost:    unitCost,
	})
}

// Validate implements entity.Validatable.
func (a *StockAdjustment) Validate(ctx context.Context) error {
	if err := a.Document.Validate(ctx); err != nil {
		return err
	}
	if err := a.Holder.Validate(); err != nil {
		return err
	}
	if a.Reason == "" {
		return apperror.NewValidation("adjustment reason is required")
	}
	if len(a.Lines) == 0 {
		return apperror.NewValidation("adjustment must have at least one line")
	}
	for _, line := range a.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("line item is required").
				WithDetail("line_no", line.LineNo)
		}
		if line.SignedDelta.IsZero() {
			return apperror.NewInvalidQuantity("line delta must not be zero").
				WithDetail("line_no", line.LineNo)
		}
		if line.UnitCost != nil && line.UnitCost.IsNegative() {
			return apperror.NewValidation("line cost must not be negative").
				WithDetail("line_no", line.LineNo)
		}
	}
	return nil
}
