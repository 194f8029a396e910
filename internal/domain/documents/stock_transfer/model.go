// Package stock_transfer provides the StockTransfer document.
package stock_transfer

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// StockTransfer moves goods between two holders. Each line issues from
// the source and receives at the destination at the weighted average
// cost of the issued batches, atomically.
type StockTransfer struct {
	entity.Document

	// From is the holder giving up the stock
	From entity.Holder `db:"-" json:"from"`

	// To is the holder receiving it
	To entity.Holder `db:"-" json:"to"`

	Lines []StockTransferLine `db:"-" json:"lines"`
}

// StockTransferLine is one transferred item.
type StockTransferLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// Quantity moved, in base units
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// NewStockTransfer creates a new transfer document.
func NewStockTransfer(from, to entity.Holder) *StockTransfer {
	return &StockTransfer{
		Document: entity.NewDocument(),
		From:     from,
		To:       to,
		Lines:    make([]StockTransferLine, 0),
	}
}

// AddLine appends a transferred item.
func (t *StockTransfer) AddLine(itemID id.ID, quantity types.Quantity) {
	t.Lines = append(t.Lines, StockTransferLine{
		LineID:   id.New(),
		LineNo:   len(t.Lines) + 1,
		ItemID:   itemID,
		Quantity: quantity,
	})
}

// Validate implements entity.Validatable.
func (t *StockTransfer) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}
	if err := t.From.Validate(); err != nil {
		return err
	}
	if err := t.To.Validate(); err != nil {
		return err
	}
	if t.From == t.To {
		return apperror.NewValidation("transfer source and destination must differ")
	}
	if len(t.Lines) == 0 {
		return apperror.NewValidation("transfer must have at least one line")
	}
	for _, line := range t.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("line item is required").
				WithDetail("line_no", line.LineNo)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity("line quantity must be positive").
				WithDetail("line_no", line.LineNo)
		}
	}
	return nil
}
