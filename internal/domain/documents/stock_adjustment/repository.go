package stock_adjustment

import (
	"context"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/domain/documents"
)

// Repository defines operations for stock adjustment documents.
type Repository interface {
	Create(ctx context.Context, doc *StockAdjustment) error
	GetByID(ctx context.Context, docID id.ID) (*StockAdjustment, error)

	GetLines(ctx context.Context, docID id.ID) ([]StockAdjustmentLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []StockAdjustmentLine) error

	List(ctx context.Context, filter ListFilter) (documents.ListResult[*StockAdjustment], error)
}

// ListFilter for filtering adjustments.
type ListFilter struct {
	documents.ListFilter

	Holder *entity.Holder
}
