package stock_transfer

import (
	"context"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/domain/documents"
)

// Repository defines operations for stock transfer documents.
type Repository interface {
	Create(ctx context.Context, doc *StockTransfer) error
	GetByID(ctx context.Context, docID id.ID) (*StockTransfer, error)

	GetLines(ctx context.Context, docID id.ID) ([]StockTransferLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []StockTransferLine) error

	List(ctx context.Context, filter ListFilter) (documents.ListResult[*StockTransfer], error)
}

// ListFilter for filtering transfers.
type ListFilter struct {
	documents.ListFilter

	From *entity.Holder
	To   *entity.Holder
}
