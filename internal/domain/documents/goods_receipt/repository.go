package goods_receipt

import (
	"context"

	"kardex/internal/core/id"
	"kardex/internal/domain/documents"
)

// Repository defines operations for goods receipt documents.
type Repository interface {
	Create(ctx context.Context, doc *GoodsReceipt) error
	GetByID(ctx context.Context, docID id.ID) (*GoodsReceipt, error)
	GetByNumber(ctx context.Context, number string) (*GoodsReceipt, error)

	GetLines(ctx context.Context, docID id.ID) ([]GoodsReceiptLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []GoodsReceiptLine) error

	List(ctx context.Context, filter ListFilter) (documents.ListResult[*GoodsReceipt], error)
}

// ListFilter for filtering goods receipts.
type ListFilter struct {
	documents.ListFilter

	SupplierID *id.ID
}
