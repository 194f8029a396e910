package waybill

import (
	"context"

	"kardex/internal/core/id"
	"kardex/internal/domain/documents"
)

// Repository defines operations for waybill documents.
type Repository interface {
	Create(ctx context.Context, doc *Waybill) error
	GetByID(ctx context.Context, docID id.ID) (*Waybill, error)
	GetByNumber(ctx context.Context, number string) (*Waybill, error)

	GetLines(ctx context.Context, docID id.ID) ([]WaybillLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []WaybillLine) error

	List(ctx context.Context, filter ListFilter) (documents.ListResult[*Waybill], error)
}

// ListFilter for filtering waybills.
type ListFilter struct {
	documents.ListFilter

	CustomerID *id.ID
}
