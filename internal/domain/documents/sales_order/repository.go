package sales_order

import (
	"context"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/domain/documents"
)

// Repository defines operations for sales order documents.
type Repository interface {
	Create(ctx context.Context, doc *SalesOrder) error
	GetByID(ctx context.Context, docID id.ID) (*SalesOrder, error)
	GetByNumber(ctx context.Context, number string) (*SalesOrder, error)

	GetLines(ctx context.Context, docID id.ID) ([]SalesOrderLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []SalesOrderLine) error

	// SetStatus persists the derived fulfillment status.
	SetStatus(ctx context.Context, docID id.ID, status entity.SalesOrderStatus) error

	List(ctx context.Context, filter ListFilter) (documents.ListResult[*SalesOrder], error)
}

// ListFilter for filtering sales orders.
type ListFilter struct {
	documents.ListFilter

	CustomerID *id.ID
	Status     *entity.SalesOrderStatus
}
