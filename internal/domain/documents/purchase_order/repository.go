package purchase_order

import (
	"context"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/domain/documents"
)

// Repository defines operations for purchase order documents.
type Repository interface {
	Create(ctx context.Context, doc *PurchaseOrder) error
	GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error)
	GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error)

	GetLines(ctx context.Context, docID id.ID) ([]PurchaseOrderLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []PurchaseOrderLine) error

	// SetStatus persists the derived fulfillment status.
	SetStatus(ctx context.Context, docID id.ID, status entity.PurchaseOrderStatus) error

	List(ctx context.Context, filter ListFilter) (documents.ListResult[*PurchaseOrder], error)
}

// ListFilter for filtering purchase orders.
type ListFilter struct {
	documents.ListFilter

	SupplierID *id.ID
	Status     *entity.PurchaseOrderStatus
}
