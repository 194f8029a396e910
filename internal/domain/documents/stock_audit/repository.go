package stock_audit

import (
	"context"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/domain/documents"
)

// Repository defines operations for stock audit documents.
type Repository interface {
	Create(ctx context.Context, doc *StockAudit) error
	GetByID(ctx context.Context, docID id.ID) (*StockAudit, error)

	GetLines(ctx context.Context, docID id.ID) ([]StockAuditLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []StockAuditLine) error

	List(ctx context.Context, filter ListFilter) (documents.ListResult[*StockAudit], error)
}

// ListFilter for filtering audits.
type ListFilter struct {
	documents.ListFilter

	Holder *entity.Holder
}
