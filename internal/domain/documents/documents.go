// Package documents provides shared types for document repositories
// and services.
package documents

import (
	"time"

	"kardex/internal/core/id"
)

// ListFilter contains common filtering options for document lists.
type ListFilter struct {
	// Search matches the document number
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// Business date range
	DateFrom *time.Time
	DateTo   *time.Time

	// OrderBy specifies sorting (e.g., "date", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-date",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
