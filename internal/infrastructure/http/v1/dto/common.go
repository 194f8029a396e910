// Package dto provides request objects for the HTTP API. Responses
// serialize domain entities directly through their json tags; only
// inbound payloads need a separate shape here.
package dto

import (
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/domain/documents"
)

// --- Holder ---

// HolderRequest identifies a stock holder in a request payload.
type HolderRequest struct {
	Type string `json:"type" binding:"required"`
	ID   string `json:"id" binding:"required"`
}

// ToEntity converts to entity.Holder with validation.
func (h HolderRequest) ToEntity() (entity.Holder, error) {
	holderID, err := id.Parse(h.ID)
	if err != nil {
		return entity.Holder{}, apperror.NewValidation("invalid holder id").
			WithDetail("id", h.ID)
	}
	holder := entity.Holder{Type: entity.HolderType(h.Type), ID: holderID}
	if err := holder.Validate(); err != nil {
		return entity.Holder{}, err
	}
	return holder, nil
}

// ParseID parses a path or payload id with a consistent error.
func ParseID(field, value string) (id.ID, error) {
	parsed, err := id.Parse(value)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid "+field).
			WithDetail(field, value)
	}
	return parsed, nil
}

// ParseOptionalID parses an optional id, returning nil for empty input.
func ParseOptionalID(field string, value *string) (*id.ID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := ParseID(field, *value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// --- List query ---

// ListQuery contains common list parameters for document endpoints.
type ListQuery struct {
	Search   string `form:"search"`
	DateFrom string `form:"dateFrom"`
	DateTo   string `form:"dateTo"`
	OrderBy  string `form:"orderBy"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts query parameters to a document list filter.
func (q ListQuery) ToFilter() (documents.ListFilter, error) {
	filter := documents.DefaultListFilter()
	filter.Search = q.Search
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	filter.Offset = q.Offset

	var err error
	if filter.DateFrom, err = parseDate("dateFrom", q.DateFrom); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseDate("dateTo", q.DateTo); err != nil {
		return filter, err
	}
	return filter, nil
}

// parseDate accepts RFC3339 timestamps and plain dates.
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	return nil, apperror.NewValidation("invalid date").
		WithDetail(field, value)
}

// --- Responses ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates an ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
