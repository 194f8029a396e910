package dto

import (
	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/ledger"
)

// StockQuery identifies a holder for current stock and batch queries.
type StockQuery struct {
	HolderType string `form:"holderType" binding:"required"`
	HolderID   string `form:"holderId" binding:"required"`
}

// Holder resolves the holder from query parameters.
func (q StockQuery) Holder() (entity.Holder, error) {
	return HolderRequest{Type: q.HolderType, ID: q.HolderID}.ToEntity()
}

// BatchListQuery for listing cost layers.
type BatchListQuery struct {
	StockQuery
	ExcludeEmpty bool `form:"excludeEmpty"`
	Limit        int  `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset       int  `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts to the ledger batch filter.
func (q BatchListQuery) ToFilter() ledger.BatchFilter {
	return ledger.BatchFilter{
		ExcludeEmpty: q.ExcludeEmpty,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
}

// MovementListQuery for the movement log.
type MovementListQuery struct {
	HolderType string `form:"holderType"`
	HolderID   string `form:"holderId"`
	Kind       string `form:"kind"`
	DateFrom   string `form:"dateFrom"`
	DateTo     string `form:"dateTo"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts to the ledger movement filter.
func (q MovementListQuery) ToFilter() (ledger.MovementFilter, error) {
	filter := ledger.MovementFilter{
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	if q.HolderType != "" || q.HolderID != "" {
		holder, err := HolderRequest{Type: q.HolderType, ID: q.HolderID}.ToEntity()
		if err != nil {
			return filter, err
		}
		filter.Holder = &holder
	}
	if q.Kind != "" {
		kind := entity.MovementKind(q.Kind)
		if !kind.Valid() {
			return filter, apperror.NewValidation("unknown movement kind").
				WithDetail("kind", q.Kind)
		}
		filter.Kind = &kind
	}

	var err error
	if filter.FromDate, err = parseDate("dateFrom", q.DateFrom); err != nil {
		return filter, err
	}
	if filter.ToDate, err = parseDate("dateTo", q.DateTo); err != nil {
		return filter, err
	}
	return filter, nil
}

// TurnoverQuery for the turnover report. The period is mandatory.
type TurnoverQuery struct {
	ItemID     string `form:"itemId"`
	HolderType string `form:"holderType"`
	HolderID   string `form:"holderId"`
	DateFrom   string `form:"dateFrom" binding:"required"`
	DateTo     string `form:"dateTo" binding:"required"`
}

// ToFilter converts to the ledger turnover filter.
func (q TurnoverQuery) ToFilter() (ledger.TurnoverFilter, error) {
	var filter ledger.TurnoverFilter

	if q.ItemID != "" {
		itemID, err := ParseID("itemId", q.ItemID)
		if err != nil {
			return filter, err
		}
		filter.ItemID = &itemID
	}
	if q.HolderType != "" || q.HolderID != "" {
		holder, err := HolderRequest{Type: q.HolderType, ID: q.HolderID}.ToEntity()
		if err != nil {
			return filter, err
		}
		filter.Holder = &holder
	}

	from, err := parseDate("dateFrom", q.DateFrom)
	if err != nil {
		return filter, err
	}
	to, err := parseDate("dateTo", q.DateTo)
	if err != nil {
		return filter, err
	}
	filter.FromDate = *from
	filter.ToDate = *to
	return filter, nil
}

// CurrentStockResponse reports on-hand quantity for item+holder.
type CurrentStockResponse struct {
	ItemID   id.ID          `json:"itemId"`
	Holder   entity.Holder  `json:"holder"`
	Quantity types.Quantity `json:"quantity"`
}
