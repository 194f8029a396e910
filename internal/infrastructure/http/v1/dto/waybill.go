package dto

import (
	"time"

	"kardex/internal/core/types"
	"kardex/internal/domain/documents/waybill"
)

// CreateWaybillRequest for creating waybills.
type CreateWaybillRequest struct {
	Date       *time.Time    `json:"date"`
	CustomerID string        `json:"customerId" binding:"required"`
	Holder     HolderRequest `json:"holder" binding:"required"`
	Comment    string        `json:"comment"`

	Lines []WaybillLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// WaybillLineRequest is one shipped item.
type WaybillLineRequest struct {
	ItemID    string         `json:"itemId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`

	SalesOrderID     *string `json:"salesOrderId"`
	SalesOrderLineID *string `json:"salesOrderLineId"`
}

// ToEntity builds the domain document.
func (r CreateWaybillRequest) ToEntity() (*waybill.Waybill, error) {
	customerID, err := ParseID("customerId", r.CustomerID)
	if err != nil {
		return nil, err
	}
	holder, err := r.Holder.ToEntity()
	if err != nil {
		return nil, err
	}

	doc := waybill.NewWaybill(customerID, holder)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment

	for _, lr := range r.Lines {
		itemID, err := ParseID("itemId", lr.ItemID)
		if err != nil {
			return nil, err
		}
		line := doc.AddLine(itemID, lr.Quantity, lr.UnitPrice)
		if line.SalesOrderID, err = ParseOptionalID("salesOrderId", lr.SalesOrderID); err != nil {
			return nil, err
		}
		if line.SalesOrderLineID, err = ParseOptionalID("salesOrderLineId", lr.SalesOrderLineID); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// WaybillListQuery for listing waybills.
type WaybillListQuery struct {
	ListQuery
	CustomerID string `form:"customerId"`
}

// ToFilter converts to the repository filter.
func (q WaybillListQuery) ToFilter() (waybill.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return waybill.ListFilter{}, err
	}
	filter := waybill.ListFilter{ListFilter: base}
	if filter.CustomerID, err = ParseOptionalID("customerId", &q.CustomerID); err != nil {
		return filter, err
	}
	return filter, nil
}
