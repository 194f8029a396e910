package dto

import (
	"time"

	"kardex/internal/core/entity"
	"kardex/internal/core/types"
	"kardex/internal/domain/documents/purchase_order"
	"kardex/internal/domain/documents/sales_order"
)

// --- Purchase order ---

// CreatePurchaseOrderRequest for creating purchase orders.
type CreatePurchaseOrderRequest struct {
	Date       *time.Time    `json:"date"`
	SupplierID string        `json:"supplierId" binding:"required"`
	Holder     HolderRequest `json:"holder" binding:"required"`
	Comment    string        `json:"comment"`

	Lines []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// OrderLineRequest is one ordered item, shared by both order kinds.
type OrderLineRequest struct {
	ItemID    string         `json:"itemId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// ToEntity builds the domain document.
func (r CreatePurchaseOrderRequest) ToEntity() (*purchase_order.PurchaseOrder, error) {
	supplierID, err := ParseID("supplierId", r.SupplierID)
	if err != nil {
		return nil, err
	}
	holder, err := r.Holder.ToEntity()
	if err != nil {
		return nil, err
	}

	doc := purchase_order.NewPurchaseOrder(supplierID, holder)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment

	for _, lr := range r.Lines {
		itemID, err := ParseID("itemId", lr.ItemID)
		if err != nil {
			return nil, err
		}
		doc.AddLine(itemID, lr.Quantity, lr.UnitPrice)
	}
	return doc, nil
}

// PurchaseOrderListQuery for listing purchase orders.
type PurchaseOrderListQuery struct {
	ListQuery
	SupplierID string `form:"supplierId"`
	Status     string `form:"status"`
}

// ToFilter converts to the repository filter.
func (q PurchaseOrderListQuery) ToFilter() (purchase_order.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return purchase_order.ListFilter{}, err
	}
	filter := purchase_order.ListFilter{ListFilter: base}
	if filter.SupplierID, err = ParseOptionalID("supplierId", &q.SupplierID); err != nil {
		return filter, err
	}
	if q.Status != "" {
		status := entity.PurchaseOrderStatus(q.Status)
		filter.Status = &status
	}
	return filter, nil
}

// --- Sales order ---

// CreateSalesOrderRequest for creating sales orders.
type CreateSalesOrderRequest struct {
	Date       *time.Time    `json:"date"`
	CustomerID string        `json:"customerId" binding:"required"`
	Holder     HolderRequest `json:"holder" binding:"required"`
	Comment    string        `json:"comment"`

	Lines []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity builds the domain document.
func (r CreateSalesOrderRequest) ToEntity() (*sales_order.SalesOrder, error) {
	customerID, err := ParseID("customerId", r.CustomerID)
	if err != nil {
		return nil, err
	}
	holder, err := r.Holder.ToEntity()
	if err != nil {
		return nil, err
	}

	doc := sales_order.NewSalesOrder(customerID, holder)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment

	for _, lr := range r.Lines {
		itemID, err := ParseID("itemId", lr.ItemID)
		if err != nil {
			return nil, err
		}
		doc.AddLine(itemID, lr.Quantity, lr.UnitPrice)
	}
	return doc, nil
}

// SalesOrderListQuery for listing sales orders.
type SalesOrderListQuery struct {
	ListQuery
	CustomerID string `form:"customerId"`
	Status     string `form:"status"`
}

// ToFilter converts to the repository filter.
func (q SalesOrderListQuery) ToFilter() (sales_order.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return sales_order.ListFilter{}, err
	}
	filter := sales_order.ListFilter{ListFilter: base}
	if filter.CustomerID, err = ParseOptionalID("customerId", &q.CustomerID); err != nil {
		return filter, err
	}
	if q.Status != "" {
		status := entity.SalesOrderStatus(q.Status)
		filter.Status = &status
	}
	return filter, nil
}
