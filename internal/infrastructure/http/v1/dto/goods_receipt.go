package dto

import (
	"time"

	"kardex/internal/core/types"
	"kardex/internal/domain/documents/goods_receipt"
)

// CreateGoodsReceiptRequest for creating goods receipts.
type CreateGoodsReceiptRequest struct {
	Date              *time.Time    `json:"date"`
	SupplierID        string        `json:"supplierId" binding:"required"`
	Holder            HolderRequest `json:"holder" binding:"required"`
	SupplierDocNumber string        `json:"supplierDocNumber"`
	SupplierDocDate   *time.Time    `json:"supplierDocDate"`
	Comment           string        `json:"comment"`

	Lines []GoodsReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// GoodsReceiptLineRequest is one received item.
type GoodsReceiptLineRequest struct {
	ItemID   string         `json:"itemId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`
	UnitCost types.Money    `json:"unitCost"`

	PurchaseOrderID     *string `json:"purchaseOrderId"`
	PurchaseOrderLineID *string `json:"purchaseOrderLineId"`
}

// ToEntity builds the domain document. Totals are recalculated from
// lines; client-supplied amounts are never trusted.
func (r CreateGoodsReceiptRequest) ToEntity() (*goods_receipt.GoodsReceipt, error) {
	supplierID, err := ParseID("supplierId", r.SupplierID)
	if err != nil {
		return nil, err
	}
	holder, err := r.Holder.ToEntity()
	if err != nil {
		return nil, err
	}

	doc := goods_receipt.NewGoodsReceipt(supplierID, holder)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.SupplierDocNumber = r.SupplierDocNumber
	doc.SupplierDocDate = r.SupplierDocDate
	doc.Comment = r.Comment

	for _, lr := range r.Lines {
		itemID, err := ParseID("itemId", lr.ItemID)
		if err != nil {
			return nil, err
		}
		line := doc.AddLine(itemID, lr.Quantity, lr.UnitCost)
		if line.PurchaseOrderID, err = ParseOptionalID("purchaseOrderId", lr.PurchaseOrderID); err != nil {
			return nil, err
		}
		if line.PurchaseOrderLineID, err = ParseOptionalID("purchaseOrderLineId", lr.PurchaseOrderLineID); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// GoodsReceiptListQuery for listing goods receipts.
type GoodsReceiptListQuery struct {
	ListQuery
	SupplierID string `form:"supplierId"`
}

// ToFilter converts to the repository filter.
func (q GoodsReceiptListQuery) ToFilter() (goods_receipt.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return goods_receipt.ListFilter{}, err
	}
	filter := goods_receipt.ListFilter{ListFilter: base}
	if filter.SupplierID, err = ParseOptionalID("supplierId", &q.SupplierID); err != nil {
		return filter, err
	}
	return filter, nil
}
