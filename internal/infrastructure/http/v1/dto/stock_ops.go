package dto

import (
	"time"

	"kardex/internal/core/entity"
	"kardex/internal/core/types"
	"kardex/internal/domain/documents/stock_adjustment"
	"kardex/internal/domain/documents/stock_audit"
	"kardex/internal/domain/documents/stock_transfer"
)

// --- Stock adjustment ---

// CreateStockAdjustmentRequest for creating adjustments.
type CreateStockAdjustmentRequest struct {
	Date    *time.Time    `json:"date"`
	Holder  HolderRequest `json:"holder" binding:"required"`
	Reason  string        `json:"reason" binding:"required"`
	Comment string        `json:"comment"`

	Lines []StockAdjustmentLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// StockAdjustmentLineRequest is one signed correction.
type StockAdjustmentLineRequest struct {
	ItemID      string         `json:"itemId" binding:"required"`
	SignedDelta types.Quantity `json:"signedDelta" binding:"required"`
	UnitCost    *types.Money   `json:"unitCost"`
}

// ToEntity builds the domain document.
func (r CreateStockAdjustmentRequest) ToEntity() (*stock_adjustment.StockAdjustment, error) {
	holder, err := r.Holder.ToEntity()
	if err != nil {
		return nil, err
	}

	doc := stock_adjustment.NewStockAdjustment(holder, r.Reason)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment

	for _, lr := range r.Lines {
		itemID, err := ParseID("itemId", lr.ItemID)
		if err != nil {
			return nil, err
		}
		doc.AddLine(itemID, lr.SignedDelta, lr.UnitCost)
	}
	return doc, nil
}

// --- Stock audit ---

// CreateStockAuditRequest for creating stock audits (counts).
type CreateStockAuditRequest struct {
	Date    *time.Time    `json:"date"`
	Holder  HolderRequest `json:"holder" binding:"required"`
	Comment string        `json:"comment"`

	Lines []StockAuditLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// StockAuditLineRequest is one counted item. A zero count is a valid
// finding, so the quantity carries no required tag.
type StockAuditLineRequest struct {
	ItemID          string         `json:"itemId" binding:"required"`
	CountedQuantity types.Quantity `json:"countedQuantity"`
	UnitCost        *types.Money   `json:"unitCost"`
}

// ToEntity builds the domain document.
func (r CreateStockAuditRequest) ToEntity() (*stock_audit.StockAudit, error) {
	holder, err := r.Holder.ToEntity()
	if err != nil {
		return nil, err
	}

	doc := stock_audit.NewStockAudit(holder)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment

	for _, lr := range r.Lines {
		itemID, err := ParseID("itemId", lr.ItemID)
		if err != nil {
			return nil, err
		}
		doc.AddLine(itemID, lr.CountedQuantity, lr.UnitCost)
	}
	return doc, nil
}

// --- Stock transfer ---

// CreateStockTransferRequest for creating transfers.
type CreateStockTransferRequest struct {
	Date    *time.Time    `json:"date"`
	From    HolderRequest `json:"from" binding:"required"`
	To      HolderRequest `json:"to" binding:"required"`
	Comment string        `json:"comment"`

	Lines []StockTransferLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// StockTransferLineRequest is one transferred item.
type StockTransferLineRequest struct {
	ItemID   string         `json:"itemId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`
}

// ToEntity builds the domain document.
func (r CreateStockTransferRequest) ToEntity() (*stock_transfer.StockTransfer, error) {
	from, err := r.From.ToEntity()
	if err != nil {
		return nil, err
	}
	to, err := r.To.ToEntity()
	if err != nil {
		return nil, err
	}

	doc := stock_transfer.NewStockTransfer(from, to)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment

	for _, lr := range r.Lines {
		itemID, err := ParseID("itemId", lr.ItemID)
		if err != nil {
			return nil, err
		}
		doc.AddLine(itemID, lr.Quantity)
	}
	return doc, nil
}

// --- Holder-scoped list query ---

// HolderListQuery lists documents filtered by a single holder.
type HolderListQuery struct {
	ListQuery
	HolderType string `form:"holderType"`
	HolderID   string `form:"holderId"`
}

// Holder resolves the optional holder filter.
func (q HolderListQuery) Holder() (*entity.Holder, error) {
	if q.HolderType == "" && q.HolderID == "" {
		return nil, nil
	}
	holder, err := HolderRequest{Type: q.HolderType, ID: q.HolderID}.ToEntity()
	if err != nil {
		return nil, err
	}
	return &holder, nil
}

// TransferListQuery lists transfers filtered by either side.
type TransferListQuery struct {
	ListQuery
	FromType string `form:"fromType"`
	FromID   string `form:"fromId"`
	ToType   string `form:"toType"`
	ToID     string `form:"toId"`
}

// ToFilter converts to the repository filter.
func (q TransferListQuery) ToFilter() (stock_transfer.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return stock_transfer.ListFilter{}, err
	}
	filter := stock_transfer.ListFilter{ListFilter: base}
	if q.FromType != "" || q.FromID != "" {
		from, err := HolderRequest{Type: q.FromType, ID: q.FromID}.ToEntity()
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if q.ToType != "" || q.ToID != "" {
		to, err := HolderRequest{Type: q.ToType, ID: q.ToID}.ToEntity()
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	return filter, nil
}
