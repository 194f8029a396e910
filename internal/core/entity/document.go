package entity

import (
	"context"
	"time"

	"kardex/internal/core/apperror"
)

// Document is the base type for business transactions: goods receipts,
// waybills, adjustments, audits, transfers, orders, invoices.
type Document struct {
	BaseDocument

	// Number is the document number (generated by the numbering service,
	// unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// PurchaseOrderStatus is the fulfillment status of a purchase order,
// derived from linked goods-receipt quantities.
type PurchaseOrderStatus string

const (
	PurchaseOrderPending           PurchaseOrderStatus = "pending"
	PurchaseOrderPartiallyReceived PurchaseOrderStatus = "partially_received"
	PurchaseOrderReceived          PurchaseOrderStatus = "received"
)

// SalesOrderStatus is the fulfillment status of a sales order, derived
// from linked waybill quantities.
type SalesOrderStatus string

const (
	SalesOrderPending   SalesOrderStatus = "pending"
	SalesOrderProcessed SalesOrderStatus = "processed"
	SalesOrderCompleted SalesOrderStatus = "completed"
)

// PaymentStatus is the payment status of an invoice, updated
// incrementally as payments arrive.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
)
