// Package fulfillment derives document statuses from child quantities.
// One resolver serves both order kinds so the purchase and sales
// algorithms cannot drift apart.
package fulfillment

import (
	"kardex/internal/core/entity"
	"kardex/internal/core/types"
)

// LineProgress pairs a line's required quantity with the quantity
// fulfilled against it so far, in base units.
type LineProgress struct {
	Required  types.Quantity `json:"required"`
	Fulfilled types.Quantity `json:"fulfilled"`
}

// Progress is the derived fulfillment level of a document.
type Progress int

const (
	// ProgressNone means nothing has been fulfilled yet.
	ProgressNone Progress = iota
	// ProgressPartial means some, but not all, lines are covered.
	ProgressPartial
	// ProgressComplete means every line is fully covered.
	ProgressComplete
)

// Resolve computes the fulfillment level from line progress. A line is
// covered when fulfilled >= required; over-fulfillment does not change
// the outcome. A document without lines counts as not started.
func Resolve(lines []LineProgress) Progress {
	if len(lines) == 0 {
		return ProgressNone
	}

	anyFulfilled := false
	allCovered := true

	for _, l := range lines {
		if l.Fulfilled.IsPositive() {
			anyFulfilled = true
		}
		if l.Fulfilled < l.Required {
			allCovered = false
		}
	}

	switch {
	case allCovered:
		return ProgressComplete
	case anyFulfilled:
		return ProgressPartial
	default:
		return ProgressNone
	}
}

// PurchaseOrderStatus maps a progress level to purchase-order wording.
func PurchaseOrderStatus(p Progress) entity.PurchaseOrderStatus {
	switch p {
	case ProgressComplete:
		return entity.PurchaseOrderReceived
	case ProgressPartial:
		return entity.PurchaseOrderPartiallyReceived
	default:
		return entity.PurchaseOrderPending
	}
}

// SalesOrderStatus maps a progress level to sales-order wording.
func SalesOrderStatus(p Progress) entity.SalesOrderStatus {
	switch p {
	case ProgressComplete:
		return entity.SalesOrderCompleted
	case ProgressPartial:
		return entity.SalesOrderProcessed
	default:
		return entity.SalesOrderPending
	}
}
