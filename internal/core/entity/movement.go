package entity

import (
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// MovementKind defines the direction and origin of a stock movement.
type MovementKind string

const (
	// MovementKindIn is inbound stock (goods receipt).
	MovementKindIn MovementKind = "in"
	// MovementKindOut is outbound stock (waybill / shipment).
	MovementKindOut MovementKind = "out"
	// MovementKindAdjustmentIncrease raises stock to a counted value.
	MovementKindAdjustmentIncrease MovementKind = "adjustment_increase"
	// MovementKindAdjustmentDecrease lowers stock to a counted value.
	MovementKindAdjustmentDecrease MovementKind = "adjustment_decrease"
	// MovementKindTransfer marks both sides of an inter-holder transfer.
	MovementKindTransfer MovementKind = "transfer"
)

// Valid reports whether k is a known movement kind.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementKindIn, MovementKindOut,
		MovementKindAdjustmentIncrease, MovementKindAdjustmentDecrease,
		MovementKindTransfer:
		return true
	}
	return false
}

// ReferenceType enumerates the document-line kinds that can cause a
// movement. Closed set; the ledger rejects anything else.
type ReferenceType string

const (
	ReferenceGoodsReceiptLine    ReferenceType = "goods_receipt_line"
	ReferenceWaybillLine         ReferenceType = "waybill_line"
	ReferenceAdjustmentLine      ReferenceType = "stock_adjustment_line"
	ReferenceAuditLine           ReferenceType = "stock_audit_line"
	ReferenceTransferLine        ReferenceType = "stock_transfer_line"
)

// Valid reports whether t is a known reference type.
func (t ReferenceType) Valid() bool {
	switch t {
	case ReferenceGoodsReceiptLine, ReferenceWaybillLine,
		ReferenceAdjustmentLine, ReferenceAuditLine, ReferenceTransferLine:
		return true
	}
	return false
}

// Reference names the document line that caused a movement.
type Reference struct {
	Type ReferenceType `db:"reference_type" json:"referenceType"`
	ID   id.ID         `db:"reference_id" json:"referenceId"`
}

// Validate checks the reference names a known line type and a real id.
func (r Reference) Validate() error {
	if !r.Type.Valid() {
		return apperror.NewValidation("unknown movement reference type").
			WithDetail("referenceType", string(r.Type))
	}
	if id.IsNil(r.ID) {
		return apperror.NewValidation("movement reference id is required")
	}
	return nil
}

// StockMovement is one immutable ledger row recording one quantity
// change to one batch. Movements are append-only: never updated, never
// deleted. MovementQuantity is a magnitude; direction follows Kind.
// Invariant: AfterQuantity == PreviousQuantity + SignedQuantity().
type StockMovement struct {
	ID               id.ID          `db:"id" json:"id"`
	BatchID          id.ID          `db:"batch_id" json:"batchId"`
	Holder           Holder         `db:"-" json:"holder"`
	Kind             MovementKind   `db:"kind" json:"kind"`
	PreviousQuantity types.Quantity `db:"previous_quantity" json:"previousQuantity"`
	MovementQuantity types.Quantity `db:"movement_quantity" json:"movementQuantity"`
	AfterQuantity    types.Quantity `db:"after_quantity" json:"afterQuantity"`
	Reference        Reference      `db:"-" json:"reference"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
}

// NewStockMovement creates a movement row with a generated id.
func NewStockMovement(
	batchID id.ID,
	holder Holder,
	kind MovementKind,
	previous, delta, after types.Quantity,
	ref Reference,
) StockMovement {
	return StockMovement{
		ID:               id.New(),
		BatchID:          batchID,
		Holder:           holder,
		Kind:             kind,
		PreviousQuantity: previous,
		MovementQuantity: delta,
		AfterQuantity:    after,
		Reference:        ref,
		CreatedAt:        time.Now().UTC(),
	}
}

// Increases reports whether the kind adds stock to the holder.
// Transfer rows are signed by their quantities, not by kind, so a
// transfer-out carries a negative check via Reconciles.
func (m *StockMovement) Increases() bool {
	switch m.Kind {
	case MovementKindIn, MovementKindAdjustmentIncrease:
		return true
	case MovementKindOut, MovementKindAdjustmentDecrease:
		return false
	case MovementKindTransfer:
		return m.AfterQuantity >= m.PreviousQuantity
	}
	return false
}

// SignedQuantity returns the movement delta with direction applied.
func (m *StockMovement) SignedQuantity() types.Quantity {
	if m.Increases() {
		return m.MovementQuantity
	}
	return m.MovementQuantity.Neg()
}

// Reconciles verifies the per-row arithmetic invariant.
func (m *StockMovement) Reconciles() bool {
	return m.AfterQuantity == m.PreviousQuantity+m.SignedQuantity()
}
