// Package entity provides core domain entities.
package entity

import (
	"fmt"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
)

// HolderType enumerates the kinds of stock holders. The set is closed:
// batch and movement rows dispatch on it exhaustively, never on free-form
// strings.
type HolderType string

const (
	// HolderTypeBranch is a sales branch holding sellable stock.
	HolderTypeBranch HolderType = "branch"
	// HolderTypeWarehouse is a storage warehouse.
	HolderTypeWarehouse HolderType = "warehouse"
)

// Valid reports whether t is a known holder type.
func (t HolderType) Valid() bool {
	switch t {
	case HolderTypeBranch, HolderTypeWarehouse:
		return true
	}
	return false
}

// Holder identifies the owner of stock: a branch or a warehouse.
// It is a value type; two holders are equal iff type and id match.
type Holder struct {
	Type HolderType `db:"holder_type" json:"holderType"`
	ID   id.ID      `db:"holder_id" json:"holderId"`
}

// BranchHolder constructs a branch holder.
func BranchHolder(branchID id.ID) Holder {
	return Holder{Type: HolderTypeBranch, ID: branchID}
}

// WarehouseHolder constructs a warehouse holder.
func WarehouseHolder(warehouseID id.ID) Holder {
	return Holder{Type: HolderTypeWarehouse, ID: warehouseID}
}

// Validate checks that the holder names a known type and a real id.
func (h Holder) Validate() error {
	if !h.Type.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown holder type %q", h.Type)).
			WithDetail("field", "holderType")
	}
	if id.IsNil(h.ID) {
		return apperror.NewValidation("holder id is required").
			WithDetail("field", "holderId")
	}
	return nil
}

// String formats the holder for logs and error details.
func (h Holder) String() string {
	return string(h.Type) + ":" + h.ID.String()
}
