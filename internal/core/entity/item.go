package entity

import (
	"context"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

// Item is a traded good. Identity is immutable once referenced by
// batches. The ledger always operates in the base unit; wholesale
// conversion is applied by callers before invoking it.
type Item struct {
	BaseEntity

	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`

	// BaseUnit is the unit all batch and movement quantities are kept in.
	BaseUnit string `db:"base_unit" json:"baseUnit"`

	// WholesaleUnit, when set, converts to base units by ConversionFactor
	// (e.g. 1 box = 12 pcs).
	WholesaleUnit    string         `db:"wholesale_unit" json:"wholesaleUnit,omitempty"`
	ConversionFactor types.Quantity `db:"conversion_factor" json:"conversionFactor,omitempty"`

	CategoryID id.ID `db:"category_id" json:"categoryId"`
}

// Validate implements Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if i.Code == "" {
		return apperror.NewValidation("item code is required").
			WithDetail("field", "code")
	}
	if i.Name == "" {
		return apperror.NewValidation("item name is required").
			WithDetail("field", "name")
	}
	if i.BaseUnit == "" {
		return apperror.NewValidation("base unit is required").
			WithDetail("field", "baseUnit")
	}
	if i.WholesaleUnit != "" && !i.ConversionFactor.IsPositive() {
		return apperror.NewValidation("conversion factor must be positive when wholesale unit is set").
			WithDetail("field", "conversionFactor")
	}
	return nil
}

// ToBaseUnits converts a wholesale-unit quantity to base units.
// Returns qty unchanged when no wholesale unit is configured.
func (i *Item) ToBaseUnits(qty types.Quantity) types.Quantity {
	if i.WholesaleUnit == "" || i.ConversionFactor.IsZero() {
		return qty
	}
	return types.NewQuantityFromInt64Scaled(qty.Int64Scaled() * i.ConversionFactor.Int64Scaled() / types.QuantityScale)
}
