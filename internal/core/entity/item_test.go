package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"kardex/internal/core/apperror"
	"kardex/internal/core/types"
)

func TestItemValidate(t *testing.T) {
	valid := func() *Item {
		return &Item{
			Code:     "TEA-001",
			Name:     "Green tea, loose leaf",
			BaseUnit: "kg",
		}
	}

	t.Run("ok", func(t *testing.T) {
		require.NoError(t, valid().Validate(context.Background()))
	})

	t.Run("wholesale unit with factor", func(t *testing.T) {
		it := valid()
		it.WholesaleUnit = "box"
		it.ConversionFactor = types.NewQuantityFromInt(12)
		require.NoError(t, it.Validate(context.Background()))
	})

	tests := []struct {
		name   string
		mutate func(*Item)
		field  string
	}{
		{"missing code", func(i *Item) { i.Code = "" }, "code"},
		{"missing name", func(i *Item) { i.Name = "" }, "name"},
		{"missing base unit", func(i *Item) { i.BaseUnit = "" }, "baseUnit"},
		{"wholesale unit without factor", func(i *Item) { i.WholesaleUnit = "box" }, "conversionFactor"},
		{"negative factor", func(i *Item) {
			i.WholesaleUnit = "box"
			i.ConversionFactor = types.NewQuantityFromInt(-1)
		}, "conversionFactor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := valid()
			tt.mutate(it)
			err := it.Validate(context.Background())
			require.Error(t, err)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			require.Equal(t, apperror.CodeValidation, appErr.Code)
			require.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestItemToBaseUnits(t *testing.T) {
	it := &Item{
		Code:             "TEA-001",
		Name:             "Green tea",
		BaseUnit:         "pcs",
		WholesaleUnit:    "box",
		ConversionFactor: types.NewQuantityFromInt(12),
	}

	// 3 boxes = 36 pcs.
	require.Equal(t, types.NewQuantityFromInt(36), it.ToBaseUnits(types.NewQuantityFromInt(3)))

	// Fractional wholesale quantity: 0.5 box = 6 pcs.
	require.Equal(t, types.NewQuantityFromInt(6), it.ToBaseUnits(types.NewQuantityFromFloat64(0.5)))

	// No wholesale unit configured: quantity passes through unchanged.
	plain := &Item{Code: "X", Name: "X", BaseUnit: "pcs"}
	require.Equal(t, types.NewQuantityFromInt(7), plain.ToBaseUnits(types.NewQuantityFromInt(7)))
}
