package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuantityString(t *testing.T) {
	require.Equal(t, "0.0000", Quantity(0).String())
	require.Equal(t, "1.0000", NewQuantityFromInt(1).String())
	require.Equal(t, "2.5000", NewQuantityFromFloat64(2.5).String())
	require.Equal(t, "-3.2500", NewQuantityFromFloat64(-3.25).String())
	require.Equal(t, "0.0001", NewQuantityFromInt64Scaled(1).String())
}

func TestQuantityUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Quantity
	}{
		{"number", `12.5`, NewQuantityFromFloat64(12.5)},
		{"integer", `7`, NewQuantityFromInt(7)},
		{"string", `"3.25"`, NewQuantityFromFloat64(3.25)},
		{"negative", `"-0.0001"`, NewQuantityFromInt64Scaled(-1)},
		{"full scale", `"1.9999"`, NewQuantityFromInt64Scaled(19999)},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.in), &q))
			require.Equal(t, tt.want, q)
		})
	}

	// Strict parsing: inputs the fixed-point scale cannot represent
	// exactly are rejected, never rounded.
	for _, in := range []string{`"not a number"`, `"1.99999"`, `1e3`, `"2E-1"`} {
		var q Quantity
		require.Error(t, json.Unmarshal([]byte(in), &q), "input %s", in)
	}
}

func TestQuantityRoundTrip(t *testing.T) {
	in := NewQuantityFromFloat64(10.1234)
	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.Equal(t, "10.1234", string(data))

	var out Quantity
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, in, out)
}

func TestQuantityArithmeticHelpers(t *testing.T) {
	a := NewQuantityFromInt(10)
	b := NewQuantityFromInt(4)

	require.Equal(t, b, a.Min(b))
	require.Equal(t, b, b.Min(a))
	require.Equal(t, NewQuantityFromInt(-10), a.Neg())
	require.Equal(t, a, a.Neg().Abs())
	require.True(t, a.IsPositive())
	require.True(t, a.Neg().IsNegative())
	require.True(t, Quantity(0).IsZero())
}

func TestQuantityDecimal(t *testing.T) {
	q := NewQuantityFromFloat64(2.5)
	require.Equal(t, "2.5", q.Decimal().String())
}
