package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"kardex/internal/core/entity"
	"kardex/internal/core/types"
)

func TestApplyPayment_Incremental(t *testing.T) {
	total := types.MustMoney("100")

	// First payment of 40 leaves 60 remaining.
	state, err := ApplyPayment(total, types.ZeroMoney(), types.MustMoney("40"))
	require.NoError(t, err)
	require.True(t, state.PaidAmount.Equal(types.MustMoney("40")))
	require.True(t, state.RemainingAmount.Equal(types.MustMoney("60")))
	require.Equal(t, entity.PaymentPartiallyPaid, state.Status)

	// Second payment of 60 settles the invoice.
	state, err = ApplyPayment(total, state.PaidAmount, types.MustMoney("60"))
	require.NoError(t, err)
	require.True(t, state.PaidAmount.Equal(total))
	require.True(t, state.RemainingAmount.IsZero())
	require.Equal(t, entity.PaymentPaid, state.Status)
}

func TestApplyPayment_SinglePaymentSettles(t *testing.T) {
	state, err := ApplyPayment(types.MustMoney("55.50"), types.ZeroMoney(), types.MustMoney("55.50"))
	require.NoError(t, err)
	require.Equal(t, entity.PaymentPaid, state.Status)
	require.True(t, state.RemainingAmount.IsZero())
}

func TestApplyPayment_RejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-5"} {
		_, err := ApplyPayment(types.MustMoney("100"), types.ZeroMoney(), types.MustMoney(amount))
		require.Error(t, err, "amount %s", amount)
	}
}

func TestApplyPayment_RejectsOverpayment(t *testing.T) {
	_, err := ApplyPayment(types.MustMoney("100"), types.MustMoney("80"), types.MustMoney("30"))
	require.Error(t, err)
}

func TestInitialPaymentState(t *testing.T) {
	state := InitialPaymentState(types.MustMoney("250"))
	require.Equal(t, entity.PaymentUnpaid, state.Status)
	require.True(t, state.PaidAmount.IsZero())
	require.True(t, state.RemainingAmount.Equal(types.MustMoney("250")))
}
