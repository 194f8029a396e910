package fulfillment

import (
	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/core/types"
)

// PaymentState is the invoice payment position after applying a payment.
type PaymentState struct {
	PaidAmount      types.Money          `json:"paidAmount"`
	RemainingAmount types.Money          `json:"remainingAmount"`
	Status          entity.PaymentStatus `json:"status"`
}

// ApplyPayment advances an invoice's payment position by one payment.
// Payments are monotonic: amounts must be positive and may not exceed
// the remaining balance; there is no void or refund path here.
func ApplyPayment(grandTotal, paidSoFar, amount types.Money) (PaymentState, error) {
	if !amount.IsPositive() {
		return PaymentState{}, apperror.NewValidation("payment amount must be positive").
			WithDetail("amount", amount.String())
	}

	remaining := grandTotal.Sub(paidSoFar)
	if amount.GreaterThan(remaining) {
		return PaymentState{}, apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"payment exceeds remaining invoice balance",
		).WithDetail("amount", amount.String()).
			WithDetail("remaining", remaining.String())
	}

	paid := paidSoFar.Add(amount)
	state := PaymentState{
		PaidAmount:      paid,
		RemainingAmount: grandTotal.Sub(paid),
	}

	switch {
	case state.RemainingAmount.IsZero():
		state.Status = entity.PaymentPaid
	case paid.IsPositive():
		state.Status = entity.PaymentPartiallyPaid
	default:
		state.Status = entity.PaymentUnpaid
	}

	return state, nil
}

// InitialPaymentState is the position of a freshly issued invoice.
func InitialPaymentState(grandTotal types.Money) PaymentState {
	return PaymentState{
		PaidAmount:      types.ZeroMoney(),
		RemainingAmount: grandTotal,
		Status:          entity.PaymentUnpaid,
	}
}
