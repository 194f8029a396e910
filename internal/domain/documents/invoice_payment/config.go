package invoice_payment

import "kardex/pkg/numerator"

const (
	// InvoiceNumberPrefix for generated invoice numbers.
	InvoiceNumberPrefix = "INV"

	// PaymentNumberPrefix for generated payment numbers.
	PaymentNumberPrefix = "PAY"

	// NumeratorStrategy: invoices and payments are accounting documents,
	// numbers come straight from the database.
	NumeratorStrategy = numerator.StrategyStrict
)
