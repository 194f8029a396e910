package goods_receipt

import "kardex/pkg/numerator"

const (
	// NumberPrefix for generated goods receipt numbers.
	NumberPrefix = "GR"

	// NumeratorStrategy: goods receipt is a primary accounting document,
	// so numbers come straight from the database.
	NumeratorStrategy = numerator.StrategyStrict
)
