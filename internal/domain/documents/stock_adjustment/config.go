package stock_adjustment

import "kardex/pkg/numerator"

const (
	// NumberPrefix for generated adjustment numbers.
	NumberPrefix = "ADJ"

	// NumeratorStrategy: corrections must be easy to trace in order, so
	// numbers come straight from the database.
	NumeratorStrategy = numerator.StrategyStrict
)
