package stock_transfer

import "kardex/pkg/numerator"

const (
	// NumberPrefix for generated transfer numbers.
	NumberPrefix = "TR"

	// NumeratorStrategy: internal movement document, cached ranges fine.
	NumeratorStrategy = numerator.StrategyCached
)
