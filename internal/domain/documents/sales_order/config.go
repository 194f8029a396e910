package sales_order

import "kardex/pkg/numerator"

const (
	// NumberPrefix for generated sales order numbers.
	NumberPrefix = "SO"

	// NumeratorStrategy: orders are internal planning documents, gaps
	// after a rollback are acceptable.
	NumeratorStrategy = numerator.StrategyCached
)
