package purchase_order

import "kardex/pkg/numerator"

const (
	// NumberPrefix for generated purchase order numbers.
	NumberPrefix = "PO"

	// NumeratorStrategy: orders are internal planning documents, gaps
	// after a rollback are acceptable.
	NumeratorStrategy = numerator.StrategyCached
)
