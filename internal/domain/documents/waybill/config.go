package waybill

import "kardex/pkg/numerator"

const (
	// NumberPrefix for generated waybill numbers.
	NumberPrefix = "WB"

	// NumeratorStrategy: waybills ship goods but are not the strict
	// accounting document, cached ranges are fine.
	NumeratorStrategy = numerator.StrategyCached
)
