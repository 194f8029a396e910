package stock_audit

import "kardex/pkg/numerator"

const (
	// NumberPrefix for generated audit numbers.
	NumberPrefix = "AUD"

	// NumeratorStrategy: audits are rare and legally sensitive, strict
	// numbering costs nothing here.
	NumeratorStrategy = numerator.StrategyStrict
)
