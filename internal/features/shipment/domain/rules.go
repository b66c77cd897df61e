package domain

// RuleSet carries the classification configuration: the carrier code sets and
// text hints each indicator matches against, plus the stalled threshold.
// The code sets are configuration data rather than hardcoded assumptions so
// operators can extend them as new carrier variants are confirmed.
type RuleSet struct {
	PreTransitCodes []string
	DeliveredCodes  []string
	ExceptionCodes  []string
	RTSCodes        []string

	PreTransitHints []string
	DeliveredHints  []string
	ExceptionHints  []string
	RTSHints        []string

	// StalledThresholdDays is the minimum known event age, in whole days,
	// for a non-terminal shipment to count as stalled.
	StalledThresholdDays int

	// IncludeStalledReason controls whether Stalled participates in the
	// CalculatedReasons join. When included it is always the last label.
	IncludeStalledReason bool
}

// DefaultRuleSet returns the confirmed FedEx code sets and hints.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		PreTransitCodes: []string{"OC", "LP"},
		DeliveredCodes:  []string{"DL"},
		ExceptionCodes:  []string{"DE", "SE"},
		RTSCodes:        []string{"RS", "RT"},

		PreTransitHints: []string{
			"label created",
			"shipment information sent",
			"order created",
			"pending pickup",
			"awaiting pickup",
		},
		DeliveredHints: []string{"delivered"},
		ExceptionHints: []string{
			"exception",
			"delivery exception",
			"shipment exception",
		},
		RTSHints: []string{
			"returning to shipper",
			"returned to sender",
			"return to shipper",
		},

		StalledThresholdDays: 4,
		IncludeStalledReason: true,
	}
}
