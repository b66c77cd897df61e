package rules

import (
	"strings"

	"shipment-status/internal/features/shipment/domain"
)

// MapStatus collapses an indicator set into a single status label plus the
// ordered reasons string. It is total over every indicator combination.
//
// Status precedence, first match wins:
//
//	IsRTS        -> "Returned to Sender"
//	IsDelivered  -> "Delivered"
//	HasException -> "Exception"
//	IsPreTransit -> "Pre-Transit"
//	none         -> ""
//
// CalculatedReasons joins the labels of every active indicator with ";" in
// the fixed order PreTransit, Delivered, Exception, ReturnedToSender,
// Stalled. Stalled sits last and its inclusion is governed by
// rs.IncludeStalledReason. Inactive indicators are omitted entirely.
func MapStatus(ind domain.IndicatorSet, rs domain.RuleSet) domain.Classification {
	var status string
	switch {
	case ind.IsRTS == 1:
		status = domain.StatusReturnedToSender
	case ind.IsDelivered == 1:
		status = domain.StatusDelivered
	case ind.HasException == 1:
		status = domain.StatusException
	case ind.IsPreTransit == 1:
		status = domain.StatusPreTransit
	}

	var reasons []string
	if ind.IsPreTransit == 1 {
		reasons = append(reasons, domain.ReasonPreTransit)
	}
	if ind.IsDelivered == 1 {
		reasons = append(reasons, domain.ReasonDelivered)
	}
	if ind.HasException == 1 {
		reasons = append(reasons, domain.ReasonException)
	}
	if ind.IsRTS == 1 {
		reasons = append(reasons, domain.ReasonReturnedToSender)
	}
	if rs.IncludeStalledReason && ind.IsStalled == 1 {
		reasons = append(reasons, domain.ReasonStalled)
	}

	return domain.Classification{
		CalculatedStatus:  status,
		CalculatedReasons: strings.Join(reasons, ";"),
	}
}
