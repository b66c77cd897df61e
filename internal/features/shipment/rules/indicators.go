package rules

import (
	"strings"

	"shipment-status/internal/features/shipment/domain"
)

// Evaluate computes the five indicators for a record. Each indicator is
// independent of the others, with one exception: IsStalled is suppressed when
// either terminal indicator (delivered or return-to-shipper) is active, and
// an unknown day count can never count as stalled.
func Evaluate(rec domain.NormalizedStatus, m domain.StatusMetrics, rs domain.RuleSet) domain.IndicatorSet {
	var ind domain.IndicatorSet

	if codeMatches(rec, rs.PreTransitCodes) || textMatches(rec, rs.PreTransitHints) {
		ind.IsPreTransit = 1
	}
	if codeMatches(rec, rs.DeliveredCodes) || textMatches(rec, rs.DeliveredHints) {
		ind.IsDelivered = 1
	}
	if codeMatches(rec, rs.ExceptionCodes) || textMatches(rec, rs.ExceptionHints) {
		ind.HasException = 1
	}
	if codeMatches(rec, rs.RTSCodes) || textMatches(rec, rs.RTSHints) {
		ind.IsRTS = 1
	}

	terminal := ind.IsDelivered == 1 || ind.IsRTS == 1
	stale := m.DaysSinceLatestEvent != domain.DaysUnknown &&
		m.DaysSinceLatestEvent >= rs.StalledThresholdDays
	if stale && !terminal {
		ind.IsStalled = 1
	}

	return ind
}

// codeMatches reports whether the record's code or derivedCode is in the set,
// case-insensitively.
func codeMatches(rec domain.NormalizedStatus, codes []string) bool {
	cu := strings.ToUpper(rec.Code)
	du := strings.ToUpper(rec.DerivedCode)
	for _, c := range codes {
		c = strings.ToUpper(c)
		if c != "" && (c == cu || c == du) {
			return true
		}
	}
	return false
}

// textMatches reports whether statusByLocale or description contains any of
// the hints as a case-insensitive substring.
func textMatches(rec domain.NormalizedStatus, hints []string) bool {
	status := strings.ToLower(rec.StatusByLocale)
	desc := strings.ToLower(rec.Description)
	for _, h := range hints {
		h = strings.ToLower(h)
		if h == "" {
			continue
		}
		if strings.Contains(status, h) || strings.Contains(desc, h) {
			return true
		}
	}
	return false
}
