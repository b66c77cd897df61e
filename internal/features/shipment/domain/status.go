package domain

import "time"

// RawPayload is a decoded carrier response. Its shape is unknown until the
// normalizer probes it; an empty map stands for "nothing recorded or fetched".
type RawPayload map[string]any

// ScanEvent is a single carrier scan attached to a shipment.
type ScanEvent struct {
	// Timestamp is the event time as a UTC ISO-8601 string, or "" when the
	// source event carried no parseable date.
	Timestamp string `json:"timestamp"`
	// Description is the carrier's free-form event text.
	Description string `json:"description"`
}

// NormalizedStatus is the canonical, shape-independent view of a carrier
// status payload. Every field is always present: absent source data yields an
// empty string or empty slice, never a missing field, so consumers only ever
// branch on emptiness.
type NormalizedStatus struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
	CarrierCode    string `json:"carrierCode"`
	Source         string `json:"source"`

	Code                    string      `json:"code"`
	DerivedCode             string      `json:"derivedCode"`
	StatusByLocale          string      `json:"statusByLocale"`
	Description             string      `json:"description"`
	LatestEventTimestampUtc string      `json:"latestEventTimestampUtc"`
	ScanEvents              []ScanEvent `json:"scanEvents"`
}

// DaysUnknown marks a day count that could not be derived because no event
// timestamp was resolvable. It is distinct from zero: zero means "an event
// happened today (or in the future)".
const DaysUnknown = -1

// StatusMetrics carries the timing figures derived from a normalized status.
type StatusMetrics struct {
	// LatestEventTimestampUtc is the resolved event timestamp, possibly
	// backfilled from scan events when the normalizer left it unset.
	LatestEventTimestampUtc string `json:"latestEventTimestampUtc"`
	// DaysSinceLatestEvent is the whole-day age of the latest event, clamped
	// to zero for future-dated events, or DaysUnknown.
	DaysSinceLatestEvent int `json:"daysSinceLatestEvent"`
}

// IndicatorSet holds the five independent classification indicators as 0/1
// values. No structural relationship is enforced between them; only IsStalled
// consults the terminal indicators during its own computation.
type IndicatorSet struct {
	IsPreTransit int `json:"isPreTransit"`
	IsDelivered  int `json:"isDelivered"`
	HasException int `json:"hasException"`
	IsRTS        int `json:"isRTS"`
	IsStalled    int `json:"isStalled"`
}

// Classification is the reduced, report-ready view of an indicator set.
type Classification struct {
	CalculatedStatus  string `json:"calculatedStatus"`
	CalculatedReasons string `json:"calculatedReasons"`
}

// Status labels produced by the precedence mapping.
const (
	StatusReturnedToSender = "Returned to Sender"
	StatusDelivered        = "Delivered"
	StatusException        = "Exception"
	StatusPreTransit       = "Pre-Transit"
)

// Reason labels joined into CalculatedReasons.
const (
	ReasonPreTransit       = "PreTransit"
	ReasonDelivered        = "Delivered"
	ReasonException        = "Exception"
	ReasonReturnedToSender = "ReturnedToSender"
	ReasonStalled          = "Stalled"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats observed in carrier payloads and
// workbook cells. Layouts without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatUTC renders a timestamp as the canonical UTC ISO-8601 string.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// CanonicalTimestamp re-renders s in canonical UTC form, or returns "" when s
// is not a recognizable timestamp.
func CanonicalTimestamp(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return ""
	}
	return FormatUTC(t)
}
