// Package normalize converts heterogeneous carrier payloads into the
// canonical status record the classification rules operate on.
package normalize

import (
	"fmt"
	"strings"

	"shipment-status/internal/features/shipment/domain"
)

// codeVariants maps carrier code spellings observed in captures to their
// canonical category. Kept as a static table so it stays independently
// testable from the indicator rules.
var codeVariants = map[string]string{
	"DLV": "DL", // delivered variants
	"DEL": "DL",
	"EX":  "DE", // exception variants
	"EXC": "DE",
	"RTN": "RS", // return-to-shipper variants
}

// Normalize extracts the canonical status fields from a raw carrier payload.
// It never fails: malformed or missing structure degrades to default field
// values, so the returned record always has every field populated (possibly
// empty). The supplied trackingNumber wins over any payload-embedded value so
// callers can disambiguate payloads that lack or misreport it.
func Normalize(payload domain.RawPayload, trackingNumber, carrierCode, source string) domain.NormalizedStatus {
	rec := domain.NormalizedStatus{
		Carrier:        carrierName(carrierCode),
		TrackingNumber: trackingNumber,
		CarrierCode:    carrierCode,
		Source:         source,
		ScanEvents:     []domain.ScanEvent{},
	}

	switch Classify(payload) {
	case ShapeDeep:
		extractDeep(payload, &rec)
	case ShapeFlat:
		extractFlat(payload, &rec)
	}

	if rec.DerivedCode == "" {
		if canon, ok := codeVariants[strings.ToUpper(rec.Code)]; ok {
			rec.DerivedCode = canon
		} else {
			rec.DerivedCode = rec.Code
		}
	}

	if rec.TrackingNumber == "" {
		rec.TrackingNumber = embeddedTrackingNumber(payload)
	}

	return rec
}

// extractDeep pulls status fields from the first track result, falling back
// to the first scan event when latestStatusDetail is absent, and collects
// every scan event across track results.
func extractDeep(payload domain.RawPayload, rec *domain.NormalizedStatus) {
	trs := trackResults(payload)
	if len(trs) == 0 {
		return
	}

	lsd := asMap(trs[0]["latestStatusDetail"])
	rec.Code = asString(lsd["code"])
	rec.DerivedCode = asString(lsd["derivedCode"])
	rec.StatusByLocale = asString(lsd["statusByLocale"])
	rec.Description = asString(lsd["description"])

	if rec.Code == "" && rec.StatusByLocale == "" {
		if ev := firstScanEvent(trs); ev != nil {
			rec.Code = asString(ev["derivedStatusCode"])
			if rec.Code == "" {
				rec.Code = asString(ev["eventType"])
			}
			rec.DerivedCode = asString(ev["derivedStatusCode"])
			rec.StatusByLocale = asString(ev["derivedStatus"])
			if rec.StatusByLocale == "" {
				rec.StatusByLocale = asString(ev["eventDescription"])
			}
			rec.Description = asString(ev["eventDescription"])
		}
	}

	for _, tr := range trs {
		for _, raw := range asList(tr["scanEvents"]) {
			ev, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			rec.ScanEvents = append(rec.ScanEvents, domain.ScanEvent{
				Timestamp:   domain.CanonicalTimestamp(asString(ev["date"])),
				Description: asString(ev["eventDescription"]),
			})
		}
	}

	rec.LatestEventTimestampUtc = latestEventTimestamp(trs)
}

// extractFlat reads the canonical field names straight off a single-level
// mapping. Re-normalizing an already-canonical record is a no-op for the
// fields it recognizes.
func extractFlat(payload domain.RawPayload, rec *domain.NormalizedStatus) {
	rec.Code = asString(payload["code"])
	rec.DerivedCode = asString(payload["derivedCode"])
	rec.StatusByLocale = asString(payload["statusByLocale"])
	rec.Description = asString(payload["description"])
	rec.LatestEventTimestampUtc = domain.CanonicalTimestamp(asString(payload["latestEventTimestampUtc"]))

	for _, raw := range asList(payload["scanEvents"]) {
		ev, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ts := asString(ev["timestamp"])
		if ts == "" {
			ts = asString(ev["date"])
		}
		desc := asString(ev["description"])
		if desc == "" {
			desc = asString(ev["eventDescription"])
		}
		rec.ScanEvents = append(rec.ScanEvents, domain.ScanEvent{
			Timestamp:   domain.CanonicalTimestamp(ts),
			Description: desc,
		})
	}
}

func firstScanEvent(trs []map[string]any) map[string]any {
	for _, tr := range trs {
		for _, raw := range asList(tr["scanEvents"]) {
			if ev, ok := raw.(map[string]any); ok {
				return ev
			}
		}
	}
	return nil
}

// embeddedTrackingNumber digs a tracking number out of the payload itself,
// used only when the caller did not supply one.
func embeddedTrackingNumber(payload domain.RawPayload) string {
	for _, tr := range trackResults(payload) {
		tni := asMap(tr["trackingNumberInfo"])
		if tn := asString(tni["trackingNumber"]); tn != "" {
			return tn
		}
	}
	for _, cr := range completeTrackResults(payload) {
		if crMap, ok := cr.(map[string]any); ok {
			if tn := asString(crMap["trackingNumber"]); tn != "" {
				return tn
			}
		}
	}
	return asString(payload["trackingNumber"])
}

func carrierName(carrierCode string) string {
	cc := strings.ToUpper(carrierCode)
	if strings.HasPrefix(cc, "FDX") || strings.HasPrefix(cc, "FEDEX") {
		return "FedEx"
	}
	if cc == "" {
		return "Unknown"
	}
	return cc
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}
