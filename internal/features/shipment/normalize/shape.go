package normalize

import "shipment-status/internal/features/shipment/domain"

// Shape identifies which of the recognized payload families a raw carrier
// response belongs to. The payload is classified once and dispatched to a
// dedicated extractor, instead of speculative nested lookups per field.
type Shape int

const (
	// ShapeUnrecognized means no known status fields were found anywhere.
	ShapeUnrecognized Shape = iota
	// ShapeDeep is the full track API response with per-package results under
	// completeTrackResults[*].trackResults[*].
	ShapeDeep
	// ShapeFlat is a single-level mapping with the canonical field names.
	ShapeFlat
)

func (s Shape) String() string {
	switch s {
	case ShapeDeep:
		return "deep"
	case ShapeFlat:
		return "flat"
	default:
		return "unrecognized"
	}
}

// wrapperKeys are the envelope keys some gateways wrap the track response in.
var wrapperKeys = []string{"output", "body", "response", "data"}

var flatKeys = []string{"code", "derivedCode", "statusByLocale", "description", "scanEvents"}

// Classify probes a payload and names its shape. It never fails: anything
// that is not recognizably deep or flat is ShapeUnrecognized.
func Classify(payload domain.RawPayload) Shape {
	if len(payload) == 0 {
		return ShapeUnrecognized
	}
	if len(trackResults(payload)) > 0 {
		return ShapeDeep
	}
	for _, k := range flatKeys {
		if _, ok := payload[k]; ok {
			return ShapeFlat
		}
	}
	return ShapeUnrecognized
}

// trackResults walks the deep shape and returns every trackResults object,
// probing the common wrapper keys when completeTrackResults is not at the
// top level. A nil result means the payload is not deep-shaped.
func trackResults(payload domain.RawPayload) []map[string]any {
	ctr := completeTrackResults(payload)
	if ctr == nil {
		return nil
	}

	var out []map[string]any
	for _, cr := range ctr {
		crMap, ok := cr.(map[string]any)
		if !ok {
			continue
		}
		trList, ok := crMap["trackResults"].([]any)
		if !ok {
			continue
		}
		for _, tr := range trList {
			if trMap, ok := tr.(map[string]any); ok {
				out = append(out, trMap)
			}
		}
	}
	return out
}

func completeTrackResults(payload domain.RawPayload) []any {
	if ctr, ok := payload["completeTrackResults"].([]any); ok {
		return ctr
	}

	// Descend through wrapper envelopes until one level holds the results.
	cand := map[string]any(payload)
	for _, key := range wrapperKeys {
		if inner, ok := cand[key].(map[string]any); ok {
			cand = inner
		}
		if ctr, ok := cand["completeTrackResults"].([]any); ok {
			return ctr
		}
	}
	return nil
}
