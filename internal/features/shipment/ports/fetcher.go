package ports

import (
	"context"

	"shipment-status/internal/features/shipment/domain"
)

// PayloadFetcher resolves the raw carrier payload for a tracking number. It
// is used identically whether backed by a recorded replay store or a live
// carrier call. Absence of a payload is not an error: implementations return
// an empty RawPayload so enrichment degrades to an all-default record.
type PayloadFetcher interface {
	// Fetch returns the raw payload for trackingNumber, or an empty payload
	// when none is available. Errors are reserved for transport failures.
	Fetch(ctx context.Context, trackingNumber, carrierCode string) (domain.RawPayload, error)

	// Source names the payload origin tag recorded on normalized statuses
	// (e.g. "replay", "fedex_api").
	Source() string
}
