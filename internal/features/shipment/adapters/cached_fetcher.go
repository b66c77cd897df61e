package adapters

import (
	"context"
	"time"

	"shipment-status/internal/core/cache"
	"shipment-status/internal/core/logger"
	"shipment-status/internal/core/metrics"
	"shipment-status/internal/features/shipment/domain"
	"shipment-status/internal/features/shipment/ports"

	"go.uber.org/zap"
)

const payloadKeyPrefix = "shipment_payload:"

// CachedFetcher decorates a PayloadFetcher with a shared payload cache so
// reprocessing the same tracking numbers does not hammer the carrier. Empty
// payloads are not cached, so a shipment that appears later is picked up on
// the next fetch.
type CachedFetcher struct {
	next   ports.PayloadFetcher
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedFetcher wraps next with a cache whose entries live for ttl.
func NewCachedFetcher(next ports.PayloadFetcher, c cache.Cache, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger.Named("payload_cache"),
	}
}

// Fetch implements ports.PayloadFetcher.
func (f *CachedFetcher) Fetch(ctx context.Context, trackingNumber, carrierCode string) (domain.RawPayload, error) {
	key := payloadKeyPrefix + trackingNumber

	payload, found, err := cache.GetJSON[domain.RawPayload](ctx, f.cache, key)
	if err != nil {
		f.logger.Warn("Payload cache read failed, falling through",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
	} else if found {
		metrics.PayloadCacheHits.Inc()
		return payload, nil
	}
	metrics.PayloadCacheMisses.Inc()

	payload, err = f.next.Fetch(ctx, trackingNumber, carrierCode)
	if err != nil {
		return nil, err
	}

	if len(payload) > 0 {
		if err := cache.SetJSON(ctx, f.cache, key, payload, f.ttl); err != nil {
			f.logger.Warn("Payload cache write failed",
				zap.String("tracking_number", trackingNumber),
				zap.Error(err),
			)
		}
	}

	return payload, nil
}

// Source implements ports.PayloadFetcher, passing through the wrapped tag.
func (f *CachedFetcher) Source() string {
	return f.next.Source()
}
