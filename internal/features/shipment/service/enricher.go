package service

import (
	"context"
	"time"

	"shipment-status/internal/core/logger"
	"shipment-status/internal/core/metrics"
	"shipment-status/internal/features/shipment/domain"
	"shipment-status/internal/features/shipment/normalize"
	"shipment-status/internal/features/shipment/ports"
	"shipment-status/internal/features/shipment/rules"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Row is one shipment to enrich: its identifiers plus any timing value the
// caller already holds. LatestEventTimestampUtc from the input row is only
// used when the fetched payload yields no timestamp of its own.
type Row struct {
	TrackingNumber          string `json:"trackingNumber"`
	CarrierCode             string `json:"carrierCode"`
	LatestEventTimestampUtc string `json:"latestEventTimestampUtc,omitempty"`
}

// Enrichment is the full per-shipment result: the canonical record, the
// derived timing metrics, the indicator set, and the collapsed classification.
type Enrichment struct {
	Record         domain.NormalizedStatus `json:"record"`
	Metrics        domain.StatusMetrics    `json:"metrics"`
	Indicators     domain.IndicatorSet     `json:"indicators"`
	Classification domain.Classification   `json:"classification"`
}

// Enricher runs the normalization and classification pipeline per shipment:
// fetch, normalize, compute metrics, evaluate indicators, map status.
type Enricher struct {
	fetcher ports.PayloadFetcher
	rules   domain.RuleSet
	logger  *zap.Logger
}

// NewEnricher creates an Enricher using the given fetcher and rule set.
func NewEnricher(fetcher ports.PayloadFetcher, rs domain.RuleSet) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		rules:   rs,
		logger:  logger.Named("enricher"),
	}
}

// Enrich processes a single row against referenceNow. A fetch transport
// failure is returned as an error; an absent payload is not a failure and
// yields an all-default record with no indicators set.
func (e *Enricher) Enrich(ctx context.Context, row Row, referenceNow time.Time) (Enrichment, error) {
	start := time.Now()

	payload, err := e.fetcher.Fetch(ctx, row.TrackingNumber, row.CarrierCode)
	if err != nil {
		metrics.PayloadFetchFailures.WithLabelValues(e.fetcher.Source()).Inc()
		return Enrichment{}, err
	}

	en := e.enrichPayload(payload, row, referenceNow)

	metrics.ShipmentsEnriched.WithLabelValues(en.Classification.CalculatedStatus).Inc()
	metrics.EnrichmentDuration.Observe(float64(time.Since(start).Milliseconds()))

	return en, nil
}

// EnrichAll processes rows concurrently with a bounded worker pool, keeping
// input order in the result. Per-row fetch failures degrade that row to an
// all-default enrichment instead of aborting the batch.
func (e *Enricher) EnrichAll(ctx context.Context, rows []Row, referenceNow time.Time, workers int) []Enrichment {
	if workers < 1 {
		workers = 1
	}

	out := make([]Enrichment, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			en, err := e.Enrich(gctx, row, referenceNow)
			if err != nil {
				e.logger.Warn("Enrichment degraded to defaults after fetch failure",
					zap.String("tracking_number", row.TrackingNumber),
					zap.Error(err),
				)
				en = e.enrichPayload(domain.RawPayload{}, row, referenceNow)
			}
			out[i] = en
			return nil
		})
	}

	g.Wait()
	return out
}

// enrichPayload runs the pure pipeline over an already-fetched payload and
// merges the results: the input row's timestamp backfills a record that
// resolved none, and a timestamp derived during metrics computation is
// written back onto the record so downstream consumers always see it
// populated.
func (e *Enricher) enrichPayload(payload domain.RawPayload, row Row, referenceNow time.Time) Enrichment {
	rec := normalize.Normalize(payload, row.TrackingNumber, row.CarrierCode, e.fetcher.Source())

	if rec.LatestEventTimestampUtc == "" {
		rec.LatestEventTimestampUtc = domain.CanonicalTimestamp(row.LatestEventTimestampUtc)
	}

	m := rules.ComputeMetrics(rec, referenceNow)
	rec.LatestEventTimestampUtc = m.LatestEventTimestampUtc

	ind := rules.Evaluate(rec, m, e.rules)
	cls := rules.MapStatus(ind, e.rules)

	return Enrichment{
		Record:         rec,
		Metrics:        m,
		Indicators:     ind,
		Classification: cls,
	}
}
