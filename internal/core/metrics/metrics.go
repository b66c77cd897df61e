// Package metrics exposes the Prometheus instruments for the enrichment
// pipeline. Registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ShipmentsEnriched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipment_status_enriched_total",
		Help: "Total number of shipments enriched, labelled by calculated status.",
	}, []string{"status"})

	PayloadFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipment_status_fetch_failures_total",
		Help: "Total number of payload fetches that failed, labelled by source.",
	}, []string{"source"})

	PayloadCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipment_status_payload_cache_hits_total",
		Help: "Total number of payload lookups served from the cache.",
	})

	PayloadCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipment_status_payload_cache_misses_total",
		Help: "Total number of payload lookups that fell through to the fetcher.",
	})

	EnrichmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shipment_status_enrichment_duration_ms",
		Help:    "Per-shipment enrichment latency in milliseconds, fetch included.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
)
