// Package metrics declares the Prometheus collectors exposed at /metrics:
// per-indexer search duration, cache hit/miss, and aggregate result counts.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	IndexerSearchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lodestarr",
		Name:      "indexer_search_duration_seconds",
		Help:      "Time spent searching a single indexer source.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	}, []string{"indexer", "kind"})

	IndexerSearchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lodestarr",
		Name:      "indexer_search_total",
		Help:      "Total searches dispatched to an indexer, by outcome.",
	}, []string{"indexer", "outcome"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lodestarr",
		Name:      "cache_hits_total",
		Help:      "Total search cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lodestarr",
		Name:      "cache_misses_total",
		Help:      "Total search cache misses.",
	})

	AggregateResultCount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lodestarr",
		Name:      "aggregate_result_count",
		Help:      "Number of merged results returned per aggregate search.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
	})
)

// Register attaches every collector to reg. Called once at startup.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		IndexerSearchDuration,
		IndexerSearchTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		AggregateResultCount,
	)
}
