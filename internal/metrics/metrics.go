package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache reads satisfied per tier
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxocache_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"tier"},
	)

	// CacheMisses tracks reads that fell past the in-process tier
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taxocache_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// DurableStoreErrors tracks swallowed durable-store failures per operation
	DurableStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxocache_durable_store_errors_total",
			Help: "Total number of durable store errors (best-effort, never raised)",
		},
		[]string{"op"},
	)

	// FetchDuration tracks remote taxonomy fetch latency
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taxocache_fetch_duration_seconds",
			Help:    "Remote taxonomy fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FetchErrors tracks exhausted taxonomy fetches by classified kind
	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxocache_fetch_errors_total",
			Help: "Total number of failed taxonomy fetches",
		},
		[]string{"kind"},
	)

	// ResolveFallbacks tracks resolutions answered by the codec because no
	// mapping was loaded
	ResolveFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxocache_resolve_fallbacks_total",
			Help: "Total number of resolutions that fell back to the slug codec",
		},
		[]string{"direction"},
	)
)
