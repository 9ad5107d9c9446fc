package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesExecuted counts filtered searches by entity
	SearchesExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygap_searches_total",
			Help: "Total number of filtered searches executed, by entity",
		},
		[]string{"entity"},
	)

	// TransitionsApplied counts status transitions by entity and reason
	TransitionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygap_transitions_total",
			Help: "Total number of status transitions applied, by entity and reason",
		},
		[]string{"entity", "reason"},
	)

	// CacheHits counts announcement cache hits by cache name
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygap_cache_hits_total",
			Help: "Total number of cache hits, by cache",
		},
		[]string{"cache"},
	)

	// CacheMisses counts announcement cache misses by cache name
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygap_cache_misses_total",
			Help: "Total number of cache misses, by cache",
		},
		[]string{"cache"},
	)

	// CacheErrors counts cache failures by cache and operation
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paygap_cache_errors_total",
			Help: "Total number of cache errors, by cache and operation",
		},
		[]string{"cache", "operation"},
	)

	// AnnouncementsExpired counts announcements moved to EXPIRED by the sweep
	AnnouncementsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paygap_announcements_expired_total",
			Help: "Total number of announcements expired by the background sweep",
		},
	)

	// HTTPRequestDuration observes request latency by method, path and status
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paygap_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
