// Package telemetry exposes the gateway's Prometheus collectors. Everything
// is registered on the default registry and served from /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccountsScanned counts raw accounts returned by program scans.
	AccountsScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocksd_accounts_scanned_total",
		Help: "Raw program accounts seen by batch scans.",
	})

	// AccountsClassified counts successfully classified accounts by kind.
	AccountsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blocksd_accounts_classified_total",
		Help: "Accounts classified into a typed entity, by kind.",
	}, []string{"kind"})

	// AccountsUnrecognized counts buffers no layout accepted.
	AccountsUnrecognized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocksd_accounts_unrecognized_total",
		Help: "Program accounts no layout accepted.",
	})

	// RateLimitHits counts rate-limit responses from the RPC node.
	RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocksd_rpc_rate_limit_hits_total",
		Help: "Rate-limit responses observed during scans and lookups.",
	})

	// CacheHits and CacheMisses track the domain cache.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocksd_cache_hits_total",
		Help: "Domain cache hits.",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocksd_cache_misses_total",
		Help: "Domain cache misses triggering a point lookup.",
	})

	// ScanDuration observes full program scan latency.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blocksd_scan_duration_seconds",
		Help:    "Wall time of full program account scans.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// WritesSubmitted counts ledger writes by action and outcome.
	WritesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blocksd_writes_total",
		Help: "Ledger writes submitted through the gateway, by action and outcome.",
	}, []string{"action", "outcome"})
)
