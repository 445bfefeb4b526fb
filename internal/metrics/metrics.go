// Package metrics defines the Prometheus instrumentation for the cost API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/convergio/azure-cost-api/internal/version"
)

// Metrics holds the counters updated by the cost service and query client
type Metrics struct {
	// CacheHits counts cache hits per logical query key
	CacheHits *prometheus.CounterVec

	// CacheMisses counts cache misses per logical query key
	CacheMisses *prometheus.CounterVec

	// QueryRetries counts 429 responses from the Cost Management API
	QueryRetries prometheus.Counter

	// QueryErrors counts non-retryable upstream failures
	QueryErrors prometheus.Counter

	// DegradedResponses counts queries that exhausted their retry budget and
	// returned an empty dataset instead of failing
	DegradedResponses prometheus.Counter

	buildInfo *prometheus.GaugeVec
}

// New creates the metric set and registers it with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cost_api_cache_hits_total",
				Help: "Total number of cost result cache hits",
			},
			[]string{"key"},
		),
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cost_api_cache_misses_total",
				Help: "Total number of cost result cache misses",
			},
			[]string{"key"},
		),
		QueryRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cost_api_query_retries_total",
				Help: "Total number of rate-limited (429) responses from the Cost Management API",
			},
		),
		QueryErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cost_api_query_errors_total",
				Help: "Total number of non-retryable Cost Management API errors",
			},
		),
		DegradedResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cost_api_degraded_responses_total",
				Help: "Total number of queries that exhausted retries and returned an empty dataset",
			},
		),
		buildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cost_api_build_info",
				Help: "Build version information",
			},
			[]string{"version", "git_commit", "build_date", "go_version"},
		),
	}

	versionInfo := version.Info()
	m.buildInfo.With(prometheus.Labels{
		"version":    versionInfo["version"],
		"git_commit": versionInfo["git_commit"],
		"build_date": versionInfo["build_date"],
		"go_version": versionInfo["go_version"],
	}).Set(1)

	return m
}

// NewTestMetrics creates a metric set on a throwaway registry, for tests
func NewTestMetrics() *Metrics {
	return New(prometheus.NewRegistry())
}
