// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the feed engine:
// - Feed assembly and per-source fetches
// - Engagement ledger transitions and store operations
// - Content store (DuckDB) queries
// - API endpoint latency and throughput
// - Circuit breakers, caches and the event bus

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Feed Metrics
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed page builds",
		},
		[]string{"outcome"}, // "complete", "partial", "invalid", "unavailable"
	)

	FeedBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_build_duration_seconds",
			Help:    "Time to assemble one feed page",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	FeedCategoriesPerPage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_categories_per_page",
			Help:    "Distinct categories represented on a served page",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_source_fetch_duration_seconds",
			Help:    "Duration of content source queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SourceFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_source_failures_total",
			Help: "Content source queries that ended unavailable",
		},
		[]string{"source", "reason"}, // reason: "timeout", "circuit_open", "error"
	)

	SourceFetchRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_source_retries_total",
			Help: "Retries issued against content sources",
		},
		[]string{"source"},
	)

	// Engagement Metrics
	EngagementTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_transitions_total",
			Help: "Engagement ledger outcomes",
		},
		[]string{"kind", "result"}, // result: "created", "removed", "duplicate", "noop"
	)

	EngagementStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_store_operations_total",
			Help: "Engagement record store operations",
		},
		[]string{"backend", "operation", "outcome"},
	)

	EngagementCompensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_compensations_total",
			Help: "Records rolled back after a failed popularity update",
		},
		[]string{"kind"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_published_total",
			Help: "Engagement events handed to the event bus",
		},
		[]string{"topic", "outcome"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_consumed_total",
			Help: "Engagement events received from the event bus",
		},
		[]string{"event_type", "outcome"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry or invalidation)",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordFeedBuild records one GetPage call.
func RecordFeedBuild(outcome string, categories int, duration time.Duration) {
	FeedRequestsTotal.WithLabelValues(outcome).Inc()
	FeedBuildDuration.Observe(duration.Seconds())
	if categories > 0 {
		FeedCategoriesPerPage.Observe(float64(categories))
	}
}

// RecordSourceFetch records a content source query and, on failure, why it failed.
func RecordSourceFetch(source string, duration time.Duration, failureReason string) {
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if failureReason != "" {
		SourceFetchFailures.WithLabelValues(source, failureReason).Inc()
	}
}

// RecordEngagement records a ledger outcome.
func RecordEngagement(kind, result string) {
	EngagementTransitions.WithLabelValues(kind, result).Inc()
}

// RecordEngagementStoreOp records one record store call.
func RecordEngagementStoreOp(backend, operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	EngagementStoreOperations.WithLabelValues(backend, operation, outcome).Inc()
}

// RecordEventPublish records an event bus publish.
func RecordEventPublish(topic string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	EventsPublished.WithLabelValues(topic, outcome).Inc()
}

// RecordEventConsumed records one delivered event and how its handler fared.
func RecordEventConsumed(eventType, outcome string) {
	EventsConsumed.WithLabelValues(eventType, outcome).Inc()
}
