// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and are
exposed at /metrics by the API router:

	curl http://localhost:3857/metrics

# Available Metrics

Feed:
  - feed_requests_total{outcome}: page builds by outcome
  - feed_build_duration_seconds: end-to-end assembly time
  - feed_categories_per_page: diversity of served pages
  - feed_source_fetch_duration_seconds{source}, feed_source_failures_total{source,reason}
  - feed_source_retries_total{source}

Engagement:
  - engagement_transitions_total{kind,result}
  - engagement_store_operations_total{backend,operation,outcome}
  - engagement_compensations_total{kind}
  - engagement_events_published_total{topic,outcome}

Infrastructure:
  - duckdb_query_duration_seconds, duckdb_query_errors_total
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - cache_hits_total, cache_misses_total, cache_evictions_total
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	page, err := assembler.GetPage(ctx, filter, user)
	metrics.RecordFeedBuild("complete", len(page.CategoriesRepresented), time.Since(start))
*/
package metrics
