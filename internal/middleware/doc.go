// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

/*
Package middleware provides the chi middleware shared by every API route.

Key Components:

  - RequestID: accepts or generates an X-Request-ID and stores it, together
    with a fresh correlation ID, in the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge labelled by
    the chi route pattern so path parameters do not explode cardinality
  - AccessLog: one structured zerolog line per request

Order matters: RequestID runs first so later middleware and handlers log with
the request's IDs.

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(logger))
*/
package middleware
