// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

// Package database provides the DuckDB-backed content store.
//
// # Overview
//
// DB owns a single DuckDB database holding the content catalog and the
// subscription table. It implements content.Store for the feed engine and
// access.SubscriptionProvider for identity resolution.
//
// # Files
//
//   - database.go: connection lifecycle and pool configuration
//   - schema.go: table and index creation
//   - content_store.go: per-source queries, counter updates and lookups
//   - subscriptions.go: subscription reads and writes
//   - seed.go: demo catalog for local runs
//
// # Per-category limits
//
// QuerySource caps the rows returned per category with a window function:
//
//	QUALIFY ROW_NUMBER() OVER (PARTITION BY group_key ORDER BY ...) <= ?
//
// while COUNT(*) OVER () still reports the number of matches before the cap,
// which the feed uses as its total estimate.
//
// # Counters
//
// IncrementPopularity is one UPDATE statement that clamps the counter at
// zero and moves popularity_score by the change actually applied, so
// concurrent likes and unlikes never drive either below zero.
package database
