// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

/*
Package feed assembles balanced, paginated content feeds and fronts the
engagement operations that accompany them.

# Page assembly

Assembler.GetPage answers one FeedFilter for one requester:

 1. The filter is validated; bad pages, page sizes, sorts or content types
    fail with ErrInvalidQuery.
 2. Every requested source kind is queried concurrently. Each source gets its
    own SourceTimeout budget, a single retry for transient failures, and a
    circuit breaker that fails fast while the source keeps failing.
 3. Matches are grouped by category. When one kind spans several categories
    the kinds inside a category are themselves round-robined, so a category
    with templates and videos does not show only templates.
 4. The balance package interleaves the category pools and returns the
    requested window of the canonical order.
 5. The access gate locks premium items and the engagement annotator marks
    liked and downloaded items.

A source that times out or fails does not fail the page. The page is built
from the remaining sources and reports Partial with the missing kinds listed
in UnavailableSources. Only when every requested source fails is
ErrFeedUnavailable returned.

# Caching

With Config.CacheTTL set, the balanced window (before gating and annotation)
is cached per normalised filter and concurrent identical misses share one
build. Gating and engagement flags are always computed per request.

# Service

Service ties the assembler to the engagement ledger, the content store and
an optional SubscriptionProvider, and is what the HTTP layer calls.
*/
package feed
