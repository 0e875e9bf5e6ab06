// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

// Package balance interleaves per-category candidate pools into one feed order
// that no single category can dominate.
//
// # Canonical Order
//
// The balanced order is a round-robin over pools. Pools are ordered by name,
// then by ID. In round r every pool that still has an item at index r
// contributes exactly that item:
//
//	pools:  Birthday [b0 b1]   Wedding [w0 w1 w2 w3]
//	order:  b0 w0 b1 w1 w2 w3
//
// The sequence depends only on the pools, so it is identical across calls and
// across pages.
//
// # Index Addressing
//
// Interleave returns the slice [offset, offset+count) of the canonical order
// without producing the prefix. Runs of rounds with the same number of live
// pools are skipped arithmetically, so page N costs O(pools * distinct lengths)
// to locate plus O(count) to emit.
//
// # Guarantees
//
//   - Every non-empty pool appears within the first len(nonEmpty) items.
//   - The first n items cover at least min(len(nonEmpty), n) pools.
//   - A single non-empty pool is returned in its own order.
//   - Asking past the end yields a short (possibly empty) result.
//
// # Thread Safety
//
// All functions are pure; pools are never mutated.
package balance
