// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

// Package content defines the read contract the feed engine consumes from a
// content store, plus an in-memory store used by tests and local runs.
//
// Stores own content items and their counters. The engine reads per source
// kind and only ever changes counters through IncrementPopularity.
package content

import (
	"context"
	"errors"

	"github.com/tomtom215/postcraft/internal/models"
)

// ErrNotFound is returned when a resource ID is unknown to the store.
var ErrNotFound = errors.New("content not found")

// SourceQuery selects items from one source kind.
type SourceQuery struct {
	// Category matches the category name (case-insensitive) or category ID.
	Category    string
	SearchTerm  string
	ActiveOnly  bool
	PremiumOnly bool
	Sort        models.SortMode
	// PerCategoryLimit caps the items returned per category. Zero means no cap.
	PerCategoryLimit int
}

// SourceResult is the answer to a SourceQuery. Items are ordered by the
// query's sort; Total counts every match before the per-category cap.
type SourceResult struct {
	Items []models.ContentItem
	Total int64
}

// Store is the content store contract.
type Store interface {
	// QuerySource returns matching items of one kind.
	QuerySource(ctx context.Context, kind models.SourceKind, q SourceQuery) (SourceResult, error)

	// IncrementPopularity adjusts the counter for kind by delta and the
	// popularity score with it. Counters never go below zero.
	IncrementPopularity(ctx context.Context, resourceID string, kind models.EngagementKind, delta int64) error

	// Lookup returns one item by ID, or ErrNotFound.
	Lookup(ctx context.Context, resourceID string) (*models.ContentItem, error)
}

// Matches reports whether item satisfies q, ignoring sort and limits. Stores
// that cannot express the relaxed search natively can post-filter with it.
func Matches(item *models.ContentItem, q SourceQuery) bool {
	if q.ActiveOnly && !item.Eligible() {
		return false
	}
	if q.PremiumOnly && !item.IsPremium {
		return false
	}
	if q.Category != "" && !MatchesCategory(item, q.Category) {
		return false
	}
	return models.MatchesSearch(item, q.SearchTerm)
}

// MatchesCategory compares a category filter against name and ID.
func MatchesCategory(item *models.ContentItem, category string) bool {
	return equalFold(item.Category, category) || (item.CategoryID != "" && item.CategoryID == category)
}

// LimitPerCategory keeps the first limit items of each category, preserving order.
func LimitPerCategory(items []models.ContentItem, limit int) []models.ContentItem {
	if limit <= 0 {
		return items
	}
	counts := make(map[string]int)
	out := items[:0:0]
	for i := range items {
		key := items[i].CategoryKey()
		if counts[key] >= limit {
			continue
		}
		counts[key]++
		out = append(out, items[i])
	}
	return out
}
