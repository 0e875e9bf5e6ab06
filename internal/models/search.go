// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package models

import (
	"sort"
	"strings"
)

// Relevance weights for a search term found in each field.
const (
	RelevanceTitleWeight    = 4
	RelevanceTagWeight      = 2
	RelevanceCategoryWeight = 1
)

// NormalizeSearchTerm trims and lower-cases a search term.
func NormalizeSearchTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// MatchesSearch reports whether term occurs, case-insensitively, in the item's
// title, any tag, or its category name. The category match applies to every
// source kind, so an image titled "Quote 12" in the "Motivational" business
// category matches "motivational". An empty term matches everything.
func MatchesSearch(item *ContentItem, term string) bool {
	return RelevanceScore(item, term) > 0 || NormalizeSearchTerm(term) == ""
}

// RelevanceScore weights where term was found. Zero means no match.
func RelevanceScore(item *ContentItem, term string) int {
	needle := NormalizeSearchTerm(term)
	if needle == "" {
		return 0
	}

	score := 0
	if strings.Contains(strings.ToLower(item.Title), needle) {
		score += RelevanceTitleWeight
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			score += RelevanceTagWeight
			break
		}
	}
	if strings.Contains(strings.ToLower(item.Category), needle) {
		score += RelevanceCategoryWeight
	}
	return score
}

// SortMode selects the order of items inside a category pool.
type SortMode string

const (
	SortPopularity SortMode = "popularity"
	SortRecency    SortMode = "recency"
	SortRelevance  SortMode = "relevance"
)

// Valid reports whether m is a known mode. The empty mode is valid and means
// "pick a default".
func (m SortMode) Valid() bool {
	switch m {
	case "", SortPopularity, SortRecency, SortRelevance:
		return true
	}
	return false
}

// Resolve returns the effective mode: relevance when searching, popularity otherwise.
func (m SortMode) Resolve(searchTerm string) SortMode {
	if m != "" {
		return m
	}
	if NormalizeSearchTerm(searchTerm) != "" {
		return SortRelevance
	}
	return SortPopularity
}

// Less returns the strict ordering for mode. Every ordering ends on the item
// ID so results are total and deterministic.
func Less(mode SortMode, searchTerm string) func(a, b *ContentItem) bool {
	switch mode {
	case SortRecency:
		return lessByRecency
	case SortRelevance:
		term := NormalizeSearchTerm(searchTerm)
		return func(a, b *ContentItem) bool {
			ra, rb := RelevanceScore(a, term), RelevanceScore(b, term)
			if ra != rb {
				return ra > rb
			}
			return lessByPopularity(a, b)
		}
	default:
		return lessByPopularity
	}
}

// SortItems orders items in place for mode.
func SortItems(items []ContentItem, mode SortMode, searchTerm string) {
	less := Less(mode, searchTerm)
	sort.SliceStable(items, func(i, j int) bool {
		return less(&items[i], &items[j])
	})
}

func lessByPopularity(a, b *ContentItem) bool {
	if a.PopularityScore != b.PopularityScore {
		return a.PopularityScore > b.PopularityScore
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func lessByRecency(a, b *ContentItem) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if a.PopularityScore != b.PopularityScore {
		return a.PopularityScore > b.PopularityScore
	}
	return a.ID < b.ID
}
