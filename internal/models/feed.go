// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package models

// Page size bounds for feed reads.
const (
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 20
)

// FeedFilter describes one feed read.
type FeedFilter struct {
	SearchTerm   string       `json:"search,omitempty" validate:"max=200"`
	ContentTypes []SourceKind `json:"types,omitempty" validate:"max=4"`
	Category     string       `json:"category,omitempty" validate:"max=200"`
	PremiumOnly  bool         `json:"premium_only,omitempty"`
	Sort         SortMode     `json:"sort,omitempty" validate:"omitempty,oneof=popularity recency relevance"`
	Page         int          `json:"page" validate:"min=1"`
	PageSize     int          `json:"page_size" validate:"min=1,max=100"`
}

// Offset is the index of the page's first item in the balanced ordering.
func (f *FeedFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Kinds returns the requested source kinds, de-duplicated and in canonical
// order. No explicit types means every kind.
func (f *FeedFilter) Kinds() []SourceKind {
	if len(f.ContentTypes) == 0 {
		return AllSourceKinds
	}
	seen := make(map[SourceKind]bool, len(f.ContentTypes))
	for _, k := range f.ContentTypes {
		seen[k] = true
	}
	kinds := make([]SourceKind, 0, len(seen))
	for _, k := range AllSourceKinds {
		if seen[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// FeedPage is one page of the balanced feed.
type FeedPage struct {
	Items                 []AnnotatedItem `json:"items"`
	Page                  int             `json:"page"`
	PageSize              int             `json:"page_size"`
	TotalEstimate         int64           `json:"total_estimate"`
	CategoriesRepresented []string        `json:"categories_represented"`
	Partial               bool            `json:"partial"`
	UnavailableSources    []SourceKind    `json:"unavailable_sources,omitempty"`
}
