// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package content

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tomtom215/postcraft/internal/models"
)

// MemoryStore keeps content in process. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*models.ContentItem
}

// NewMemoryStore creates a store holding items.
func NewMemoryStore(items ...models.ContentItem) *MemoryStore {
	s := &MemoryStore{items: make(map[string]*models.ContentItem, len(items))}
	s.Upsert(items...)
	return s
}

// Upsert inserts or replaces items by ID.
func (s *MemoryStore) Upsert(items ...models.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range items {
		item := items[i]
		item.Tags = append([]string(nil), item.Tags...)
		s.items[item.ID] = &item
	}
}

// QuerySource implements Store.
func (s *MemoryStore) QuerySource(ctx context.Context, kind models.SourceKind, q SourceQuery) (SourceResult, error) {
	if err := ctx.Err(); err != nil {
		return SourceResult{}, err
	}

	s.mu.RLock()
	matched := make([]models.ContentItem, 0)
	for _, item := range s.items {
		if item.SourceKind == kind && Matches(item, q) {
			matched = append(matched, copyItem(item))
		}
	}
	s.mu.RUnlock()

	models.SortItems(matched, q.Sort.Resolve(q.SearchTerm), q.SearchTerm)

	return SourceResult{
		Items: LimitPerCategory(matched, q.PerCategoryLimit),
		Total: int64(len(matched)),
	}, nil
}

// IncrementPopularity implements Store.
func (s *MemoryStore) IncrementPopularity(ctx context.Context, resourceID string, kind models.EngagementKind, delta int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[resourceID]
	if !ok {
		return fmt.Errorf("increment %s on %s: %w", kind, resourceID, ErrNotFound)
	}
	var counter *int64
	switch kind {
	case models.EngagementLike:
		counter = &item.LikeCount
	case models.EngagementDownload:
		counter = &item.DownloadCount
	default:
		return fmt.Errorf("increment %s: unknown engagement kind", kind)
	}
	before := *counter
	*counter = clamp(before + delta)
	item.PopularityScore = clamp(item.PopularityScore + *counter - before)
	return nil
}

// Lookup implements Store.
func (s *MemoryStore) Lookup(ctx context.Context, resourceID string) (*models.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[resourceID]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", resourceID, ErrNotFound)
	}
	c := copyItem(item)
	return &c, nil
}

func copyItem(item *models.ContentItem) models.ContentItem {
	c := *item
	c.Tags = append([]string(nil), item.Tags...)
	return c
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
