// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postcraft/internal/access"
	"github.com/tomtom215/postcraft/internal/content"
	"github.com/tomtom215/postcraft/internal/models"
)

var fixtureTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// scriptedStore wraps a MemoryStore and can make individual sources
// misbehave.
type scriptedStore struct {
	*content.MemoryStore

	mu        sync.Mutex
	calls     map[models.SourceKind]int
	behaviour map[models.SourceKind]func(ctx context.Context, call int) error
}

func newScriptedStore(items ...models.ContentItem) *scriptedStore {
	return &scriptedStore{
		MemoryStore: content.NewMemoryStore(items...),
		calls:       make(map[models.SourceKind]int),
		behaviour:   make(map[models.SourceKind]func(ctx context.Context, call int) error),
	}
}

func (s *scriptedStore) on(kind models.SourceKind, fn func(ctx context.Context, call int) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.behaviour[kind] = fn
}

func (s *scriptedStore) callCount(kind models.SourceKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[kind]
}

func (s *scriptedStore) QuerySource(ctx context.Context, kind models.SourceKind, q content.SourceQuery) (content.SourceResult, error) {
	s.mu.Lock()
	s.calls[kind]++
	call := s.calls[kind]
	fn := s.behaviour[kind]
	s.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, call); err != nil {
			return content.SourceResult{}, err
		}
	}
	return s.MemoryStore.QuerySource(ctx, kind, q)
}

func hang(ctx context.Context, _ int) error {
	<-ctx.Done()
	return ctx.Err()
}

func failAlways(context.Context, int) error {
	return errors.New("connection reset by peer")
}

func failFirst(_ context.Context, call int) error {
	if call == 1 {
		return errors.New("connection reset by peer")
	}
	return nil
}

// annotatorFunc adapts a function to Annotator.
type annotatorFunc func(ctx context.Context, items []models.AnnotatedItem, userID string) error

func (f annotatorFunc) Annotate(ctx context.Context, items []models.AnnotatedItem, userID string) error {
	return f(ctx, items, userID)
}

func testConfig() Config {
	return Config{
		SourceTimeout:      500 * time.Millisecond,
		MaxRetries:         0,
		RetryDelay:         time.Millisecond,
		BreakerMinRequests: 1000,
	}
}

func newTestAssembler(t interface{ Cleanup(func()) }, store content.Store, annotator Annotator, cfg Config) *Assembler {
	a := NewAssembler(store, access.NewGate(""), annotator, cfg, zerolog.Nop())
	t.Cleanup(a.Close)
	return a
}

func newItem(id string, kind models.SourceKind, category string, popularity int64) models.ContentItem {
	return models.ContentItem{
		ID:              id,
		SourceKind:      kind,
		Category:        category,
		Title:           id,
		PopularityScore: popularity,
		Status:          models.StatusActive,
		CreatedAt:       fixtureTime,
		AssetURL:        "https://cdn.example/" + id,
	}
}

// mixedCatalog spreads n items over categories and kinds so most categories
// hold more than one kind.
func mixedCatalog(n int) []models.ContentItem {
	categories := []string{"Diwali", "Wedding", "Birthday", "Sale", "Motivational"}
	items := make([]models.ContentItem, 0, n)
	for i := 0; i < n; i++ {
		kind := models.AllSourceKinds[(i/2)%len(models.AllSourceKinds)]
		category := categories[(i*7)%len(categories)]
		item := newItem(fmt.Sprintf("item-%03d", i), kind, category, int64((i*37)%11))
		item.CreatedAt = fixtureTime.Add(time.Duration(i%5) * time.Hour)
		items = append(items, item)
	}
	return items
}

func pageIDs(items []models.AnnotatedItem) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func pageFilter(page, size int) models.FeedFilter {
	return models.FeedFilter{Page: page, PageSize: size}
}
