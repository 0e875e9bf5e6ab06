// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package engagement

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postcraft/internal/models"
)

// fakeCounter records counter updates and can be told to fail.
type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	fail   atomic.Bool
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64)}
}

func (c *fakeCounter) IncrementPopularity(ctx context.Context, resourceID string, kind models.EngagementKind, delta int64) error {
	if c.fail.Load() {
		return errors.New("content store unavailable")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[string(kind)+"/"+resourceID] += delta
	return nil
}

func (c *fakeCounter) get(kind models.EngagementKind, resourceID string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[string(kind)+"/"+resourceID]
}

// eventRecorder collects published events.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) PublishEngagement(ctx context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func newTestLedger(store Store) (*Ledger, *fakeCounter, *eventRecorder) {
	counter := newFakeCounter()
	events := &eventRecorder{}
	return NewLedger(store, counter, zerolog.Nop(), WithEventSink(events)), counter, events
}

func TestLedger_LikeIsIdempotent(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ledger, counter, events := newTestLedger(factory(t))
			ctx := context.Background()

			first, err := ledger.Like(ctx, "u1", "r1")
			if err != nil || !first.Created {
				t.Fatalf("first Like: %+v %v", first, err)
			}
			second, err := ledger.Like(ctx, "u1", "r1")
			if err != nil || second.Created {
				t.Fatalf("second Like: %+v %v", second, err)
			}

			if got := counter.get(models.EngagementLike, "r1"); got != 1 {
				t.Errorf("like counter = %d, want 1", got)
			}
			if got := events.types(); len(got) != 1 || got[0] != EventLikeCreated {
				t.Errorf("events = %v, want one like.created", got)
			}
		})
	}
}

func TestLedger_ConcurrentLikeRace(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ledger, counter, _ := newTestLedger(factory(t))

			for trial := 0; trial < 10; trial++ {
				resource := "r" + string(rune('a'+trial))
				var created atomic.Int32
				var wg sync.WaitGroup
				start := make(chan struct{})
				for i := 0; i < 2; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						<-start
						res, err := ledger.Like(context.Background(), "u1", resource)
						if err != nil {
							t.Errorf("Like: %v", err)
							return
						}
						if res.Created {
							created.Add(1)
						}
					}()
				}
				close(start)
				wg.Wait()

				if created.Load() != 1 {
					t.Fatalf("trial %d: %d Like calls reported created, want 1", trial, created.Load())
				}
				if got := counter.get(models.EngagementLike, resource); got != 1 {
					t.Fatalf("trial %d: counter = %d, want 1", trial, got)
				}
			}
		})
	}
}

func TestLedger_Unlike(t *testing.T) {
	t.Parallel()

	ledger, counter, events := newTestLedger(NewMemoryStore())
	ctx := context.Background()

	res, err := ledger.Unlike(ctx, "u1", "r1")
	if err != nil || res.Removed {
		t.Fatalf("Unlike of absent like: %+v %v", res, err)
	}

	if _, err := ledger.Like(ctx, "u1", "r1"); err != nil {
		t.Fatalf("Like: %v", err)
	}
	res, err = ledger.Unlike(ctx, "u1", "r1")
	if err != nil || !res.Removed {
		t.Fatalf("Unlike: %+v %v", res, err)
	}
	res, _ = ledger.Unlike(ctx, "u1", "r1")
	if res.Removed {
		t.Error("second Unlike reported removed")
	}

	if got := counter.get(models.EngagementLike, "r1"); got != 0 {
		t.Errorf("counter = %d, want 0", got)
	}
	want := []string{EventLikeCreated, EventLikeRemoved}
	got := events.types()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestLedger_ToggleLike(t *testing.T) {
	t.Parallel()

	ledger, counter, _ := newTestLedger(NewMemoryStore())
	ctx := context.Background()

	for i, want := range []bool{true, false, true} {
		res, err := ledger.ToggleLike(ctx, "u1", "r1")
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if res.Liked != want {
			t.Errorf("toggle %d: liked = %v, want %v", i, res.Liked, want)
		}
	}
	if got := counter.get(models.EngagementLike, "r1"); got != 1 {
		t.Errorf("counter = %d, want 1", got)
	}
}

func TestLedger_FirstDownloadOnlyCounts(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ledger, counter, events := newTestLedger(factory(t))
			ctx := context.Background()

			var firsts []bool
			for i := 0; i < 3; i++ {
				res, err := ledger.RecordDownload(ctx, "u1", "r1")
				if err != nil {
					t.Fatalf("RecordDownload %d: %v", i, err)
				}
				if res.EventID == "" {
					t.Error("missing download event ID")
				}
				firsts = append(firsts, res.IsFirstDownload)
			}

			if firsts[0] != true || firsts[1] != false || firsts[2] != false {
				t.Errorf("isFirstDownload sequence = %v, want [true false false]", firsts)
			}
			if got := counter.get(models.EngagementDownload, "r1"); got != 1 {
				t.Errorf("download counter = %d, want 1", got)
			}

			history, err := ledger.DownloadHistory(ctx, "u1", 10)
			if err != nil {
				t.Fatalf("DownloadHistory: %v", err)
			}
			if len(history) != 3 {
				t.Errorf("history has %d events, want 3", len(history))
			}
			if len(events.types()) != 3 {
				t.Errorf("published %d events, want 3", len(events.types()))
			}
		})
	}
}

func TestLedger_CounterFailureRollsBack(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ledger, counter, events := newTestLedger(store)
	ctx := context.Background()

	counter.fail.Store(true)
	if _, err := ledger.Like(ctx, "u1", "r1"); err == nil {
		t.Fatal("expected Like to fail when the counter update fails")
	}
	if _, err := ledger.RecordDownload(ctx, "u1", "r1"); err == nil {
		t.Fatal("expected RecordDownload to fail when the counter update fails")
	}

	found, _ := store.BatchExists(ctx, "u1", []string{"r1"}, models.EngagementLike)
	if len(found) != 0 {
		t.Error("like record survived a failed counter update")
	}
	found, _ = store.BatchExists(ctx, "u1", []string{"r1"}, models.EngagementDownload)
	if len(found) != 0 {
		t.Error("download record survived a failed counter update")
	}
	if len(events.types()) != 0 {
		t.Errorf("events published for failed changes: %v", events.types())
	}

	// Once the counter recovers, the like counts normally.
	counter.fail.Store(false)
	res, err := ledger.Like(ctx, "u1", "r1")
	if err != nil || !res.Created {
		t.Fatalf("Like after recovery: %+v %v", res, err)
	}

	// A failed unlike restores the like.
	counter.fail.Store(true)
	if _, err := ledger.Unlike(ctx, "u1", "r1"); err == nil {
		t.Fatal("expected Unlike to fail")
	}
	found, _ = store.BatchExists(ctx, "u1", []string{"r1"}, models.EngagementLike)
	if len(found) != 1 {
		t.Error("like record lost after a failed unlike")
	}
}

func TestLedger_AnonymousUser(t *testing.T) {
	t.Parallel()

	ledger, _, _ := newTestLedger(NewMemoryStore())
	ctx := context.Background()

	if _, err := ledger.Like(ctx, "", "r1"); !errors.Is(err, ErrAnonymousUser) {
		t.Errorf("Like err = %v", err)
	}
	if _, err := ledger.Unlike(ctx, "", "r1"); !errors.Is(err, ErrAnonymousUser) {
		t.Errorf("Unlike err = %v", err)
	}
	if _, err := ledger.RecordDownload(ctx, "", "r1"); !errors.Is(err, ErrAnonymousUser) {
		t.Errorf("RecordDownload err = %v", err)
	}
	if _, err := ledger.DownloadHistory(ctx, "", 5); !errors.Is(err, ErrAnonymousUser) {
		t.Errorf("DownloadHistory err = %v", err)
	}
}

func TestLedger_Annotate(t *testing.T) {
	t.Parallel()

	ledger, _, _ := newTestLedger(NewMemoryStore())
	ctx := context.Background()

	if _, err := ledger.Like(ctx, "u1", "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.RecordDownload(ctx, "u1", "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.Like(ctx, "u2", "c"); err != nil {
		t.Fatal(err)
	}

	items := []models.AnnotatedItem{
		{ContentItem: models.ContentItem{ID: "a"}},
		{ContentItem: models.ContentItem{ID: "b"}},
		{ContentItem: models.ContentItem{ID: "c"}},
	}
	if err := ledger.Annotate(ctx, items, "u1"); err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	if !items[0].IsLiked || items[0].IsDownloaded {
		t.Errorf("a: %+v", items[0])
	}
	if items[1].IsLiked || !items[1].IsDownloaded {
		t.Errorf("b: %+v", items[1])
	}
	if items[2].IsLiked || items[2].IsDownloaded {
		t.Errorf("c belongs to another user: %+v", items[2])
	}

	anon := []models.AnnotatedItem{{ContentItem: models.ContentItem{ID: "a"}}}
	if err := ledger.Annotate(ctx, anon, ""); err != nil || anon[0].IsLiked {
		t.Errorf("anonymous annotate: %+v %v", anon[0], err)
	}
}

// conflictStore reports an impossible state on every write.
type conflictStore struct {
	*MemoryStore
}

func (conflictStore) UpsertIfAbsent(ctx context.Context, key models.EngagementKey, at time.Time) (bool, error) {
	return false, ErrConflictingEngagementState
}

func TestLedger_ConflictingStatePropagates(t *testing.T) {
	t.Parallel()

	ledger, counter, _ := newTestLedger(conflictStore{NewMemoryStore()})
	_, err := ledger.Like(context.Background(), "u1", "r1")
	if !errors.Is(err, ErrConflictingEngagementState) {
		t.Errorf("err = %v, want ErrConflictingEngagementState", err)
	}
	if got := counter.get(models.EngagementLike, "r1"); got != 0 {
		t.Errorf("counter moved on conflict: %d", got)
	}
}
