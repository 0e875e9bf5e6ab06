// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postcraft/internal/engagement"
	"github.com/tomtom215/postcraft/internal/models"
)

func TestGetPage_WeddingBirthdayScenario(t *testing.T) {
	t.Parallel()

	var items []models.ContentItem
	for i := 0; i < 40; i++ {
		items = append(items, newItem(fmt.Sprintf("wedding-%02d", i), models.SourceTemplate, "Wedding", int64(100-i)))
	}
	for i := 0; i < 5; i++ {
		items = append(items, newItem(fmt.Sprintf("birthday-%02d", i), models.SourceGreeting, "Birthday", int64(10-i)))
	}
	corporate := newItem("corporate-00", models.SourceVideo, "Corporate", 999)
	corporate.Status = models.StatusInactive
	items = append(items, corporate)

	a := newTestAssembler(t, newScriptedStore(items...), nil, testConfig())
	page, err := a.GetPage(context.Background(), pageFilter(1, 10), models.AnonymousUser())
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}

	if len(page.Items) != 10 {
		t.Fatalf("len(items) = %d, want 10", len(page.Items))
	}
	if got := page.CategoriesRepresented; len(got) != 2 || got[0] != "Birthday" || got[1] != "Wedding" {
		t.Errorf("categories = %v, want [Birthday Wedding]", got)
	}
	birthdays := 0
	for _, it := range page.Items {
		if it.Category == "Corporate" {
			t.Errorf("inactive item %s served", it.ID)
		}
		if it.Category == "Birthday" {
			birthdays++
		}
	}
	if birthdays != 5 {
		t.Errorf("birthday items = %d, want 5", birthdays)
	}
	if page.Items[0].ID != "birthday-00" || page.Items[1].ID != "wedding-00" {
		t.Errorf("page starts %v, want birthday-00, wedding-00", pageIDs(page.Items[:2]))
	}
	if page.TotalEstimate != 45 {
		t.Errorf("TotalEstimate = %d, want 45", page.TotalEstimate)
	}
	if page.Partial {
		t.Error("page unexpectedly partial")
	}
}

func TestGetPage_RelaxedCategorySearch(t *testing.T) {
	t.Parallel()

	quote := newItem("img-12", models.SourceBusinessImage, "Motivational", 1)
	quote.Title = "Quote 12"
	other := newItem("tpl-1", models.SourceTemplate, "Offers", 50)
	other.Title = "Flash Sale"

	a := newTestAssembler(t, newScriptedStore(quote, other), nil, testConfig())

	for _, term := range []string{"motivational", "MOTIVATIONAL", "  Motiv "} {
		f := pageFilter(1, 20)
		f.SearchTerm = term
		page, err := a.GetPage(context.Background(), f, models.AnonymousUser())
		if err != nil {
			t.Fatalf("GetPage(%q): %v", term, err)
		}
		if got := pageIDs(page.Items); len(got) != 1 || got[0] != "img-12" {
			t.Errorf("search %q = %v, want [img-12]", term, got)
		}
	}
}

func TestGetPage_PaginationCompleteness(t *testing.T) {
	t.Parallel()

	a := newTestAssembler(t, newScriptedStore(mixedCatalog(73)...), nil, testConfig())
	ctx := context.Background()

	full, err := a.GetPage(ctx, pageFilter(1, 100), models.AnonymousUser())
	if err != nil {
		t.Fatalf("GetPage full: %v", err)
	}
	if len(full.Items) != 73 {
		t.Fatalf("full page has %d items, want 73", len(full.Items))
	}
	canonical := pageIDs(full.Items)

	for _, size := range []int{1, 7, 10, 20} {
		var collected []string
		for page := 1; ; page++ {
			p, err := a.GetPage(ctx, pageFilter(page, size), models.AnonymousUser())
			if err != nil {
				t.Fatalf("size %d page %d: %v", size, page, err)
			}
			if len(p.Items) > size {
				t.Fatalf("size %d page %d returned %d items", size, page, len(p.Items))
			}
			collected = append(collected, pageIDs(p.Items)...)
			if len(p.Items) < size {
				break
			}
		}

		if strings.Join(collected, ",") != strings.Join(canonical, ",") {
			t.Fatalf("page size %d: pages do not concatenate to the canonical order\n got  %v\n want %v", size, collected, canonical)
		}
	}
}

func TestGetPage_DiversityOnFirstPage(t *testing.T) {
	t.Parallel()

	a := newTestAssembler(t, newScriptedStore(mixedCatalog(60)...), nil, testConfig())
	page, err := a.GetPage(context.Background(), pageFilter(1, 5), models.AnonymousUser())
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got := len(page.CategoriesRepresented); got != 5 {
		t.Errorf("first page covers %d categories, want 5 (%v)", got, page.CategoriesRepresented)
	}
}

func TestGetPage_KindsInterleaveInsideCategory(t *testing.T) {
	t.Parallel()

	store := newScriptedStore(
		newItem("t1", models.SourceTemplate, "Diwali", 90),
		newItem("t2", models.SourceTemplate, "Diwali", 80),
		newItem("t3", models.SourceTemplate, "Diwali", 70),
		newItem("v1", models.SourceVideo, "Diwali", 5),
	)
	a := newTestAssembler(t, store, nil, testConfig())

	page, err := a.GetPage(context.Background(), pageFilter(1, 4), models.AnonymousUser())
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	want := []string{"t1", "v1", "t2", "t3"}
	if got := pageIDs(page.Items); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestGetPage_Deterministic(t *testing.T) {
	t.Parallel()

	a := newTestAssembler(t, newScriptedStore(mixedCatalog(40)...), nil, testConfig())
	f := pageFilter(2, 9)

	first, err := a.GetPage(context.Background(), f, models.AnonymousUser())
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := a.GetPage(context.Background(), f, models.AnonymousUser())
		if err != nil {
			t.Fatalf("GetPage: %v", err)
		}
		if strings.Join(pageIDs(again.Items), ",") != strings.Join(pageIDs(first.Items), ",") {
			t.Fatalf("call %d returned a different page", i)
		}
	}
}

func TestGetPage_InvalidQuery(t *testing.T) {
	t.Parallel()

	a := newTestAssembler(t, newScriptedStore(), nil, testConfig())

	tests := []struct {
		name   string
		mutate func(f *models.FeedFilter)
	}{
		{"page zero", func(f *models.FeedFilter) { f.Page = 0 }},
		{"negative page", func(f *models.FeedFilter) { f.Page = -3 }},
		{"page size zero", func(f *models.FeedFilter) { f.PageSize = 0 }},
		{"page size too large", func(f *models.FeedFilter) { f.PageSize = 101 }},
		{"unknown sort", func(f *models.FeedFilter) { f.Sort = "random" }},
		{"unknown content type", func(f *models.FeedFilter) { f.ContentTypes = []models.SourceKind{9} }},
		{"search too long", func(f *models.FeedFilter) { f.SearchTerm = strings.Repeat("x", 201) }},
		{"offset wraps to zero", func(f *models.FeedFilter) { f.Page, f.PageSize = 1<<58+1, 64 }},
		{"offset wraps negative", func(f *models.FeedFilter) { f.Page, f.PageSize = math.MaxInt/2, 20 }},
		{"max page", func(f *models.FeedFilter) { f.Page = math.MaxInt }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := pageFilter(1, 20)
			tt.mutate(&f)

			_, err := a.GetPage(context.Background(), f, models.AnonymousUser())
			if !errors.Is(err, ErrInvalidQuery) {
				t.Fatalf("err = %v, want ErrInvalidQuery", err)
			}
			var qe *QueryError
			if !errors.As(err, &qe) || len(qe.Details()) == 0 {
				t.Errorf("expected *QueryError with details, got %T", err)
			}
		})
	}

	if _, err := a.GetPage(context.Background(), pageFilter(1, 100), models.AnonymousUser()); err != nil {
		t.Errorf("page size 100 rejected: %v", err)
	}

	last := pageFilter((math.MaxInt-20)/20+1, 20)
	page, err := a.GetPage(context.Background(), last, models.AnonymousUser())
	if err != nil {
		t.Fatalf("last addressable page rejected: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("last addressable page returned %d items, want 0", len(page.Items))
	}
}

func TestGetPage_SlowSourceDegradesToPartialPage(t *testing.T) {
	t.Parallel()

	store := newScriptedStore(mixedCatalog(40)...)
	store.on(models.SourceVideo, hang)

	cfg := testConfig()
	cfg.SourceTimeout = 50 * time.Millisecond
	a := newTestAssembler(t, store, nil, cfg)

	start := time.Now()
	page, err := a.GetPage(context.Background(), pageFilter(1, 20), models.AnonymousUser())
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("GetPage took %v, slow source was not bounded", elapsed)
	}

	if !page.Partial {
		t.Error("page not marked partial")
	}
	if len(page.UnavailableSources) != 1 || page.UnavailableSources[0] != models.SourceVideo {
		t.Errorf("unavailable = %v, want [video]", page.UnavailableSources)
	}
	if len(page.Items) == 0 {
		t.Fatal("partial page is empty")
	}
	for _, it := range page.Items {
		if it.SourceKind == models.SourceVideo {
			t.Errorf("video %s served from an unavailable source", it.ID)
		}
	}
}

func TestGetPage_AllSourcesFail(t *testing.T) {
	t.Parallel()

	store := newScriptedStore(mixedCatalog(10)...)
	for _, kind := range models.AllSourceKinds {
		store.on(kind, failAlways)
	}
	a := newTestAssembler(t, store, nil, testConfig())

	_, err := a.GetPage(context.Background(), pageFilter(1, 20), models.AnonymousUser())
	if !errors.Is(err, ErrFeedUnavailable) {
		t.Fatalf("err = %v, want ErrFeedUnavailable", err)
	}
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want wrapped ErrSourceUnavailable", err)
	}
}

func TestGetPage_SingleRequestedSourceFails(t *testing.T) {
	t.Parallel()

	store := newScriptedStore(mixedCatalog(10)...)
	store.on(models.SourceGreeting, failAlways)
	a := newTestAssembler(t, store, nil, testConfig())

	f := pageFilter(1, 20)
	f.ContentTypes = []models.SourceKind{models.SourceGreeting}
	if _, err := a.GetPage(context.Background(), f, models.AnonymousUser()); !errors.Is(err, ErrFeedUnavailable) {
		t.Fatalf("err = %v, want ErrFeedUnavailable", err)
	}
}

func TestGetPage_RetriesTransientFailureOnce(t *testing.T) {
	t.Parallel()

	store := newScriptedStore(mixedCatalog(20)...)
	store.on(models.SourceTemplate, failFirst)

	cfg := testConfig()
	cfg.MaxRetries = 1
	a := newTestAssembler(t, store, nil, cfg)

	page, err := a.GetPage(context.Background(), pageFilter(1, 20), models.AnonymousUser())
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page.Partial {
		t.Errorf("retry did not recover the source, unavailable = %v", page.UnavailableSources)
	}
	if got := store.callCount(models.SourceTemplate); got != 2 {
		t.Errorf("template queried %d times, want 2", got)
	}
	if got := store.callCount(models.SourceVideo); got != 1 {
		t.Errorf("healthy source queried %d times, want 1", got)
	}
}

func TestGetPage_TimeoutIsNotRetried(t *testing.T) {
	t.Parallel()

	store := newScriptedStore(mixedCatalog(20)...)
	store.on(models.SourceVideo, hang)

	cfg := testConfig()
	cfg.MaxRetries = 1
	cfg.SourceTimeout = 30 * time.Millisecond
	a := newTestAssembler(t, store, nil, cfg)

	if _, err := a.GetPage(context.Background(), pageFilter(1, 20), models.AnonymousUser()); err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got := store.callCount(models.SourceVideo); got != 1 {
		t.Errorf("timed out source queried %d times, want 1", got)
	}
}

func TestGetPage_BreakerFailsFast(t *testing.T) {
	t.Parallel()

	store := newScriptedStore(mixedCatalog(20)...)
	store.on(models.SourceTemplate, failAlways)

	cfg := testConfig()
	cfg.BreakerMinRequests = 1
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerTimeout = time.Hour
	a := newTestAssembler(t, store, nil, cfg)

	for i := 0; i < 3; i++ {
		page, err := a.GetPage(context.Background(), pageFilter(1, 10), models.AnonymousUser())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if !page.Partial {
			t.Fatalf("call %d: page not partial", i)
		}
	}

	if got := store.callCount(models.SourceTemplate); got != 1 {
		t.Errorf("open breaker let %d calls through, want 1", got)
	}

	var state string
	for _, h := range a.SourceHealth() {
		if h.Source == models.SourceTemplate.String() {
			state = h.State
		} else if h.State != "closed" {
			t.Errorf("healthy source %s state %s", h.Source, h.State)
		}
	}
	if state != "open" {
		t.Errorf("template breaker state = %q, want open", state)
	}
}

func TestGetPage_CancelledContext(t *testing.T) {
	t.Parallel()

	a := newTestAssembler(t, newScriptedStore(mixedCatalog(10)...), nil, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.GetPage(ctx, pageFilter(1, 10), models.AnonymousUser())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestGetPage_PremiumGating(t *testing.T) {
	t.Parallel()

	free := newItem("free-1", models.SourceTemplate, "Sale", 10)
	premium := newItem("prem-1", models.SourceVideo, "Sale", 20)
	premium.IsPremium = true

	a := newTestAssembler(t, newScriptedStore(free, premium), nil, testConfig())

	tests := []struct {
		name       string
		requester  models.UserContext
		wantLocked bool
	}{
		{"anonymous", models.AnonymousUser(), true},
		{"lapsed", models.UserContext{UserID: "u1"}, true},
		{"subscriber", models.UserContext{UserID: "u2", Subscription: models.Subscription{Active: true}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page, err := a.GetPage(context.Background(), pageFilter(1, 10), tt.requester)
			if err != nil {
				t.Fatalf("GetPage: %v", err)
			}
			if len(page.Items) != 2 {
				t.Fatalf("locked items must stay in the feed, got %v", pageIDs(page.Items))
			}
			for _, it := range page.Items {
				if it.ID == "free-1" && it.IsLocked {
					t.Error("free item locked")
				}
				if it.ID != "prem-1" {
					continue
				}
				if it.IsLocked != tt.wantLocked || it.PreviewOnly != tt.wantLocked {
					t.Errorf("premium locked = %v preview = %v, want %v", it.IsLocked, it.PreviewOnly, tt.wantLocked)
				}
				if tt.wantLocked && it.AssetURL == premium.AssetURL {
					t.Error("locked item leaked its full asset URL")
				}
			}
		})
	}
}

func TestGetPage_Filters(t *testing.T) {
	t.Parallel()

	items := mixedCatalog(30)
	items[3].IsPremium = true
	items[11].IsPremium = true
	a := newTestAssembler(t, newScriptedStore(items...), nil, testConfig())
	ctx := context.Background()

	f := pageFilter(1, 100)
	f.PremiumOnly = true
	page, err := a.GetPage(ctx, f, models.AnonymousUser())
	if err != nil {
		t.Fatalf("premium only: %v", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("premium only returned %v", pageIDs(page.Items))
	}

	f = pageFilter(1, 100)
	f.Category = "wedding"
	page, err = a.GetPage(ctx, f, models.AnonymousUser())
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	if len(page.Items) == 0 {
		t.Fatal("category filter matched nothing")
	}
	for _, it := range page.Items {
		if it.Category != "Wedding" {
			t.Errorf("category filter let %s (%s) through", it.ID, it.Category)
		}
	}

	f = pageFilter(1, 100)
	f.ContentTypes = []models.SourceKind{models.SourceVideo}
	page, err = a.GetPage(ctx, f, models.AnonymousUser())
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	for _, it := range page.Items {
		if it.SourceKind != models.SourceVideo {
			t.Errorf("type filter let %s (%s) through", it.ID, it.SourceKind)
		}
	}
}

func TestGetPage_EngagementFlags(t *testing.T) {
	t.Parallel()

	store := newScriptedStore(mixedCatalog(12)...)
	ledger := engagement.NewLedger(engagement.NewMemoryStore(), store, zerolog.Nop())
	a := newTestAssembler(t, store, ledger, testConfig())
	ctx := context.Background()

	if _, err := ledger.Like(ctx, "u1", "item-004"); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if _, err := ledger.RecordDownload(ctx, "u1", "item-007"); err != nil {
		t.Fatalf("RecordDownload: %v", err)
	}

	before, _ := store.Lookup(ctx, "item-004")

	page, err := a.GetPage(ctx, pageFilter(1, 20), models.UserContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	for _, it := range page.Items {
		if it.IsLiked != (it.ID == "item-004") {
			t.Errorf("%s IsLiked = %v", it.ID, it.IsLiked)
		}
		if it.IsDownloaded != (it.ID == "item-007") {
			t.Errorf("%s IsDownloaded = %v", it.ID, it.IsDownloaded)
		}
	}

	anon, err := a.GetPage(ctx, pageFilter(1, 20), models.AnonymousUser())
	if err != nil {
		t.Fatalf("GetPage anonymous: %v", err)
	}
	for _, it := range anon.Items {
		if it.IsLiked || it.IsDownloaded {
			t.Errorf("anonymous page carries engagement flags on %s", it.ID)
		}
	}

	after, _ := store.Lookup(ctx, "item-004")
	if after.LikeCount != before.LikeCount || after.PopularityScore != before.PopularityScore {
		t.Error("feed read changed counters")
	}
}

func TestGetPage_AnnotationFailureKeepsPage(t *testing.T) {
	t.Parallel()

	broken := annotatorFunc(func(context.Context, []models.AnnotatedItem, string) error {
		return errors.New("engagement store down")
	})
	a := newTestAssembler(t, newScriptedStore(mixedCatalog(8)...), broken, testConfig())

	page, err := a.GetPage(context.Background(), pageFilter(1, 20), models.UserContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(page.Items) != 8 {
		t.Errorf("len(items) = %d, want 8", len(page.Items))
	}
}

func TestGetPage_CacheSharesBuildsButNotFlags(t *testing.T) {
	t.Parallel()

	store := newScriptedStore(mixedCatalog(16)...)
	ledger := engagement.NewLedger(engagement.NewMemoryStore(), store, zerolog.Nop())

	cfg := testConfig()
	cfg.CacheTTL = time.Minute
	a := newTestAssembler(t, store, ledger, cfg)
	ctx := context.Background()
	user := models.UserContext{UserID: "u1"}

	first, err := a.GetPage(ctx, pageFilter(1, 20), user)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if _, err := ledger.Like(ctx, "u1", first.Items[0].ID); err != nil {
		t.Fatalf("Like: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]*models.FeedPage, 4)
	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], _ = a.GetPage(ctx, pageFilter(1, 20), user)
		}(i)
	}
	wg.Wait()

	for _, kind := range models.AllSourceKinds {
		if got := store.callCount(kind); got != 1 {
			t.Errorf("%s queried %d times, want 1", kind, got)
		}
	}
	for i, p := range results {
		if p == nil {
			t.Fatalf("result %d missing", i)
		}
		if !p.Items[0].IsLiked {
			t.Errorf("result %d: cached page hid a fresh like", i)
		}
	}
}

func TestGetPage_PartialPagesAreNotCached(t *testing.T) {
	t.Parallel()

	store := newScriptedStore(mixedCatalog(16)...)
	store.on(models.SourceVideo, hang)

	cfg := testConfig()
	cfg.CacheTTL = time.Minute
	cfg.SourceTimeout = 30 * time.Millisecond
	a := newTestAssembler(t, store, nil, cfg)

	for i := 0; i < 2; i++ {
		page, err := a.GetPage(context.Background(), pageFilter(1, 10), models.AnonymousUser())
		if err != nil {
			t.Fatalf("GetPage: %v", err)
		}
		if !page.Partial {
			t.Fatal("expected partial page")
		}
	}
	if got := store.callCount(models.SourceTemplate); got != 2 {
		t.Errorf("template queried %d times, want 2", got)
	}
}
