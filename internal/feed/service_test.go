// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postcraft/internal/access"
	"github.com/tomtom215/postcraft/internal/engagement"
	"github.com/tomtom215/postcraft/internal/models"
)

type failingProvider struct{}

func (failingProvider) Subscription(context.Context, string) (models.Subscription, error) {
	return models.Subscription{}, errors.New("billing unavailable")
}

func newTestService(t *testing.T, subs access.SubscriptionProvider) (*Service, *scriptedStore) {
	t.Helper()

	free := newItem("free-1", models.SourceTemplate, "Sale", 10)
	premium := newItem("prem-1", models.SourceVideo, "Sale", 20)
	premium.IsPremium = true
	retired := newItem("old-1", models.SourceGreeting, "Sale", 5)
	retired.Status = models.StatusInactive

	store := newScriptedStore(free, premium, retired)
	ledger := engagement.NewLedger(engagement.NewMemoryStore(), store, zerolog.Nop())
	gate := access.NewGate("")
	a := NewAssembler(store, gate, ledger, testConfig(), zerolog.Nop())
	t.Cleanup(a.Close)

	return NewService(a, ledger, store, gate, subs, zerolog.Nop()), store
}

func TestService_Identify(t *testing.T) {
	t.Parallel()

	subs := access.NewStaticSubscriptions(map[string]models.Subscription{"pro": {Active: true, Tier: "pro"}})
	svc, _ := newTestService(t, subs)
	ctx := context.Background()

	if u := svc.Identify(ctx, "", &models.Subscription{Active: true}); !u.IsAnonymous() || u.HasActiveSubscription() {
		t.Errorf("empty user = %+v, want anonymous without subscription", u)
	}
	if u := svc.Identify(ctx, "pro", nil); !u.HasActiveSubscription() {
		t.Error("provider subscription not applied")
	}
	if u := svc.Identify(ctx, "pro", &models.Subscription{Active: false}); u.HasActiveSubscription() {
		t.Error("claimed subscription must win over the provider")
	}

	broken, _ := newTestService(t, failingProvider{})
	if u := broken.Identify(ctx, "pro", nil); u.HasActiveSubscription() || u.UserID != "pro" {
		t.Errorf("failed lookup = %+v, want identified user with inactive subscription", u)
	}
}

func TestService_EngagementRequiresIdentity(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	anon := models.AnonymousUser()

	if _, err := svc.Like(ctx, anon, "free-1"); !errors.Is(err, engagement.ErrAnonymousUser) {
		t.Errorf("Like err = %v", err)
	}
	if _, err := svc.Unlike(ctx, anon, "free-1"); !errors.Is(err, engagement.ErrAnonymousUser) {
		t.Errorf("Unlike err = %v", err)
	}
	if _, err := svc.ToggleLike(ctx, anon, "free-1"); !errors.Is(err, engagement.ErrAnonymousUser) {
		t.Errorf("ToggleLike err = %v", err)
	}
	if _, err := svc.RecordDownload(ctx, anon, "free-1"); !errors.Is(err, engagement.ErrAnonymousUser) {
		t.Errorf("RecordDownload err = %v", err)
	}
	if _, err := svc.DownloadHistory(ctx, anon, 10); !errors.Is(err, engagement.ErrAnonymousUser) {
		t.Errorf("DownloadHistory err = %v", err)
	}
}

func TestService_UnknownAndRetiredResources(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	user := models.UserContext{UserID: "u1"}

	if _, err := svc.ToggleLike(ctx, user, "missing"); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("ToggleLike missing err = %v", err)
	}
	if _, err := svc.Like(ctx, user, "old-1"); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("Like retired err = %v", err)
	}
	if res, err := svc.Unlike(ctx, user, "old-1"); err != nil || res.Removed {
		t.Errorf("Unlike retired = %+v, %v; want no-op", res, err)
	}
}

func TestService_ToggleLike(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := models.UserContext{UserID: "u1"}

	for i, want := range []bool{true, false, true} {
		res, err := svc.ToggleLike(ctx, user, "free-1")
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if res.Liked != want {
			t.Errorf("toggle %d liked = %v, want %v", i, res.Liked, want)
		}
	}

	item, _ := store.Lookup(ctx, "free-1")
	if item.LikeCount != 1 {
		t.Errorf("like count = %d, want 1", item.LikeCount)
	}
}

func TestService_RecordDownload(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t, nil)
	ctx := context.Background()
	lapsed := models.UserContext{UserID: "u1"}
	member := models.UserContext{UserID: "u2", Subscription: models.Subscription{Active: true}}

	out, err := svc.RecordDownload(ctx, lapsed, "prem-1")
	if err != nil {
		t.Fatalf("locked download: %v", err)
	}
	if out.DownloadURLEligible || out.AssetURL != "" {
		t.Errorf("locked download = %+v, want ineligible without asset", out)
	}
	if history, _ := svc.DownloadHistory(ctx, lapsed, 10); len(history) != 0 {
		t.Errorf("locked download was recorded: %v", history)
	}

	for i, wantFirst := range []bool{true, false, false} {
		out, err := svc.RecordDownload(ctx, member, "prem-1")
		if err != nil {
			t.Fatalf("download %d: %v", i, err)
		}
		if !out.DownloadURLEligible || out.IsFirstDownload != wantFirst {
			t.Errorf("download %d = %+v, want eligible first=%v", i, out, wantFirst)
		}
		if out.AssetURL != "https://cdn.example/prem-1" {
			t.Errorf("download %d asset = %q", i, out.AssetURL)
		}
	}

	item, _ := store.Lookup(ctx, "prem-1")
	if item.DownloadCount != 1 {
		t.Errorf("download count = %d, want 1", item.DownloadCount)
	}
	history, err := svc.DownloadHistory(ctx, member, 10)
	if err != nil || len(history) != 3 {
		t.Fatalf("history = %v, %v; want 3 events", history, err)
	}
	if !history[2].FirstForUser || history[0].FirstForUser {
		t.Error("history is not newest first or first flag misplaced")
	}
}

func TestService_SourceHealth(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	health := svc.SourceHealth()
	if len(health) != len(models.AllSourceKinds) {
		t.Fatalf("health entries = %d", len(health))
	}
	for _, h := range health {
		if h.State != "closed" {
			t.Errorf("%s state = %s, want closed", h.Source, h.State)
		}
	}
}
