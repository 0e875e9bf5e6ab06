// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/postcraft/internal/metrics"
	"github.com/tomtom215/postcraft/internal/models"
)

// PopularityCounter adjusts per-resource engagement counters on the content store.
type PopularityCounter interface {
	IncrementPopularity(ctx context.Context, resourceID string, kind models.EngagementKind, delta int64) error
}

// LikeResult reports whether Like created a record.
type LikeResult struct {
	Created bool `json:"created"`
}

// UnlikeResult reports whether Unlike removed a record.
type UnlikeResult struct {
	Removed bool `json:"removed"`
}

// ToggleResult is the like state after ToggleLike.
type ToggleResult struct {
	Liked bool `json:"liked"`
}

// DownloadResult reports whether this was the user's first download of the resource.
type DownloadResult struct {
	IsFirstDownload bool   `json:"is_first_download"`
	EventID         string `json:"event_id"`
}

// Ledger tracks likes and downloads per (user, resource) with exactly-once
// counter updates.
type Ledger struct {
	store    Store
	counters PopularityCounter
	sink     EventSink
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithEventSink publishes an Event after every state change.
func WithEventSink(sink EventSink) Option {
	return func(l *Ledger) {
		l.sink = sink
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger creates a ledger over store that updates counters on state changes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLedger(store Store, counters PopularityCounter, logger zerolog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		counters: counters,
		logger:   logger.With().Str("component", "engagement").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Like records a like. Repeating it is harmless: Created is false and no
// counter moves.
func (l *Ledger) Like(ctx context.Context, userID, resourceID string) (LikeResult, error) {
	if userID == "" {
		return LikeResult{}, ErrAnonymousUser
	}

	key := models.EngagementKey{UserID: userID, ResourceID: resourceID, Kind: models.EngagementLike}
	created, err := l.store.UpsertIfAbsent(ctx, key, l.now())
	if err != nil {
		return LikeResult{}, l.storeError("like", key, err)
	}
	if !created {
		metrics.RecordEngagement(string(key.Kind), "duplicate")
		return LikeResult{}, nil
	}

	if err := l.counters.IncrementPopularity(ctx, resourceID, models.EngagementLike, 1); err != nil {
		l.compensate(ctx, key, func(c context.Context) error {
			_, derr := l.store.DeleteIfPresent(c, key)
			return derr
		})
		return LikeResult{}, fmt.Errorf("like %s: update popularity: %w", resourceID, err)
	}

	metrics.RecordEngagement(string(key.Kind), "created")
	l.publish(ctx, EventLikeCreated, key, "")
	return LikeResult{Created: true}, nil
}

// Unlike removes a like. Removing an absent like is not an error.
func (l *Ledger) Unlike(ctx context.Context, userID, resourceID string) (UnlikeResult, error) {
	if userID == "" {
		return UnlikeResult{}, ErrAnonymousUser
	}

	key := models.EngagementKey{UserID: userID, ResourceID: resourceID, Kind: models.EngagementLike}
	removed, err := l.store.DeleteIfPresent(ctx, key)
	if err != nil {
		return UnlikeResult{}, l.storeError("unlike", key, err)
	}
	if !removed {
		metrics.RecordEngagement(string(key.Kind), "noop")
		return UnlikeResult{}, nil
	}

	if err := l.counters.IncrementPopularity(ctx, resourceID, models.EngagementLike, -1); err != nil {
		l.compensate(ctx, key, func(c context.Context) error {
			_, uerr := l.store.UpsertIfAbsent(c, key, l.now())
			return uerr
		})
		return UnlikeResult{}, fmt.Errorf("unlike %s: update popularity: %w", resourceID, err)
	}

	metrics.RecordEngagement(string(key.Kind), "removed")
	l.publish(ctx, EventLikeRemoved, key, "")
	return UnlikeResult{Removed: true}, nil
}

// ToggleLike likes the resource if the user has not, otherwise unlikes it.
// The attempt to create comes first so the decision rests on the store's
// atomic check rather than a separate read.
func (l *Ledger) ToggleLike(ctx context.Context, userID, resourceID string) (ToggleResult, error) {
	liked, err := l.Like(ctx, userID, resourceID)
	if err != nil {
		return ToggleResult{}, err
	}
	if liked.Created {
		return ToggleResult{Liked: true}, nil
	}
	if _, err := l.Unlike(ctx, userID, resourceID); err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Liked: false}, nil
}

// RecordDownload logs a download. Only the first download by a user moves
// the resource's download counter.
func (l *Ledger) RecordDownload(ctx context.Context, userID, resourceID string) (DownloadResult, error) {
	if userID == "" {
		return DownloadResult{}, ErrAnonymousUser
	}

	now := l.now()
	key := models.EngagementKey{UserID: userID, ResourceID: resourceID, Kind: models.EngagementDownload}
	first, err := l.store.UpsertIfAbsent(ctx, key, now)
	if err != nil {
		return DownloadResult{}, l.storeError("download", key, err)
	}

	if first {
		if err := l.counters.IncrementPopularity(ctx, resourceID, models.EngagementDownload, 1); err != nil {
			l.compensate(ctx, key, func(c context.Context) error {
				_, derr := l.store.DeleteIfPresent(c, key)
				return derr
			})
			return DownloadResult{}, fmt.Errorf("download %s: update popularity: %w", resourceID, err)
		}
		metrics.RecordEngagement(string(key.Kind), "created")
	} else {
		metrics.RecordEngagement(string(key.Kind), "duplicate")
	}

	ev := models.DownloadEvent{
		ID:           uuid.New().String(),
		UserID:       userID,
		ResourceID:   resourceID,
		FirstForUser: first,
		DownloadedAt: now,
	}
	if err := l.store.AppendDownloadEvent(ctx, ev); err != nil {
		// The counter and record are already consistent; only history is short.
		l.logger.Warn().Err(err).
			Str("user_id", userID).
			Str("resource_id", resourceID).
			Msg("Failed to append download history")
	}

	l.publish(ctx, EventDownloadRecorded, key, ev.ID)
	return DownloadResult{IsFirstDownload: first, EventID: ev.ID}, nil
}

// DownloadHistory returns the user's most recent downloads, newest first.
func (l *Ledger) DownloadHistory(ctx context.Context, userID string, limit int) ([]models.DownloadEvent, error) {
	if userID == "" {
		return nil, ErrAnonymousUser
	}
	return l.store.DownloadHistory(ctx, userID, limit)
}

// Annotate sets IsLiked and IsDownloaded on items for userID using one batch
// lookup per engagement kind. Anonymous requests are left untouched.
func (l *Ledger) Annotate(ctx context.Context, items []models.AnnotatedItem, userID string) error {
	if userID == "" || len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}

	var liked, downloaded map[string]struct{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		liked, err = l.store.BatchExists(gctx, userID, ids, models.EngagementLike)
		return err
	})
	g.Go(func() error {
		var err error
		downloaded, err = l.store.BatchExists(gctx, userID, ids, models.EngagementDownload)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("annotate engagement: %w", err)
	}

	for i := range items {
		_, items[i].IsLiked = liked[items[i].ID]
		_, items[i].IsDownloaded = downloaded[items[i].ID]
	}
	return nil
}

// compensate undoes a record change after the counter update failed. It runs
// detached from ctx so a cancelled request still rolls back.
func (l *Ledger) compensate(ctx context.Context, key models.EngagementKey, undo func(context.Context) error) {
	metrics.EngagementCompensations.WithLabelValues(string(key.Kind)).Inc()

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := undo(cctx); err != nil {
		l.logger.Error().Err(err).
			Str("key", key.String()).
			Msg("Failed to roll back engagement record; counter and ledger disagree")
	}
}

func (l *Ledger) storeError(op string, key models.EngagementKey, err error) error {
	if errors.Is(err, ErrConflictingEngagementState) {
		l.logger.Error().Err(err).
			Str("operation", op).
			Str("key", key.String()).
			Msg("Engagement store invariant violated")
	}
	return fmt.Errorf("%s %s: %w", op, key.ResourceID, err)
}

func (l *Ledger) publish(ctx context.Context, eventType string, key models.EngagementKey, downloadEventID string) {
	if l.sink == nil {
		return
	}
	ev := Event{
		ID:              uuid.New().String(),
		Type:            eventType,
		UserID:          key.UserID,
		ResourceID:      key.ResourceID,
		Kind:            key.Kind,
		DownloadEventID: downloadEventID,
		OccurredAt:      l.now(),
	}
	if err := l.sink.PublishEngagement(ctx, ev); err != nil {
		l.logger.Warn().Err(err).
			Str("event_type", eventType).
			Str("resource_id", key.ResourceID).
			Msg("Failed to publish engagement event")
	}
}
