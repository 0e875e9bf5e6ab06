// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postcraft/internal/access"
	"github.com/tomtom215/postcraft/internal/content"
	"github.com/tomtom215/postcraft/internal/engagement"
	"github.com/tomtom215/postcraft/internal/models"
)

// DownloadOutcome answers a download request.
type DownloadOutcome struct {
	DownloadURLEligible bool   `json:"download_url_eligible"`
	IsFirstDownload     bool   `json:"is_first_download"`
	AssetURL            string `json:"asset_url,omitempty"`
	EventID             string `json:"event_id,omitempty"`
}

// Service is the engine's entry point for the transport layer.
type Service struct {
	assembler *Assembler
	ledger    *engagement.Ledger
	store     content.Store
	gate      *access.Gate
	subs      access.SubscriptionProvider
	logger    zerolog.Logger
}

// NewService wires the engine together. subs may be nil when identities
// always carry their subscription.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(assembler *Assembler, ledger *engagement.Ledger, store content.Store, gate *access.Gate, subs access.SubscriptionProvider, logger zerolog.Logger) *Service {
	if gate == nil {
		gate = access.NewGate("")
	}
	return &Service{
		assembler: assembler,
		ledger:    ledger,
		store:     store,
		gate:      gate,
		subs:      subs,
		logger:    logger.With().Str("component", "feed_service").Logger(),
	}
}

// Identify builds the requester context. An empty userID is anonymous. A
// claimed subscription is trusted as verified upstream; otherwise the
// provider is asked and a failed lookup leaves premium content locked.
func (s *Service) Identify(ctx context.Context, userID string, claimed *models.Subscription) models.UserContext {
	if userID == "" {
		return models.AnonymousUser()
	}
	user := models.UserContext{UserID: userID}
	switch {
	case claimed != nil:
		user.Subscription = *claimed
	case s.subs != nil:
		sub, err := s.subs.Subscription(ctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Subscription lookup failed, treating as inactive")
			break
		}
		user.Subscription = sub
	}
	return user
}

// GetFeed returns one balanced feed page.
func (s *Service) GetFeed(ctx context.Context, filter models.FeedFilter, user models.UserContext) (*models.FeedPage, error) {
	return s.assembler.GetPage(ctx, filter, user)
}

// Like records a like on an available resource.
func (s *Service) Like(ctx context.Context, user models.UserContext, resourceID string) (engagement.LikeResult, error) {
	if user.IsAnonymous() {
		return engagement.LikeResult{}, engagement.ErrAnonymousUser
	}
	if _, err := s.resource(ctx, resourceID, true); err != nil {
		return engagement.LikeResult{}, err
	}
	return s.ledger.Like(ctx, user.UserID, resourceID)
}

// Unlike removes a like. The resource only has to exist.
func (s *Service) Unlike(ctx context.Context, user models.UserContext, resourceID string) (engagement.UnlikeResult, error) {
	if user.IsAnonymous() {
		return engagement.UnlikeResult{}, engagement.ErrAnonymousUser
	}
	if _, err := s.resource(ctx, resourceID, false); err != nil {
		return engagement.UnlikeResult{}, err
	}
	return s.ledger.Unlike(ctx, user.UserID, resourceID)
}

// ToggleLike flips the like state.
func (s *Service) ToggleLike(ctx context.Context, user models.UserContext, resourceID string) (engagement.ToggleResult, error) {
	if user.IsAnonymous() {
		return engagement.ToggleResult{}, engagement.ErrAnonymousUser
	}
	if _, err := s.resource(ctx, resourceID, true); err != nil {
		return engagement.ToggleResult{}, err
	}
	return s.ledger.ToggleLike(ctx, user.UserID, resourceID)
}

// RecordDownload checks entitlement and records the download. A locked
// premium item is reported ineligible and nothing is recorded.
func (s *Service) RecordDownload(ctx context.Context, user models.UserContext, resourceID string) (DownloadOutcome, error) {
	if user.IsAnonymous() {
		return DownloadOutcome{}, engagement.ErrAnonymousUser
	}
	item, err := s.resource(ctx, resourceID, true)
	if err != nil {
		return DownloadOutcome{}, err
	}
	if !s.gate.CanDownload(item, user) {
		return DownloadOutcome{DownloadURLEligible: false}, nil
	}

	res, err := s.ledger.RecordDownload(ctx, user.UserID, resourceID)
	if err != nil {
		return DownloadOutcome{}, err
	}
	return DownloadOutcome{
		DownloadURLEligible: true,
		IsFirstDownload:     res.IsFirstDownload,
		AssetURL:            item.AssetURL,
		EventID:             res.EventID,
	}, nil
}

// DownloadHistory returns the requester's recent downloads, newest first.
func (s *Service) DownloadHistory(ctx context.Context, user models.UserContext, limit int) ([]models.DownloadEvent, error) {
	if user.IsAnonymous() {
		return nil, engagement.ErrAnonymousUser
	}
	return s.ledger.DownloadHistory(ctx, user.UserID, limit)
}

// SourceHealth reports per-source breaker state.
func (s *Service) SourceHealth() []SourceHealth {
	return s.assembler.SourceHealth()
}

func (s *Service) resource(ctx context.Context, resourceID string, requireEligible bool) (*models.ContentItem, error) {
	item, err := s.store.Lookup(ctx, resourceID)
	if errors.Is(err, content.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, resourceID)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", resourceID, err)
	}
	if requireEligible && !item.Eligible() {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, resourceID)
	}
	return item, nil
}
