// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postcraft/internal/engagement"
	"github.com/tomtom215/postcraft/internal/feed"
	"github.com/tomtom215/postcraft/internal/models"
)

// FeedService is the engine surface the handlers call. *feed.Service
// implements it.
type FeedService interface {
	Identify(ctx context.Context, userID string, claimed *models.Subscription) models.UserContext
	GetFeed(ctx context.Context, filter models.FeedFilter, user models.UserContext) (*models.FeedPage, error)
	Like(ctx context.Context, user models.UserContext, resourceID string) (engagement.LikeResult, error)
	Unlike(ctx context.Context, user models.UserContext, resourceID string) (engagement.UnlikeResult, error)
	ToggleLike(ctx context.Context, user models.UserContext, resourceID string) (engagement.ToggleResult, error)
	RecordDownload(ctx context.Context, user models.UserContext, resourceID string) (feed.DownloadOutcome, error)
	DownloadHistory(ctx context.Context, user models.UserContext, limit int) ([]models.DownloadEvent, error)
	SourceHealth() []feed.SourceHealth
}

var _ FeedService = (*feed.Service)(nil)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// HandlerConfig tunes request handling.
type HandlerConfig struct {
	// HistoryLimit is the default and maximum download history page.
	HistoryLimit int
	// HealthTimeout bounds all dependency probes of one health request.
	HealthTimeout time.Duration
	// Version is reported by the health endpoint.
	Version string
}

// Handler serves the feed engine routes.
type Handler struct {
	service   FeedService
	checks    map[string]HealthCheck
	config    HandlerConfig
	logger    zerolog.Logger
	startTime time.Time
}

// NewHandler creates the API handler. checks may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(service FeedService, checks map[string]HealthCheck, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = engagement.DefaultHistoryLimit
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 2 * time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		service:   service,
		checks:    checks,
		config:    cfg,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}
}

// identify resolves the requester from the identity headers.
func (h *Handler) identify(r *http.Request) (models.UserContext, error) {
	claimed, err := claimedSubscription(r)
	if err != nil {
		return models.UserContext{}, err
	}
	return h.service.Identify(r.Context(), r.Header.Get(HeaderUserID), claimed), nil
}
