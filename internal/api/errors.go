// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/postcraft/internal/engagement"
	"github.com/tomtom215/postcraft/internal/feed"
	"github.com/tomtom215/postcraft/internal/logging"
)

// writeServiceError maps an engine error to its HTTP response.
func writeServiceError(rw *ResponseWriter, r *http.Request, err error) {
	logger := logging.Ctx(r.Context())

	var queryErr *feed.QueryError
	switch {
	case errors.As(err, &queryErr):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeInvalidQuery, queryErr.Error(), queryErr.Details())
	case errors.Is(err, feed.ErrInvalidQuery):
		rw.Error(http.StatusBadRequest, ErrCodeInvalidQuery, err.Error())
	case errors.Is(err, engagement.ErrAnonymousUser):
		rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required")
	case errors.Is(err, feed.ErrPremiumLocked):
		rw.Error(http.StatusForbidden, ErrCodePremiumLocked, "An active subscription is required for this content")
	case errors.Is(err, feed.ErrResourceNotFound):
		rw.NotFound("Content not found")
	case errors.Is(err, feed.ErrFeedUnavailable):
		logger.Warn().Err(err).Msg("Feed unavailable")
		rw.Error(http.StatusServiceUnavailable, ErrCodeFeedUnavailable, "The feed is temporarily unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug().Err(err).Msg("Request ended before completion")
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Request timed out")
	case errors.Is(err, engagement.ErrConflictingEngagementState):
		logger.Error().Err(err).Msg("Engagement state invariant violated")
		rw.InternalError()
	default:
		logger.Error().Err(err).Msg("Unhandled service error")
		rw.InternalError()
	}
}
