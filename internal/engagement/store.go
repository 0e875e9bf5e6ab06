// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package engagement

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/postcraft/internal/models"
)

var (
	// ErrConflictingEngagementState means the record store broke its
	// one-record-per-key guarantee. It indicates a bug, not bad input.
	ErrConflictingEngagementState = errors.New("conflicting engagement state")

	// ErrAnonymousUser is returned for mutations without a user identity.
	ErrAnonymousUser = errors.New("engagement requires an authenticated user")

	// ErrStoreClosed is returned after Close.
	ErrStoreClosed = errors.New("engagement store is closed")
)

// DefaultHistoryLimit bounds DownloadHistory when no limit is given.
const DefaultHistoryLimit = 50

// Store persists engagement records. Every mutation is a single atomic
// conditional operation on one (user, resource, kind) key.
type Store interface {
	// UpsertIfAbsent creates the record for key unless it exists.
	UpsertIfAbsent(ctx context.Context, key models.EngagementKey, at time.Time) (created bool, err error)

	// DeleteIfPresent removes the record for key if it exists.
	DeleteIfPresent(ctx context.Context, key models.EngagementKey) (removed bool, err error)

	// BatchExists returns the subset of resourceIDs with a record of kind for userID.
	BatchExists(ctx context.Context, userID string, resourceIDs []string, kind models.EngagementKind) (map[string]struct{}, error)

	// AppendDownloadEvent adds ev to the user's download history.
	AppendDownloadEvent(ctx context.Context, ev models.DownloadEvent) error

	// DownloadHistory returns up to limit events for userID, newest first.
	DownloadHistory(ctx context.Context, userID string, limit int) ([]models.DownloadEvent, error)

	Close() error
}
