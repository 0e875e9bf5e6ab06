// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package engagement

import (
	"context"
	"time"

	"github.com/tomtom215/postcraft/internal/models"
)

// Event types published after ledger state changes.
const (
	EventLikeCreated      = "engagement.like.created"
	EventLikeRemoved      = "engagement.like.removed"
	EventDownloadRecorded = "engagement.download.recorded"
)

// Event describes one committed ledger change.
type Event struct {
	ID              string                `json:"id"`
	Type            string                `json:"type"`
	UserID          string                `json:"user_id"`
	ResourceID      string                `json:"resource_id"`
	Kind            models.EngagementKind `json:"kind"`
	DownloadEventID string                `json:"download_event_id,omitempty"`
	OccurredAt      time.Time             `json:"occurred_at"`
}

// EventSink receives ledger events. Delivery failures are logged by the
// ledger and never undo the change.
type EventSink interface {
	PublishEngagement(ctx context.Context, ev Event) error
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, ev Event) error

// PublishEngagement implements EventSink.
func (f EventSinkFunc) PublishEngagement(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}
