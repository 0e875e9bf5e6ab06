// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package models

import (
	"fmt"
	"time"
)

// EngagementKind is the type of a user action on a resource.
type EngagementKind string

const (
	EngagementLike     EngagementKind = "like"
	EngagementDownload EngagementKind = "download"
)

// Valid reports whether k is a known engagement kind.
func (k EngagementKind) Valid() bool {
	return k == EngagementLike || k == EngagementDownload
}

// EngagementKey is the composite identity of an engagement record.
type EngagementKey struct {
	UserID     string         `json:"user_id"`
	ResourceID string         `json:"resource_id"`
	Kind       EngagementKind `json:"kind"`
}

func (k EngagementKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Kind, k.UserID, k.ResourceID)
}

// EngagementRecord is the current state for one key. At most one active
// record exists per key.
type EngagementRecord struct {
	EngagementKey
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// DownloadEvent is one entry of a user's download history. Every download is
// recorded, including repeats.
type DownloadEvent struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ResourceID   string    `json:"resource_id"`
	FirstForUser bool      `json:"first_for_user"`
	DownloadedAt time.Time `json:"downloaded_at"`
}
