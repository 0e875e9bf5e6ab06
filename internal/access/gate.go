// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

// Package access decides which content a requester may receive in full.
//
// Premium items stay discoverable for everyone. For requesters without an
// active subscription they are marked locked and their asset reference is
// swapped for a preview or placeholder, so the full-resolution asset never
// leaves the service.
package access

import (
	"strings"

	"github.com/tomtom215/postcraft/internal/models"
)

// DefaultPlaceholderBase prefixes generated placeholder references.
const DefaultPlaceholderBase = "placeholder://premium"

// Gate applies premium gating to feed items.
type Gate struct {
	placeholderBase string
}

// NewGate creates a gate. An empty base uses DefaultPlaceholderBase.
func NewGate(placeholderBase string) *Gate {
	base := strings.TrimRight(placeholderBase, "/")
	if base == "" {
		base = DefaultPlaceholderBase
	}
	return &Gate{placeholderBase: base}
}

// IsLocked reports whether item is premium and requester lacks a subscription.
func (g *Gate) IsLocked(item *models.ContentItem, requester models.UserContext) bool {
	return item.IsPremium && !requester.HasActiveSubscription()
}

// CanDownload reports whether requester may fetch the full asset.
func (g *Gate) CanDownload(item *models.ContentItem, requester models.UserContext) bool {
	return !g.IsLocked(item, requester)
}

// Annotate decorates items for requester. Locked items are kept, flagged as
// preview-only, and carry a preview or placeholder asset reference.
func (g *Gate) Annotate(items []models.ContentItem, requester models.UserContext) []models.AnnotatedItem {
	out := make([]models.AnnotatedItem, len(items))
	for i := range items {
		out[i] = models.AnnotatedItem{ContentItem: items[i]}
		if !g.IsLocked(&items[i], requester) {
			continue
		}
		out[i].IsLocked = true
		out[i].PreviewOnly = true
		out[i].AssetURL = g.placeholderFor(&items[i])
	}
	return out
}

func (g *Gate) placeholderFor(item *models.ContentItem) string {
	if item.PreviewURL != "" {
		return item.PreviewURL
	}
	return g.placeholderBase + "/" + item.SourceKind.String() + "/" + item.ID
}
