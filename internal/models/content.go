// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package models

import (
	"fmt"
	"strings"
	"time"
)

// SourceKind identifies the content collection an item belongs to.
type SourceKind int

const (
	SourceTemplate SourceKind = iota
	SourceVideo
	SourceGreeting
	SourceBusinessImage
)

// AllSourceKinds lists every source kind in canonical order.
var AllSourceKinds = []SourceKind{SourceTemplate, SourceVideo, SourceGreeting, SourceBusinessImage}

var sourceKindNames = [...]string{
	SourceTemplate:      "template",
	SourceVideo:         "video",
	SourceGreeting:      "greeting",
	SourceBusinessImage: "business_image",
}

func (k SourceKind) String() string {
	if k.Valid() {
		return sourceKindNames[k]
	}
	return fmt.Sprintf("source_kind(%d)", int(k))
}

// Valid reports whether k is one of the known source kinds.
func (k SourceKind) Valid() bool {
	return k >= SourceTemplate && k <= SourceBusinessImage
}

// MarshalText encodes the kind by name so JSON payloads stay readable.
func (k SourceKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid source kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *SourceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseSourceKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseSourceKind parses a kind name. Plural forms are accepted.
func ParseSourceKind(s string) (SourceKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "template", "templates":
		return SourceTemplate, nil
	case "video", "videos":
		return SourceVideo, nil
	case "greeting", "greetings":
		return SourceGreeting, nil
	case "business_image", "business_images", "image", "images":
		return SourceBusinessImage, nil
	}
	return 0, fmt.Errorf("unknown content type %q", s)
}

// ContentStatus is the moderation/activity state of an item.
type ContentStatus string

const (
	StatusActive   ContentStatus = "active"
	StatusApproved ContentStatus = "approved"
	StatusPending  ContentStatus = "pending"
	StatusRejected ContentStatus = "rejected"
	StatusInactive ContentStatus = "inactive"
)

// Eligible reports whether content in this state may appear in a feed.
func (s ContentStatus) Eligible() bool {
	return s == StatusActive || s == StatusApproved
}

// ContentItem is a single piece of content from any source collection.
// Content stores own these values; the engine only reads them.
type ContentItem struct {
	ID              string        `json:"id"`
	SourceKind      SourceKind    `json:"source_kind"`
	Category        string        `json:"category"`
	CategoryID      string        `json:"category_id,omitempty"`
	Title           string        `json:"title"`
	Tags            []string      `json:"tags,omitempty"`
	PopularityScore int64         `json:"popularity_score"`
	LikeCount       int64         `json:"like_count"`
	DownloadCount   int64         `json:"download_count"`
	IsPremium       bool          `json:"is_premium"`
	Status          ContentStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	AssetURL        string        `json:"asset_url"`
	PreviewURL      string        `json:"preview_url,omitempty"`
}

// Eligible reports whether the item may be served.
func (c *ContentItem) Eligible() bool {
	return c.Status.Eligible()
}

// CategoryKey identifies the item's category for grouping. Items without a
// category ID are grouped by name.
func (c *ContentItem) CategoryKey() string {
	if c.CategoryID != "" {
		return c.CategoryID
	}
	return c.Category
}

// AnnotatedItem is a ContentItem decorated for one requester.
type AnnotatedItem struct {
	ContentItem
	IsLiked      bool `json:"is_liked"`
	IsDownloaded bool `json:"is_downloaded"`
	IsLocked     bool `json:"is_locked"`
	PreviewOnly  bool `json:"preview_only"`
}
