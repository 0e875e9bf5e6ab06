// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package database

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/tomtom215/postcraft/internal/logging"
	"github.com/tomtom215/postcraft/internal/models"
)

// demoSeed fixes the generated catalog so demo runs are reproducible.
const demoSeed = 20260301

// SeedDemoData fills the catalog with a reproducible demo set. Existing rows
// with the same IDs are replaced.
func (db *DB) SeedDemoData(ctx context.Context) error {
	logging.Info().Msg("Seeding content database with demo catalog...")

	rng := rand.New(rand.NewSource(demoSeed))
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	categories := []struct {
		name   string
		id     string
		weight int
		tags   []string
	}{
		{"Wedding", "cat-wedding", 40, []string{"marriage", "invite", "shaadi"}},
		{"Birthday", "cat-birthday", 12, []string{"party", "cake"}},
		{"Diwali", "cat-diwali", 18, []string{"festival", "lights", "rangoli"}},
		{"Motivational", "cat-motivational", 10, []string{"quote", "monday"}},
		{"Sale Offers", "cat-sale", 15, []string{"discount", "flash sale"}},
		{"Good Morning", "cat-morning", 8, []string{"sunrise", "wishes"}},
		{"Corporate", "cat-corporate", 0, nil},
	}
	nouns := map[models.SourceKind]string{
		models.SourceTemplate:      "Poster",
		models.SourceVideo:         "Reel",
		models.SourceGreeting:      "Greeting",
		models.SourceBusinessImage: "Quote",
	}

	var items []models.ContentItem
	for _, cat := range categories {
		for i := 0; i < cat.weight; i++ {
			kind := models.AllSourceKinds[rng.Intn(len(models.AllSourceKinds))]
			id := fmt.Sprintf("%s-%s-%03d", strings.TrimPrefix(cat.id, "cat-"), kind, i)

			status := models.StatusActive
			switch rng.Intn(20) {
			case 0:
				status = models.StatusPending
			case 1:
				status = models.StatusInactive
			}

			var tags []string
			if len(cat.tags) > 0 {
				tags = []string{cat.tags[rng.Intn(len(cat.tags))]}
			}

			likes := int64(rng.Intn(300))
			downloads := int64(rng.Intn(120))
			items = append(items, models.ContentItem{
				ID:              id,
				SourceKind:      kind,
				Category:        cat.name,
				CategoryID:      cat.id,
				Title:           fmt.Sprintf("%s %s %d", cat.name, nouns[kind], i+1),
				Tags:            tags,
				PopularityScore: likes + downloads,
				LikeCount:       likes,
				DownloadCount:   downloads,
				IsPremium:       rng.Intn(4) == 0,
				Status:          status,
				CreatedAt:       base.Add(time.Duration(rng.Intn(90*24)) * time.Hour),
				AssetURL:        fmt.Sprintf("https://cdn.postcraft.example/%s/%s", kind, id),
				PreviewURL:      fmt.Sprintf("https://cdn.postcraft.example/%s/%s/preview", kind, id),
			})
		}
	}

	if err := db.UpsertContent(ctx, items...); err != nil {
		return fmt.Errorf("seed content: %w", err)
	}

	subs := map[string]models.Subscription{
		"demo-pro":   {Active: true, Tier: "pro"},
		"demo-free":  {Active: false},
		"demo-trial": {Active: true, Tier: "trial"},
	}
	for userID, sub := range subs {
		if err := db.UpsertSubscription(ctx, userID, sub); err != nil {
			return fmt.Errorf("seed subscriptions: %w", err)
		}
	}

	logging.Info().Int("items", len(items)).Int("subscriptions", len(subs)).Msg("Demo catalog seeded")
	return nil
}
