// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the content and subscription tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		// Tags are joined with the unit separator so a substring match
		// cannot span two tags. No secondary indexes: DuckDB cannot upsert
		// rows whose indexed columns change.
		`CREATE TABLE IF NOT EXISTS content_items (
			id TEXT PRIMARY KEY,
			source_kind TEXT NOT NULL,
			category TEXT NOT NULL,
			category_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '',
			popularity_score BIGINT NOT NULL DEFAULT 0,
			like_count BIGINT NOT NULL DEFAULT 0,
			download_count BIGINT NOT NULL DEFAULT 0,
			is_premium BOOLEAN NOT NULL DEFAULT false,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			asset_url TEXT NOT NULL,
			preview_url TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS subscriptions (
			user_id TEXT PRIMARY KEY,
			active BOOLEAN NOT NULL,
			tier TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL
		)`,
	}
}
