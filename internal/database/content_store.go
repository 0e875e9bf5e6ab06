// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/postcraft/internal/content"
	"github.com/tomtom215/postcraft/internal/metrics"
	"github.com/tomtom215/postcraft/internal/models"
)

// tagSeparator joins tags in the tags column.
const tagSeparator = "\x1f"

const contentColumns = `id, source_kind, category, category_id, title, tags,
	popularity_score, like_count, download_count, is_premium, status,
	created_at, asset_url, preview_url`

var orderClauses = map[models.SortMode]string{
	models.SortPopularity: "popularity_score DESC, created_at DESC, id ASC",
	models.SortRecency:    "created_at DESC, popularity_score DESC, id ASC",
	models.SortRelevance: `(CASE WHEN title_hit THEN 4 ELSE 0 END
		+ CASE WHEN tag_hit THEN 2 ELSE 0 END
		+ CASE WHEN category_hit THEN 1 ELSE 0 END) DESC,
		popularity_score DESC, created_at DESC, id ASC`,
}

// QuerySource implements content.Store.
func (db *DB) QuerySource(ctx context.Context, kind models.SourceKind, q content.SourceQuery) (content.SourceResult, error) {
	start := time.Now()

	term := models.NormalizeSearchTerm(q.SearchTerm)
	mode := q.Sort.Resolve(term)
	order, ok := orderClauses[mode]
	if !ok {
		return content.SourceResult{}, fmt.Errorf("query %s: unknown sort mode %q", kind, mode)
	}

	var (
		where = []string{"source_kind = ?"}
		// Placeholders of the scored CTE come first.
		args = []interface{}{
			term, !strings.Contains(term, tagSeparator), term, term,
			kind.String(),
		}
	)
	if q.ActiveOnly {
		where = append(where, "status IN ('active', 'approved')")
	}
	if q.PremiumOnly {
		where = append(where, "is_premium")
	}
	if q.Category != "" {
		where = append(where, "(lower(trim(category)) = lower(trim(?)) OR (category_id <> '' AND category_id = ?))")
		args = append(args, q.Category, q.Category)
	}
	if term != "" {
		where = append(where, "(title_hit OR tag_hit OR category_hit)")
	}

	query := `WITH scored AS (
		SELECT ` + contentColumns + `,
			contains(lower(title), ?) AS title_hit,
			(? AND contains(lower(tags), ?)) AS tag_hit,
			contains(lower(category), ?) AS category_hit,
			CASE WHEN category_id <> '' THEN category_id ELSE category END AS group_key
		FROM content_items
	)
	SELECT ` + contentColumns + `, COUNT(*) OVER () AS total
	FROM scored
	WHERE ` + strings.Join(where, " AND ")

	if q.PerCategoryLimit > 0 {
		query += "\n\tQUALIFY ROW_NUMBER() OVER (PARTITION BY group_key ORDER BY " + order + ") <= ?"
		args = append(args, q.PerCategoryLimit)
	}
	query += "\n\tORDER BY " + order

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBQuery("query_source", "content_items", time.Since(start), err)
		return content.SourceResult{}, fmt.Errorf("query %s: %w", kind, err)
	}
	defer closeWithLog(rows, "rows")

	var result content.SourceResult
	for rows.Next() {
		var total int64
		item, err := scanContent(rows, &total)
		if err != nil {
			metrics.RecordDBQuery("query_source", "content_items", time.Since(start), err)
			return content.SourceResult{}, fmt.Errorf("query %s: %w", kind, err)
		}
		result.Items = append(result.Items, *item)
		result.Total = total
	}
	err = rows.Err()
	metrics.RecordDBQuery("query_source", "content_items", time.Since(start), err)
	if err != nil {
		return content.SourceResult{}, fmt.Errorf("query %s: %w", kind, err)
	}
	return result, nil
}

// IncrementPopularity implements content.Store.
func (db *DB) IncrementPopularity(ctx context.Context, resourceID string, kind models.EngagementKind, delta int64) error {
	var column string
	switch kind {
	case models.EngagementLike:
		column = "like_count"
	case models.EngagementDownload:
		column = "download_count"
	default:
		return fmt.Errorf("increment %s: unknown engagement kind", kind)
	}

	start := time.Now()
	query := fmt.Sprintf(`UPDATE content_items SET
		%[1]s = GREATEST(%[1]s + ?, 0),
		popularity_score = GREATEST(popularity_score + (GREATEST(%[1]s + ?, 0) - %[1]s), 0)
	WHERE id = ?`, column)

	res, err := db.conn.ExecContext(ctx, query, delta, delta, resourceID)
	metrics.RecordDBQuery("increment_popularity", "content_items", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("increment %s on %s: %w", kind, resourceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment %s on %s: %w", kind, resourceID, err)
	}
	if n == 0 {
		return fmt.Errorf("increment %s on %s: %w", kind, resourceID, content.ErrNotFound)
	}
	return nil
}

// Lookup implements content.Store.
func (db *DB) Lookup(ctx context.Context, resourceID string) (*models.ContentItem, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, "SELECT "+contentColumns+" FROM content_items WHERE id = ?", resourceID)

	item, err := scanContent(row, nil)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("lookup", "content_items", time.Since(start), nil)
		return nil, fmt.Errorf("lookup %s: %w", resourceID, content.ErrNotFound)
	}
	metrics.RecordDBQuery("lookup", "content_items", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", resourceID, err)
	}
	return item, nil
}

// UpsertContent inserts or replaces items by ID in one transaction.
func (db *DB) UpsertContent(ctx context.Context, items ...models.ContentItem) error {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO content_items (`+contentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer closeWithLog(stmt, "statement")

	for i := range items {
		it := &items[i]
		if !it.SourceKind.Valid() {
			return fmt.Errorf("upsert %s: invalid source kind %d", it.ID, int(it.SourceKind))
		}
		createdAt := it.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			it.ID, it.SourceKind.String(), it.Category, it.CategoryID, it.Title,
			strings.Join(it.Tags, tagSeparator),
			it.PopularityScore, it.LikeCount, it.DownloadCount, it.IsPremium, string(it.Status),
			createdAt.UTC(), it.AssetURL, it.PreviewURL,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", it.ID, err)
		}
	}

	err = tx.Commit()
	metrics.RecordDBQuery("upsert", "content_items", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// CountContent returns the number of catalog rows.
func (db *DB) CountContent(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_items").Scan(&n); err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanContent reads one content row. When total is non-nil the row carries a
// trailing total column.
func scanContent(row rowScanner, total *int64) (*models.ContentItem, error) {
	var (
		item   models.ContentItem
		kind   string
		tags   string
		status string
	)
	dest := []interface{}{
		&item.ID, &kind, &item.Category, &item.CategoryID, &item.Title, &tags,
		&item.PopularityScore, &item.LikeCount, &item.DownloadCount, &item.IsPremium, &status,
		&item.CreatedAt, &item.AssetURL, &item.PreviewURL,
	}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	parsed, err := models.ParseSourceKind(kind)
	if err != nil {
		return nil, fmt.Errorf("row %s: %w", item.ID, err)
	}
	item.SourceKind = parsed
	item.Status = models.ContentStatus(status)
	if tags != "" {
		item.Tags = strings.Split(tags, tagSeparator)
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return &item, nil
}
