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
	"time"

	"github.com/tomtom215/postcraft/internal/metrics"
	"github.com/tomtom215/postcraft/internal/models"
)

// Subscription implements access.SubscriptionProvider. Unknown users get an
// inactive subscription.
func (db *DB) Subscription(ctx context.Context, userID string) (models.Subscription, error) {
	start := time.Now()

	var sub models.Subscription
	err := db.conn.QueryRowContext(ctx,
		"SELECT active, tier FROM subscriptions WHERE user_id = ?", userID,
	).Scan(&sub.Active, &sub.Tier)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	metrics.RecordDBQuery("get_subscription", "subscriptions", time.Since(start), err)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("subscription for %s: %w", userID, err)
	}
	return sub, nil
}

// UpsertSubscription stores the subscription for userID.
func (db *DB) UpsertSubscription(ctx context.Context, userID string, sub models.Subscription) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO subscriptions (user_id, active, tier, updated_at) VALUES (?, ?, ?, ?)",
		userID, sub.Active, sub.Tier, time.Now().UTC(),
	)
	metrics.RecordDBQuery("upsert_subscription", "subscriptions", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upsert subscription for %s: %w", userID, err)
	}
	return nil
}
