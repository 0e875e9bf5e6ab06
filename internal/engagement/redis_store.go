// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tomtom215/postcraft/internal/logging"
	"github.com/tomtom215/postcraft/internal/metrics"
	"github.com/tomtom215/postcraft/internal/models"
)

const (
	backendRedis = "redis"

	// DefaultHistoryCap is the number of download events kept per user.
	DefaultHistoryCap = 500

	defaultRedisTimeout = 5 * time.Second
)

// RedisConfig configures the connection used by RedisStore.
type RedisConfig struct {
	Addrs        []string
	MasterName   string
	Username     string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisClient opens a topology-agnostic client and verifies it with PING.
// A single address yields a standalone client, several a cluster client and a
// master name a sentinel client.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (goredis.UniversalClient, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("at least one redis address is required")
	}

	client := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:        cfg.Addrs,
		MasterName:   cfg.MasterName,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  orDefault(cfg.DialTimeout),
		ReadTimeout:  orDefault(cfg.ReadTimeout),
		WriteTimeout: orDefault(cfg.WriteTimeout),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultRedisTimeout
	}
	return d
}

// RedisStore keeps engagement state in Redis sets, one set per user and kind.
// SADD and SREM report how many members changed, which makes each mutation a
// single atomic conditional command. Keys carry the user ID as a hash tag so
// all of a user's keys share a cluster slot.
type RedisStore struct {
	client     goredis.UniversalClient
	prefix     string
	historyCap int64
}

// NewRedisStore creates a store on client. The store does not own client.
func NewRedisStore(client goredis.UniversalClient, prefix string, historyCap int) *RedisStore {
	if prefix == "" {
		prefix = "postcraft"
	}
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &RedisStore{client: client, prefix: prefix, historyCap: int64(historyCap)}
}

func (s *RedisStore) setKey(userID string, kind models.EngagementKind) string {
	return fmt.Sprintf("%s:{%s}:%s", s.prefix, userID, kind)
}

func (s *RedisStore) historyKey(userID string) string {
	return fmt.Sprintf("%s:{%s}:history", s.prefix, userID)
}

func (s *RedisStore) UpsertIfAbsent(ctx context.Context, key models.EngagementKey, at time.Time) (bool, error) {
	added, err := s.client.SAdd(ctx, s.setKey(key.UserID, key.Kind), key.ResourceID).Result()
	metrics.RecordEngagementStoreOp(backendRedis, "upsert", err)
	if err != nil {
		return false, fmt.Errorf("upsert %s: %w", key, err)
	}
	if added > 1 {
		return false, fmt.Errorf("%w: SADD added %d members for %s", ErrConflictingEngagementState, added, key)
	}
	return added == 1, nil
}

func (s *RedisStore) DeleteIfPresent(ctx context.Context, key models.EngagementKey) (bool, error) {
	removed, err := s.client.SRem(ctx, s.setKey(key.UserID, key.Kind), key.ResourceID).Result()
	metrics.RecordEngagementStoreOp(backendRedis, "delete", err)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	if removed > 1 {
		return false, fmt.Errorf("%w: SREM removed %d members for %s", ErrConflictingEngagementState, removed, key)
	}
	return removed == 1, nil
}

func (s *RedisStore) BatchExists(ctx context.Context, userID string, resourceIDs []string, kind models.EngagementKind) (map[string]struct{}, error) {
	found := make(map[string]struct{})
	if len(resourceIDs) == 0 {
		return found, nil
	}

	members := make([]interface{}, len(resourceIDs))
	for i, id := range resourceIDs {
		members[i] = id
	}
	flags, err := s.client.SMIsMember(ctx, s.setKey(userID, kind), members...).Result()
	metrics.RecordEngagementStoreOp(backendRedis, "batch_exists", err)
	if err != nil {
		return nil, fmt.Errorf("batch exists: %w", err)
	}
	for i, ok := range flags {
		if ok && i < len(resourceIDs) {
			found[resourceIDs[i]] = struct{}{}
		}
	}
	return found, nil
}

func (s *RedisStore) AppendDownloadEvent(ctx context.Context, ev models.DownloadEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode download event: %w", err)
	}

	key := s.historyKey(ev.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, s.historyCap-1)
		return nil
	})
	metrics.RecordEngagementStoreOp(backendRedis, "append_history", err)
	if err != nil {
		return fmt.Errorf("append download event: %w", err)
	}
	return nil
}

func (s *RedisStore) DownloadHistory(ctx context.Context, userID string, limit int) ([]models.DownloadEvent, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	raw, err := s.client.LRange(ctx, s.historyKey(userID), 0, int64(limit)-1).Result()
	metrics.RecordEngagementStoreOp(backendRedis, "history", err)
	if err != nil {
		return nil, fmt.Errorf("download history: %w", err)
	}

	events := make([]models.DownloadEvent, 0, len(raw))
	for _, entry := range raw {
		var ev models.DownloadEvent
		if err := json.Unmarshal([]byte(entry), &ev); err != nil {
			logging.Warn().Err(err).Str("user_id", userID).Msg("Skipping undecodable download event")
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Close is a no-op; the client belongs to the caller.
func (s *RedisStore) Close() error {
	return nil
}
