// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package engagement

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	goredis "github.com/redis/go-redis/v9"
)

// Backend names accepted by OpenStore.
const (
	BackendMemory = "memory"
	BackendBadger = backendBadger
	BackendRedis  = backendRedis
)

// FactoryConfig selects and configures a record store backend.
type FactoryConfig struct {
	Backend   string
	KeyPrefix string

	BadgerPath     string
	BadgerInMemory bool

	Redis      RedisConfig
	HistoryCap int
}

// StoreHandle is an opened record store together with the connection it
// owns. Close releases both.
type StoreHandle struct {
	Store   Store
	Backend string

	badgerDB *badger.DB
	redis    goredis.UniversalClient
}

// OpenStore opens the configured backend.
func OpenStore(ctx context.Context, cfg FactoryConfig) (*StoreHandle, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return &StoreHandle{Store: NewMemoryStore(), Backend: BackendMemory}, nil

	case BackendBadger:
		opts := badger.DefaultOptions(cfg.BadgerPath).WithInMemory(cfg.BadgerInMemory)
		if cfg.BadgerInMemory {
			opts = opts.WithDir("").WithValueDir("")
		}
		opts.Logger = nil
		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open badger engagement store: %w", err)
		}
		return &StoreHandle{
			Store:    NewBadgerStore(db, badgerPrefix(cfg.KeyPrefix)),
			Backend:  BackendBadger,
			badgerDB: db,
		}, nil

	case BackendRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("open redis engagement store: %w", err)
		}
		return &StoreHandle{
			Store:   NewRedisStore(client, cfg.KeyPrefix, cfg.HistoryCap),
			Backend: BackendRedis,
			redis:   client,
		}, nil

	default:
		return nil, fmt.Errorf("unknown engagement backend %q", cfg.Backend)
	}
}

// badgerPrefix turns a namespace such as "postcraft:engagement" into a key
// prefix. Empty keeps the store default.
func badgerPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + ":"
}

// Ping reports whether the backend is reachable.
func (h *StoreHandle) Ping(ctx context.Context) error {
	switch {
	case h.redis != nil:
		return h.redis.Ping(ctx).Err()
	case h.badgerDB != nil:
		if h.badgerDB.IsClosed() {
			return ErrStoreClosed
		}
	}
	return ctx.Err()
}

// Close closes the store and the connection it owns.
func (h *StoreHandle) Close() error {
	errs := []error{h.Store.Close()}
	if h.badgerDB != nil {
		errs = append(errs, h.badgerDB.Close())
	}
	if h.redis != nil {
		errs = append(errs, h.redis.Close())
	}
	return errors.Join(errs...)
}
