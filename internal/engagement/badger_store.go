// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package engagement

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/postcraft/internal/logging"
	"github.com/tomtom215/postcraft/internal/metrics"
	"github.com/tomtom215/postcraft/internal/models"
)

const (
	backendBadger = "badger"

	// maxTxnRetries bounds retries of a conditional write that lost a
	// transaction conflict to a concurrent writer of the same key.
	maxTxnRetries = 5

	keySep = "\x00"
)

// BadgerStore persists engagement records in BadgerDB.
//
// Records live under "<prefix>rec\x00<kind>\x00<user>\x00<resource>". Download
// events live under "<prefix>dl\x00<user>\x00<unix-nanos BE><event id>" so a
// reverse prefix scan yields newest first.
type BadgerStore struct {
	db     *badger.DB
	prefix []byte
	mu     sync.RWMutex
	closed bool
}

// NewBadgerStore wraps an open database. The store does not own db.
func NewBadgerStore(db *badger.DB, prefix string) *BadgerStore {
	if prefix == "" {
		prefix = "eng:"
	}
	return &BadgerStore{db: db, prefix: []byte(prefix)}
}

func (s *BadgerStore) recordKey(key models.EngagementKey) []byte {
	k := make([]byte, 0, len(s.prefix)+len(key.UserID)+len(key.ResourceID)+16)
	k = append(k, s.prefix...)
	k = append(k, "rec"+keySep+string(key.Kind)+keySep+key.UserID+keySep+key.ResourceID...)
	return k
}

func (s *BadgerStore) historyPrefix(userID string) []byte {
	k := make([]byte, 0, len(s.prefix)+len(userID)+4)
	k = append(k, s.prefix...)
	k = append(k, "dl"+keySep+userID+keySep...)
	return k
}

func (s *BadgerStore) historyKey(ev models.DownloadEvent) []byte {
	k := s.historyPrefix(ev.UserID)
	k = binary.BigEndian.AppendUint64(k, uint64(ev.DownloadedAt.UnixNano()))
	return append(k, ev.ID...)
}

func (s *BadgerStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("badger update: %w", err)
}

func (s *BadgerStore) UpsertIfAbsent(ctx context.Context, key models.EngagementKey, at time.Time) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	var created bool
	err := s.update(ctx, func(txn *badger.Txn) error {
		created = false
		k := s.recordKey(key)
		item, err := txn.Get(k)
		if err == nil {
			return verifyRecord(item, key)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(models.EngagementRecord{EngagementKey: key, Active: true, CreatedAt: at})
		if err != nil {
			return err
		}
		if err := txn.Set(k, data); err != nil {
			return err
		}
		created = true
		return nil
	})
	metrics.RecordEngagementStoreOp(backendBadger, "upsert", err)
	if err != nil {
		return false, fmt.Errorf("upsert %s: %w", key, err)
	}
	return created, nil
}

func (s *BadgerStore) DeleteIfPresent(ctx context.Context, key models.EngagementKey) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	var removed bool
	err := s.update(ctx, func(txn *badger.Txn) error {
		removed = false
		k := s.recordKey(key)
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := verifyRecord(item, key); err != nil {
			return err
		}
		if err := txn.Delete(k); err != nil {
			return err
		}
		removed = true
		return nil
	})
	metrics.RecordEngagementStoreOp(backendBadger, "delete", err)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	return removed, nil
}

func (s *BadgerStore) BatchExists(ctx context.Context, userID string, resourceIDs []string, kind models.EngagementKind) (map[string]struct{}, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	found := make(map[string]struct{})
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range resourceIDs {
			_, err := txn.Get(s.recordKey(models.EngagementKey{UserID: userID, ResourceID: id, Kind: kind}))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			found[id] = struct{}{}
		}
		return nil
	})
	metrics.RecordEngagementStoreOp(backendBadger, "batch_exists", err)
	if err != nil {
		return nil, fmt.Errorf("batch exists: %w", err)
	}
	return found, nil
}

func (s *BadgerStore) AppendDownloadEvent(ctx context.Context, ev models.DownloadEvent) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode download event: %w", err)
	}
	err = s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(s.historyKey(ev), data)
	})
	metrics.RecordEngagementStoreOp(backendBadger, "append_history", err)
	return err
}

func (s *BadgerStore) DownloadHistory(ctx context.Context, userID string, limit int) ([]models.DownloadEvent, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	prefix := s.historyPrefix(userID)
	events := make([]models.DownloadEvent, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration must seek past the last key carrying the prefix.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(events) < limit; it.Next() {
			var ev models.DownloadEvent
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				logging.Warn().Err(err).Str("user_id", userID).Msg("Skipping undecodable download event")
				continue
			}
			events = append(events, ev)
		}
		return nil
	})
	metrics.RecordEngagementStoreOp(backendBadger, "history", err)
	if err != nil {
		return nil, fmt.Errorf("download history: %w", err)
	}
	return events, nil
}

// Close marks the store closed. The database itself is closed by its owner.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// verifyRecord checks that a stored value belongs to key.
func verifyRecord(item *badger.Item, key models.EngagementKey) error {
	var existing models.EngagementRecord
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &existing)
	}); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if existing.EngagementKey != key || !existing.Active {
		return fmt.Errorf("%w: stored %s active=%v under %s", ErrConflictingEngagementState, existing.EngagementKey, existing.Active, key)
	}
	return nil
}
