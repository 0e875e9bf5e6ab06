// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package engagement

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/postcraft/internal/metrics"
	"github.com/tomtom215/postcraft/internal/models"
)

const backendMemory = "memory"

// MemoryStore keeps engagement records in process.
// Suitable for tests and single-instance deployments; state is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[models.EngagementKey]models.EngagementRecord
	history map[string][]models.DownloadEvent
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[models.EngagementKey]models.EngagementRecord),
		history: make(map[string][]models.DownloadEvent),
	}
}

func (s *MemoryStore) UpsertIfAbsent(ctx context.Context, key models.EngagementKey, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		metrics.RecordEngagementStoreOp(backendMemory, "upsert", ErrStoreClosed)
		return false, ErrStoreClosed
	}
	if _, ok := s.records[key]; ok {
		metrics.RecordEngagementStoreOp(backendMemory, "upsert", nil)
		return false, nil
	}
	s.records[key] = models.EngagementRecord{EngagementKey: key, Active: true, CreatedAt: at}
	metrics.RecordEngagementStoreOp(backendMemory, "upsert", nil)
	return true, nil
}

func (s *MemoryStore) DeleteIfPresent(ctx context.Context, key models.EngagementKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		metrics.RecordEngagementStoreOp(backendMemory, "delete", ErrStoreClosed)
		return false, ErrStoreClosed
	}
	_, ok := s.records[key]
	delete(s.records, key)
	metrics.RecordEngagementStoreOp(backendMemory, "delete", nil)
	return ok, nil
}

func (s *MemoryStore) BatchExists(ctx context.Context, userID string, resourceIDs []string, kind models.EngagementKind) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	found := make(map[string]struct{})
	for _, id := range resourceIDs {
		key := models.EngagementKey{UserID: userID, ResourceID: id, Kind: kind}
		if _, ok := s.records[key]; ok {
			found[id] = struct{}{}
		}
	}
	metrics.RecordEngagementStoreOp(backendMemory, "batch_exists", nil)
	return found, nil
}

func (s *MemoryStore) AppendDownloadEvent(ctx context.Context, ev models.DownloadEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.history[ev.UserID] = append(s.history[ev.UserID], ev)
	return nil
}

func (s *MemoryStore) DownloadHistory(ctx context.Context, userID string, limit int) ([]models.DownloadEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	events := s.history[userID]
	out := make([]models.DownloadEvent, 0, min(limit, len(events)))
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, events[i])
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	s.history = nil
	return nil
}
