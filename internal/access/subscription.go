// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package access

import (
	"context"
	"sync"

	"github.com/tomtom215/postcraft/internal/models"
)

// SubscriptionProvider looks up a user's subscription. Unknown users have an
// inactive subscription and no error.
type SubscriptionProvider interface {
	Subscription(ctx context.Context, userID string) (models.Subscription, error)
}

// StaticSubscriptions is an in-memory SubscriptionProvider.
type StaticSubscriptions struct {
	mu   sync.RWMutex
	subs map[string]models.Subscription
}

// NewStaticSubscriptions creates a provider seeded with subs.
func NewStaticSubscriptions(subs map[string]models.Subscription) *StaticSubscriptions {
	s := &StaticSubscriptions{subs: make(map[string]models.Subscription, len(subs))}
	for id, sub := range subs {
		s.subs[id] = sub
	}
	return s
}

// Set replaces the subscription for userID.
func (s *StaticSubscriptions) Set(userID string, sub models.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[userID] = sub
}

// Subscription implements SubscriptionProvider.
func (s *StaticSubscriptions) Subscription(ctx context.Context, userID string) (models.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return models.Subscription{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subs[userID], nil
}
