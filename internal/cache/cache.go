// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/postcraft/internal/metrics"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = time.Minute

// Entry is a cached value with its expiry.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a thread-safe TTL cache. Hits, misses and evictions are also
// exported as Prometheus counters labelled with the cache name.
type Cache struct {
	name    string
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]Entry
	stats   Stats

	stop      chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

// New creates a cache and starts its sweeper. Call Close to stop it.
func New(name string, ttl time.Duration) *Cache {
	return NewWithCleanup(name, ttl, DefaultCleanupInterval)
}

// NewWithCleanup is New with an explicit sweep interval.
func NewWithCleanup(name string, ttl, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		name:    name,
		ttl:     ttl,
		entries: make(map[string]Entry),
		stats:   Stats{LastCleanup: time.Now()},
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.cleanupLoop(cleanupInterval)
	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, still := c.entries[key]; still && time.Now().After(current.ExpiresAt) {
			delete(c.entries, key)
			c.stats.Evictions++
			metrics.CacheEvictions.WithLabelValues(c.name).Inc()
		}
		c.mu.Unlock()
		ok = false
	}

	c.mu.Lock()
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	c.mu.Unlock()

	if !ok {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return entry.Data, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{Data: value, ExpiresAt: time.Now().Add(ttl)}
	c.stats.TotalKeys = int64(len(c.entries))
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.TotalKeys = int64(len(c.entries))
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]Entry)
	c.stats.Evictions += int64(n)
	c.stats.TotalKeys = 0
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
}

// GetStats returns a copy of the counters.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the sweeper. The cache stays readable.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes all expired entries
func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	c.stats.Evictions += int64(evicted)
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
	if evicted > 0 {
		metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(evicted))
	}
}

// GenerateKey creates a cache key from the method name and parameters
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
