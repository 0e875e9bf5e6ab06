// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

/*
Package cache provides a named, thread-safe TTL cache.

Entries expire after a per-cache TTL and are swept by a background goroutine
that Close stops. Hits, misses and evictions are exported through the
postcraft_cache_* Prometheus counters using the cache name as the cache_type
label.

	c := cache.New("feed_pages", 30*time.Second)
	defer c.Close()

	key := cache.GenerateKey("feed", filter)
	if v, ok := c.Get(key); ok {
		return v.(cachedPage), nil
	}
*/
package cache
