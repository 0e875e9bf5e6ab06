// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

/*
Package config provides centralized configuration management for Postcraft.

Configuration is layered with Koanf v2:
  - Built-in defaults (see defaultConfig)
  - An optional YAML file: CONFIG_PATH, or config.yaml in the working directory
  - Environment variables, which override everything else

Only explicitly mapped environment variables are read, so unrelated process
environment never leaks into the configuration.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT: listen address (default: 0.0.0.0:3857)
  - SERVER_TIMEOUT: read/write timeout (default: 30s)
  - SERVER_SHUTDOWN_TIMEOUT: graceful shutdown budget (default: 15s)
  - ENVIRONMENT: development or production

Feed:
  - FEED_SOURCE_TIMEOUT: per-source fetch budget (default: 2s)
  - FEED_MAX_RETRIES, FEED_RETRY_DELAY: transient failure retry
  - FEED_CACHE_TTL: balanced page cache lifetime, 0 disables (default: 30s)
  - FEED_BREAKER_*: per-source circuit breaker tuning
  - FEED_PLACEHOLDER_BASE: asset URL prefix for locked premium items

Engagement:
  - ENGAGEMENT_BACKEND: memory, badger or redis (default: memory)
  - ENGAGEMENT_HISTORY_LIMIT: default download history size
  - REDIS_ADDRS (comma-separated) or REDIS_ADDR, REDIS_PASSWORD, REDIS_DB
  - BADGER_PATH: Badger directory for the badger backend

Database:
  - DUCKDB_PATH: content database file, ":memory:" for an ephemeral catalog
  - DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - DATABASE_SEED: load the demo catalog at startup

Events:
  - EVENTS_ENABLED: publish engagement events (default: true)
  - NATS_URL: publish to NATS; empty keeps events in process
  - EVENTS_TOPIC: topic name (default: engagement.events)

Security:
  - CORS_ORIGINS: comma-separated allowed origins
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include caller file:line

# Usage

	cfg, err := config.Load()
	if err != nil {
	    return err
	}
	db, err := database.New(&cfg.Database)

Config is immutable after Load and safe for concurrent reads.
*/
package config
