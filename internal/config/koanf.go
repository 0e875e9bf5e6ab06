// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/postcraft/config.yaml",
	"/etc/postcraft/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3857,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Feed: FeedConfig{
			SourceTimeout:       2 * time.Second,
			MaxRetries:          1,
			RetryDelay:          50 * time.Millisecond,
			CacheTTL:            30 * time.Second,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  5,
			BreakerFailureRatio: 0.6,
			PlaceholderBase:     "placeholder://premium",
		},
		Engagement: EngagementConfig{
			Backend:      "memory",
			HistoryLimit: 50,
			KeyPrefix:    "postcraft:engagement",
		},
		Redis: RedisConfig{
			Addrs:        []string{"127.0.0.1:6379"},
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			HistoryCap:   500,
		},
		Badger: BadgerConfig{
			Path: "/data/engagement",
		},
		Database: DatabaseConfig{
			Path:         "/data/postcraft.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			SeedDemoData: false,
		},
		Events: EventsConfig{
			Enabled: true,
			NATSURL: "", // in-process bus
			Topic:   "engagement.events",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// Load reads configuration from, in increasing priority:
//  1. Built-in defaults
//  2. Config file (CONFIG_PATH, or config.yaml if it exists)
//  3. Environment variables
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"redis.addrs",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	"http_host":               "server.host",
	"http_port":               "server.port",
	"server_timeout":          "server.timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"environment":             "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"feed_source_timeout":        "feed.source_timeout",
	"feed_max_retries":           "feed.max_retries",
	"feed_retry_delay":           "feed.retry_delay",
	"feed_cache_ttl":             "feed.cache_ttl",
	"feed_breaker_interval":      "feed.breaker_interval",
	"feed_breaker_timeout":       "feed.breaker_timeout",
	"feed_breaker_min_requests":  "feed.breaker_min_requests",
	"feed_breaker_failure_ratio": "feed.breaker_failure_ratio",
	"feed_placeholder_base":      "feed.placeholder_base",

	"engagement_backend":       "engagement.backend",
	"engagement_history_limit": "engagement.history_limit",
	"engagement_key_prefix":    "engagement.key_prefix",

	"redis_addr":        "redis.addrs",
	"redis_addrs":       "redis.addrs",
	"redis_master_name": "redis.master_name",
	"redis_username":    "redis.username",
	"redis_password":    "redis.password",
	"redis_db":          "redis.db",
	"redis_history_cap": "redis.history_cap",

	"badger_path":      "badger.path",
	"badger_in_memory": "badger.in_memory",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"database_seed":     "database.seed_demo_data",

	"events_enabled": "events.enabled",
	"nats_url":       "events.nats_url",
	"events_topic":   "events.topic",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated process
// environment cannot pollute the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - FEED_SOURCE_TIMEOUT -> feed.source_timeout
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
