// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Feed       FeedConfig       `koanf:"feed"`
	Engagement EngagementConfig `koanf:"engagement"`
	Redis      RedisConfig      `koanf:"redis"`
	Badger     BadgerConfig     `koanf:"badger"`
	Database   DatabaseConfig   `koanf:"database"`
	Events     EventsConfig     `koanf:"events"`
	Security   SecurityConfig   `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development staging production"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is json (production) or console (development).
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// FeedConfig tunes feed assembly.
type FeedConfig struct {
	// SourceTimeout bounds each source fetch, retries included.
	SourceTimeout time.Duration `koanf:"source_timeout" validate:"gt=0"`
	MaxRetries    int           `koanf:"max_retries" validate:"min=0,max=5"`
	RetryDelay    time.Duration `koanf:"retry_delay" validate:"min=0"`

	// CacheTTL is how long an un-annotated balanced page is reused. Zero
	// disables the cache.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"min=0"`

	BreakerInterval     time.Duration `koanf:"breaker_interval" validate:"min=0"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout" validate:"min=0"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio" validate:"min=0,max=1"`

	PlaceholderBase string `koanf:"placeholder_base" validate:"required"`
}

// EngagementConfig selects the engagement record store.
type EngagementConfig struct {
	Backend      string `koanf:"backend" validate:"oneof=memory badger redis"`
	HistoryLimit int    `koanf:"history_limit" validate:"min=1,max=1000"`
	KeyPrefix    string `koanf:"key_prefix"`
}

// RedisConfig holds the Redis connection used by the redis engagement backend.
type RedisConfig struct {
	Addrs        []string      `koanf:"addrs"`
	MasterName   string        `koanf:"master_name"`
	Username     string        `koanf:"username"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db" validate:"min=0"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	HistoryCap   int           `koanf:"history_cap" validate:"min=0"`
}

// BadgerConfig holds the Badger directory used by the badger engagement backend.
type BadgerConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads" validate:"min=0"` // 0 = use NumCPU
	SeedDemoData bool   `koanf:"seed_demo_data"`
}

// EventsConfig controls engagement event publication.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	NATSURL string `koanf:"nats_url"`
	Topic   string `koanf:"topic" validate:"required_if=Enabled true"`
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
