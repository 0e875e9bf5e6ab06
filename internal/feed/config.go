// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package feed

import "time"

// Config tunes page assembly.
type Config struct {
	// SourceTimeout bounds one source fetch including its retry.
	SourceTimeout time.Duration
	// MaxRetries is the number of retries for a transient source failure.
	MaxRetries int
	RetryDelay time.Duration

	// CacheTTL enables the balanced page cache when positive.
	CacheTTL time.Duration

	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SourceTimeout:       2 * time.Second,
		MaxRetries:          1,
		RetryDelay:          50 * time.Millisecond,
		BreakerInterval:     time.Minute,
		BreakerTimeout:      30 * time.Second,
		BreakerMinRequests:  5,
		BreakerFailureRatio: 0.6,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = d.SourceTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.BreakerInterval <= 0 {
		c.BreakerInterval = d.BreakerInterval
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = d.BreakerTimeout
	}
	if c.BreakerMinRequests == 0 {
		c.BreakerMinRequests = d.BreakerMinRequests
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		c.BreakerFailureRatio = d.BreakerFailureRatio
	}
	return c
}
