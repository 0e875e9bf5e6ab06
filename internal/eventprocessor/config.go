// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package eventprocessor

import "time"

// DefaultTopic is the topic engagement events are published on.
const DefaultTopic = "engagement.events"

// Config configures a Bus.
type Config struct {
	// URL selects NATS. Empty keeps the bus in process.
	URL   string
	Topic string

	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int

	// OutputBuffer is the per-subscriber channel buffer of the in-process bus.
	OutputBuffer int64

	// The publish breaker opens after BreakerFailures consecutive failures
	// and half-opens after BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// DefaultConfig returns production defaults for url. An empty url yields an
// in-process bus.
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		Topic:           DefaultTopic,
		MaxReconnects:   -1, // Unlimited
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 * 1024 * 1024, // 8MB
		OutputBuffer:    256,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig(c.URL)
	if c.Topic == "" {
		c.Topic = d.Topic
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = d.ReconnectWait
	}
	if c.ReconnectBuffer <= 0 {
		c.ReconnectBuffer = d.ReconnectBuffer
	}
	if c.OutputBuffer <= 0 {
		c.OutputBuffer = d.OutputBuffer
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = d.BreakerFailures
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = d.BreakerTimeout
	}
	return c
}
