// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/postcraft/internal/validation"
)

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// Validate checks field constraints with the shared validator, then the
// cross-field rules it cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateEngagement(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateEngagement checks that the selected backend has what it needs.
func (c *Config) validateEngagement() error {
	switch c.Engagement.Backend {
	case "redis":
		if len(c.Redis.Addrs) == 0 {
			return fmt.Errorf("REDIS_ADDRS is required when ENGAGEMENT_BACKEND=redis")
		}
	case "badger":
		if c.Badger.Path == "" && !c.Badger.InMemory {
			return fmt.Errorf("BADGER_PATH is required when ENGAGEMENT_BACKEND=badger")
		}
	}
	return nil
}

// validateEvents checks the NATS URL when one is configured.
func (c *Config) validateEvents() error {
	if !c.Events.Enabled || c.Events.NATSURL == "" {
		return nil
	}
	if err := validateNATSURL(c.Events.NATSURL); err != nil {
		return fmt.Errorf("invalid NATS_URL: %w", err)
	}
	return nil
}

// validateRateLimits keeps rate limiting within sensible bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// ShouldWarnAboutCORS reports a wildcard CORS origin in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
