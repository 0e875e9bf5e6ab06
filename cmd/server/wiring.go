// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/postcraft/internal/api"
	"github.com/tomtom215/postcraft/internal/config"
	"github.com/tomtom215/postcraft/internal/engagement"
	"github.com/tomtom215/postcraft/internal/eventprocessor"
	"github.com/tomtom215/postcraft/internal/feed"
)

func engagementStoreConfig(cfg *config.Config) engagement.FactoryConfig {
	return engagement.FactoryConfig{
		Backend:        cfg.Engagement.Backend,
		KeyPrefix:      cfg.Engagement.KeyPrefix,
		BadgerPath:     cfg.Badger.Path,
		BadgerInMemory: cfg.Badger.InMemory,
		Redis: engagement.RedisConfig{
			Addrs:        cfg.Redis.Addrs,
			MasterName:   cfg.Redis.MasterName,
			Username:     cfg.Redis.Username,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		},
		HistoryCap: cfg.Redis.HistoryCap,
	}
}

func feedConfig(cfg *config.Config) feed.Config {
	return feed.Config{
		SourceTimeout:       cfg.Feed.SourceTimeout,
		MaxRetries:          cfg.Feed.MaxRetries,
		RetryDelay:          cfg.Feed.RetryDelay,
		CacheTTL:            cfg.Feed.CacheTTL,
		BreakerInterval:     cfg.Feed.BreakerInterval,
		BreakerTimeout:      cfg.Feed.BreakerTimeout,
		BreakerMinRequests:  cfg.Feed.BreakerMinRequests,
		BreakerFailureRatio: cfg.Feed.BreakerFailureRatio,
	}
}

func eventBusConfig(cfg *config.Config) eventprocessor.Config {
	ec := eventprocessor.DefaultConfig(cfg.Events.NATSURL)
	if cfg.Events.Topic != "" {
		ec.Topic = cfg.Events.Topic
	}
	return ec
}

func middlewareConfig(cfg *config.Config) api.ChiMiddlewareConfig {
	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mw.RateLimitRequests = cfg.Security.RateLimitReqs
	mw.RateLimitWindow = cfg.Security.RateLimitWindow
	mw.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mw
}

// eventBusCheck reports an open publish breaker as unhealthy.
func eventBusCheck(bus *eventprocessor.Bus) api.HealthCheck {
	return func(context.Context) error {
		if state := bus.BreakerState(); state == "open" {
			return fmt.Errorf("event bus circuit breaker is %s", state)
		}
		return nil
	}
}
