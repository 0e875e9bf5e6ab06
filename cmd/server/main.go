// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

// Package main is the entry point for the Postcraft feed server.
//
// Postcraft merges four content collections (design templates, video
// templates, greeting templates and business category images) into one
// category-balanced, searchable, paginated feed with premium gating and
// per-user like and download tracking.
//
// # Startup order
//
//  1. Configuration: defaults, optional YAML file, environment (koanf)
//  2. Logging: zerolog configured from the logging section
//  3. Content store: DuckDB, optionally seeded with demo data
//  4. Engagement record store: memory, badger or redis
//  5. Event bus: in-process GoChannel or NATS, with a supervised consumer
//  6. Engine: ledger, access gate, feed assembler and service
//  7. HTTP: chi router served by a supervised http.Server
//
// # Signal handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests for SERVER_SHUTDOWN_TIMEOUT, then the event bus, the
// engagement store and the database are closed in that order.
//
// # Example
//
//	export DUCKDB_PATH=/data/postcraft.duckdb
//	export DATABASE_SEED=true
//	export ENGAGEMENT_BACKEND=redis
//	export REDIS_ADDR=redis:6379
//	export NATS_URL=nats://nats:4222
//	./postcraft
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/postcraft/internal/access"
	"github.com/tomtom215/postcraft/internal/api"
	"github.com/tomtom215/postcraft/internal/config"
	"github.com/tomtom215/postcraft/internal/database"
	"github.com/tomtom215/postcraft/internal/engagement"
	"github.com/tomtom215/postcraft/internal/eventprocessor"
	"github.com/tomtom215/postcraft/internal/feed"
	"github.com/tomtom215/postcraft/internal/logging"
	"github.com/tomtom215/postcraft/internal/supervisor"
	"github.com/tomtom215/postcraft/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Sequential startup with one branch per optional component
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("engagement_backend", cfg.Engagement.Backend).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Starting Postcraft")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Content store
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	if cfg.Database.SeedDemoData {
		if err := db.SeedDemoData(ctx); err != nil {
			logging.Error().Err(err).Msg("Failed to seed demo data")
			return
		}
		logging.Info().Msg("Demo catalog seeded (DATABASE_SEED=true)")
	}

	// Engagement record store
	records, err := engagement.OpenStore(ctx, engagementStoreConfig(cfg))
	if err != nil {
		logging.Error().Err(err).Str("backend", cfg.Engagement.Backend).Msg("Failed to open engagement store")
		return
	}
	defer func() {
		if err := records.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing engagement store")
		}
	}()
	logging.Info().Str("backend", records.Backend).Msg("Engagement store ready")

	// Supervisor tree
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	checks := map[string]api.HealthCheck{
		"content_store":    db.Ping,
		"engagement_store": records.Ping,
	}

	// Event bus
	var ledgerOpts []engagement.Option
	if cfg.Events.Enabled {
		bus, err := eventprocessor.NewBus(eventBusConfig(cfg), logger)
		if err != nil {
			logging.Error().Err(err).Msg("Failed to create event bus")
			return
		}
		defer func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
		ledgerOpts = append(ledgerOpts, engagement.WithEventSink(bus))
		tree.AddMessagingService(eventprocessor.NewConsumer(bus, eventprocessor.LogHandler(logger), logger))
		checks["event_bus"] = eventBusCheck(bus)
	} else {
		logging.Info().Msg("Engagement events disabled (EVENTS_ENABLED=false)")
	}

	// Engine
	ledger := engagement.NewLedger(records.Store, db, logger, ledgerOpts...)
	gate := access.NewGate(cfg.Feed.PlaceholderBase)
	assembler := feed.NewAssembler(db, gate, ledger, feedConfig(cfg), logger)
	defer assembler.Close()
	service := feed.NewService(assembler, ledger, db, gate, db, logger)

	// HTTP
	handler := api.NewHandler(service, checks, api.HandlerConfig{
		HistoryLimit: cfg.Engagement.HistoryLimit,
		Version:      version,
	}, logger)
	router := api.NewRouter(handler, middlewareConfig(cfg))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, services.WithLogger(logger)))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Postcraft stopped")
}
