// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService supervises an HTTP server. On cancellation it shuts the
// server down gracefully within shutdownTimeout.
type HTTPServerService struct {
	server          HTTPServer
	listener        net.Listener
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

// Option configures an HTTPServerService.
type Option func(*HTTPServerService)

// WithListener serves on an already bound listener instead of the server's
// Addr. The listener is consumed by the first Serve.
func WithListener(l net.Listener) Option {
	return func(s *HTTPServerService) { s.listener = l }
}

// WithLogger sets the service logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(s *HTTPServerService) {
		s.logger = logger.With().Str("component", "http_server").Logger()
	}
}

// NewHTTPServerService wraps server.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration, opts ...Option) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	s := &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		logger:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve implements suture.Service. It returns ctx.Err() after a graceful
// shutdown and a wrapped error if the server stops on its own.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if l := h.listener; l != nil {
			h.listener = nil
			err = h.server.Serve(l)
		} else {
			err = h.server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return errors.New("http server stopped unexpectedly")

	case <-ctx.Done():
		h.logger.Info().Dur("timeout", h.shutdownTimeout).Msg("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for supervisor logs.
func (h *HTTPServerService) String() string {
	return "http-server"
}
