// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/postcraft/internal/middleware"
)

// Router builds the HTTP handler tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for handler.
func NewRouter(handler *Handler, mw ChiMiddlewareConfig) *Router {
	return &Router{handler: handler, chiMiddleware: NewChiMiddleware(mw)}
}

// Setup returns the configured chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog(router.handler.logger))
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Health stays outside the limiter so probes are never throttled.
		r.Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Get("/feed", router.handler.Feed)

			r.Route("/content/{id}", func(r chi.Router) {
				r.Post("/like", router.handler.Like)
				r.Delete("/like", router.handler.Unlike)
				r.Post("/like/toggle", router.handler.ToggleLike)
				r.Post("/download", router.handler.Download)
			})

			r.Get("/me/downloads", router.handler.DownloadHistory)
		})
	})

	return r
}
