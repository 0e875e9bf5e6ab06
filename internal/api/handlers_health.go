// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package api

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/postcraft/internal/feed"
)

// Health statuses.
const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status        string              `json:"status"`
	Version       string              `json:"version"`
	UptimeSeconds float64             `json:"uptime_seconds"`
	Dependencies  []DependencyStatus  `json:"dependencies"`
	Sources       []feed.SourceHealth `json:"sources"`
}

// DependencyStatus is the probe result for one dependency.
type DependencyStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Health handles GET /api/v1/health. A failed probe or an open source
// breaker reports degraded with 503 so load balancers can react.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	deps := h.probe(r.Context())
	sources := h.service.SourceHealth()

	status := statusHealthy
	for _, d := range deps {
		if !d.Healthy {
			status = statusDegraded
		}
	}
	for _, s := range sources {
		if s.State == "open" {
			status = statusDegraded
		}
	}

	body := HealthStatus{
		Status:        status,
		Version:       h.config.Version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Dependencies:  deps,
		Sources:       sources,
	}
	if status == statusHealthy {
		rw.Success(body)
		return
	}
	rw.write(http.StatusServiceUnavailable, APIResponse{Success: false, Data: body, Meta: rw.meta(nil)})
}

// probe runs every health check concurrently under one timeout.
func (h *Handler) probe(ctx context.Context) []DependencyStatus {
	ctx, cancel := context.WithTimeout(ctx, h.config.HealthTimeout)
	defer cancel()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make([]DependencyStatus, 0, len(h.checks))
	)
	for name, check := range h.checks {
		wg.Add(1)
		go func(name string, check HealthCheck) {
			defer wg.Done()
			d := DependencyStatus{Name: name, Healthy: true}
			if err := check(ctx); err != nil {
				d.Healthy = false
				d.Error = err.Error()
				h.logger.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			}
			mu.Lock()
			out = append(out, d)
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
