// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/postcraft/internal/logging"
	"github.com/tomtom215/postcraft/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generates when absent", "", false},
		{"keeps upstream id", "upstream-123", true},
		{"replaces oversized id", strings.Repeat("x", maxRequestIDLen+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ctxID, corrID string
			h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				ctxID = logging.RequestIDFromContext(r.Context())
				corrID = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got != ctxID {
				t.Errorf("header %q and context %q differ", got, ctxID)
			}
			if corrID == "" {
				t.Error("correlation ID missing from context")
			}
			if tt.keep {
				if got != tt.incoming {
					t.Errorf("request ID = %q, want %q", got, tt.incoming)
				}
				return
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("generated ID %q is not a UUID: %v", got, err)
			}
		})
	}
}

func TestPrometheusMetrics_LabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Post("/items/{id}/like", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodPost, "/items/{id}/like", "201")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items/"+id+"/like", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("counter delta = %v, want 3", got)
	}
}

func TestRoutePattern_Unmatched(t *testing.T) {
	t.Parallel()

	if got := routePattern(httptest.NewRequest(http.MethodGet, "/x", nil)); got != unmatchedRoute {
		t.Errorf("routePattern = %q, want %q", got, unmatchedRoute)
	}
}

func TestAccessLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewTestLogger(&buf)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(logger))
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if entry["route"] != "/boom" || entry["request_id"] != "rid-1" {
		t.Errorf("unexpected fields: %v", entry)
	}
	if entry["status"] != float64(http.StatusInternalServerError) {
		t.Errorf("status = %v", entry["status"])
	}
}

func TestAccessLog_HandlerLoggerFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewTestLogger(&buf)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(logger))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		l := logging.LoggerFromContext(r.Context())
		l.Info().Msg("plain")
		logging.Ctx(r.Context()).Info().Msg("scoped")
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "rid-2")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	// The access line itself is debug and depends on the global level.
	if len(lines) < 2 {
		t.Fatalf("got %d log lines, want at least 2 (%s)", len(lines), buf.String())
	}

	for i, want := range []string{"plain", "scoped"} {
		var entry map[string]interface{}
		if err := json.Unmarshal(lines[i], &entry); err != nil {
			t.Fatalf("line %d is not JSON: %v", i, err)
		}
		if entry["message"] != want || entry["component"] != "http" {
			t.Errorf("line %d = %v, want message %q from the http logger", i, entry, want)
		}
		if want == "scoped" && entry["request_id"] != "rid-2" {
			t.Errorf("scoped line missing request_id: %v", entry)
		}
	}
}
