// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package feed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/postcraft/internal/content"
	"github.com/tomtom215/postcraft/internal/metrics"
	"github.com/tomtom215/postcraft/internal/models"
)

// SourceHealth is the breaker view of one content source.
type SourceHealth struct {
	Source              string `json:"source"`
	State               string `json:"state"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}

// sourceBreaker guards one source kind.
//
// The breaker measures real time for its interval and open timeout, so tests
// drive it through request outcomes rather than the clock.
type sourceBreaker struct {
	kind models.SourceKind
	name string
	cb   *gobreaker.CircuitBreaker[content.SourceResult]
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newSourceBreaker(kind models.SourceKind, cfg Config, logger zerolog.Logger) *sourceBreaker {
	name := "content-source-" + kind.String()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[content.SourceResult](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.BreakerFailureRatio
			if shouldTrip {
				logger.Warn().
					Str("source", kind.String()).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logger.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		// A caller that went away says nothing about the source.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, content.ErrNotFound)
		},
	})

	return &sourceBreaker{kind: kind, name: name, cb: cb}
}

// execute runs fn under the breaker and records the outcome.
func (b *sourceBreaker) execute(fn func() (content.SourceResult, error)) (content.SourceResult, error) {
	result, err := b.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	case isBreakerRejection(err):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	}
	return result, err
}

func (b *sourceBreaker) health() SourceHealth {
	return SourceHealth{
		Source:              b.kind.String(),
		State:               stateToString(b.cb.State()),
		ConsecutiveFailures: b.cb.Counts().ConsecutiveFailures,
	}
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
