// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/tomtom215/postcraft/internal/content"
	"github.com/tomtom215/postcraft/internal/metrics"
	"github.com/tomtom215/postcraft/internal/models"
)

// Failure reasons reported per source.
const (
	reasonTimeout     = "timeout"
	reasonCircuitOpen = "circuit_open"
	reasonError       = "error"
)

// sourceOutcome is the result of reading one source kind.
type sourceOutcome struct {
	kind   models.SourceKind
	result content.SourceResult
	err    *SourceError
}

func newRetryPolicy(kind models.SourceKind, cfg Config) retrypolicy.RetryPolicy[content.SourceResult] {
	source := kind.String()
	return retrypolicy.NewBuilder[content.SourceResult]().
		WithMaxRetries(cfg.MaxRetries).
		WithDelay(cfg.RetryDelay).
		HandleIf(func(_ content.SourceResult, err error) bool {
			return isTransient(err)
		}).
		OnRetry(func(failsafe.ExecutionEvent[content.SourceResult]) {
			metrics.SourceFetchRetries.WithLabelValues(source).Inc()
		}).
		ReturnLastFailure().
		Build()
}

// isTransient reports whether a failed source call is worth repeating.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, content.ErrNotFound) &&
		!isBreakerRejection(err)
}

// fetchAll queries every kind concurrently and waits for all of them.
// Outcomes are returned in the order of kinds.
func (a *Assembler) fetchAll(ctx context.Context, kinds []models.SourceKind, q content.SourceQuery) []sourceOutcome {
	outcomes := make([]sourceOutcome, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(idx int, kind models.SourceKind) {
			defer wg.Done()
			outcomes[idx] = a.fetchSource(ctx, kind, q)
		}(i, kind)
	}
	wg.Wait()

	return outcomes
}

// fetchSource reads one kind within its own timeout budget.
func (a *Assembler) fetchSource(ctx context.Context, kind models.SourceKind, q content.SourceQuery) sourceOutcome {
	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.SourceTimeout)
	defer cancel()

	breaker := a.breakers[kind]
	result, err := failsafe.With[content.SourceResult](a.retries[kind]).
		WithContext(fetchCtx).
		Get(func() (content.SourceResult, error) {
			return breaker.execute(func() (content.SourceResult, error) {
				return a.store.QuerySource(fetchCtx, kind, q)
			})
		})

	out := sourceOutcome{kind: kind, result: result}
	reason := ""
	if err != nil {
		reason = classify(fetchCtx, err)
		out.err = &SourceError{Kind: kind, Reason: reason, Err: err}
		out.result = content.SourceResult{}
	}
	metrics.RecordSourceFetch(kind.String(), time.Since(start), reason)
	return out
}

func classify(ctx context.Context, err error) string {
	switch {
	case isBreakerRejection(err):
		return reasonCircuitOpen
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return reasonTimeout
	default:
		return reasonError
	}
}
