// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package feed

import (
	"errors"
	"fmt"

	"github.com/tomtom215/postcraft/internal/models"
	"github.com/tomtom215/postcraft/internal/validation"
)

var (
	// ErrInvalidQuery is returned for filters that cannot be served.
	ErrInvalidQuery = errors.New("invalid feed query")

	// ErrSourceUnavailable marks a source that timed out or failed. It never
	// reaches callers of GetPage; the page is degraded instead.
	ErrSourceUnavailable = errors.New("content source unavailable")

	// ErrFeedUnavailable is returned when every requested source failed.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrResourceNotFound is returned for unknown or unservable resource IDs.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrPremiumLocked is returned when a requester without an active
	// subscription asks for a premium asset.
	ErrPremiumLocked = errors.New("premium content requires an active subscription")
)

// QueryError describes why a filter was rejected. It matches ErrInvalidQuery.
type QueryError struct {
	Reason     string
	Validation *validation.Error
}

func (e *QueryError) Error() string {
	if e.Validation != nil {
		return fmt.Sprintf("%s: %s", ErrInvalidQuery, e.Validation.Error())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidQuery, e.Reason)
}

func (e *QueryError) Unwrap() error { return ErrInvalidQuery }

// Details renders the rejection for an API error payload.
func (e *QueryError) Details() map[string]interface{} {
	if e.Validation != nil {
		return e.Validation.Details()
	}
	return map[string]interface{}{"reason": e.Reason}
}

// SourceError records why one source kind could not be read.
type SourceError struct {
	Kind   models.SourceKind
	Reason string // "timeout", "circuit_open" or "error"
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s %s: %v", e.Kind, e.Reason, e.Err)
}

func (e *SourceError) Unwrap() []error { return []error{ErrSourceUnavailable, e.Err} }
