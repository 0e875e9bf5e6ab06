// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package eventprocessor

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/postcraft/internal/engagement"
)

// ErrInvalidEvent is returned for events missing identifying fields.
var ErrInvalidEvent = errors.New("invalid engagement event")

// Message metadata keys.
const (
	metadataEventType = "event_type"
	metadataKind      = "kind"
)

// validateEvent checks the fields every consumer relies on.
func validateEvent(ev *engagement.Event) error {
	switch {
	case ev.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidEvent)
	case ev.Type == "":
		return fmt.Errorf("%w: type is required", ErrInvalidEvent)
	case ev.UserID == "" || ev.ResourceID == "":
		return fmt.Errorf("%w: user and resource are required", ErrInvalidEvent)
	}
	return nil
}

// MarshalEvent validates ev and encodes it as JSON.
func MarshalEvent(ev *engagement.Event) ([]byte, error) {
	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes and validates a JSON payload.
func UnmarshalEvent(data []byte) (engagement.Event, error) {
	var ev engagement.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return engagement.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := validateEvent(&ev); err != nil {
		return engagement.Event{}, err
	}
	return ev, nil
}
