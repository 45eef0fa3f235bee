// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package events

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// SerializeEvent validates and marshals an event for publishing.
// Validation runs first so malformed events never reach the wire.
func SerializeEvent(event *ActivityEvent) ([]byte, error) {
	if event == nil {
		return nil, ErrNilEvent
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DeserializeEvent unmarshals and validates an event payload.
func DeserializeEvent(data []byte) (*ActivityEvent, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	var event ActivityEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	return &event, nil
}
