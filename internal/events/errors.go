// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package events

import "errors"

var (
	// ErrNilEvent is returned when a nil event is passed to the serializer
	// or publisher.
	ErrNilEvent = errors.New("event is nil")

	// ErrEmptyPayload is returned when deserializing an empty message body.
	ErrEmptyPayload = errors.New("event payload is empty")

	// ErrBusClosed is returned when publishing or subscribing on a bus
	// that has been shut down.
	ErrBusClosed = errors.New("event bus is closed")

	// ErrNilConfig is returned when a constructor receives a nil config.
	ErrNilConfig = errors.New("events config is nil")

	// ErrServerNotReady is returned when the embedded broker does not
	// accept connections within the startup deadline.
	ErrServerNotReady = errors.New("embedded nats server not ready")
)
