// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package websocket

import (
	"context"
	"errors"

	"github.com/tomtom215/cinetrack/internal/events"
	"github.com/tomtom215/cinetrack/internal/logging"
)

// ActivitySource is the slice of the event bus the bridge consumes.
// events.Bus satisfies it; tests substitute their own.
type ActivitySource interface {
	ConsumeActivity(ctx context.Context, fn func(ctx context.Context, event *events.ActivityEvent) error) error
}

// ActivityBridge forwards activity events from the event bus to the hub,
// where they fan out to connected websocket clients.
type ActivityBridge struct {
	hub    *Hub
	source ActivitySource
}

// NewActivityBridge wires the hub to an event source.
func NewActivityBridge(hub *Hub, source ActivitySource) (*ActivityBridge, error) {
	if hub == nil {
		return nil, errors.New("hub is required")
	}
	if source == nil {
		return nil, errors.New("activity source is required")
	}
	return &ActivityBridge{hub: hub, source: source}, nil
}

// Run consumes activity events until the context is canceled. Broadcast
// is fire-and-forget, so the per-event handler never fails and events
// are always acked.
func (b *ActivityBridge) Run(ctx context.Context) error {
	logging.Info().Msg("activity bridge started")
	err := b.source.ConsumeActivity(ctx, func(_ context.Context, event *events.ActivityEvent) error {
		b.hub.BroadcastActivity(event)
		return nil
	})
	logging.Info().Msg("activity bridge stopped")
	return err
}
