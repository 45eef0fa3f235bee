// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package services

import (
	"context"
	"fmt"
)

// EventBusCloser interface matches *events.Bus's shutdown method.
//
// The bus connects eagerly in its constructor, so the only lifecycle
// work left for supervision is holding it open for the life of the
// process and closing it on shutdown.
//
// Satisfied by *events.Bus from internal/events/bus.go.
type EventBusCloser interface {
	Close() error
}

// EventBusService owns the event bus lifecycle under supervision.
//
// It adapts the bus's construct-then-Close pattern to suture's Serve
// pattern:
//  1. Blocks until the context is canceled
//  2. Calls Close() to drain publishers and disconnect
//
// Example usage:
//
//	bus, _ := events.NewBus(cfg.Events)
//	svc := services.NewEventBusService(bus)
//	tree.AddMessagingService(svc)
type EventBusService struct {
	bus  EventBusCloser
	name string
}

// NewEventBusService creates a new event bus service wrapper.
func NewEventBusService(bus EventBusCloser) *EventBusService {
	return &EventBusService{
		bus:  bus,
		name: "event-bus",
	}
}

// Serve implements suture.Service.
//
// The bus is already connected when this runs, so Serve only waits for
// shutdown and then closes it. Close errors are propagated so they show
// up in the supervisor's event log.
func (s *EventBusService) Serve(ctx context.Context) error {
	<-ctx.Done()

	if err := s.bus.Close(); err != nil {
		return fmt.Errorf("event bus close failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *EventBusService) String() string {
	return s.name
}
