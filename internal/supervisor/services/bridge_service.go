// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package services

import (
	"context"
)

// ActivityRunner interface matches *websocket.ActivityBridge's Run method.
//
// This interface allows the ActivityBridgeService to work with the bridge
// without importing the websocket package, avoiding circular dependencies.
//
// Satisfied by *websocket.ActivityBridge from internal/websocket/bridge.go.
type ActivityRunner interface {
	Run(ctx context.Context) error
}

// ActivityBridgeService wraps the bus-to-hub activity bridge as a
// supervised service.
//
// The bridge's Run method already implements the suture.Service pattern
// (it blocks consuming events until the context is canceled), so this
// wrapper simply delegates to it and provides a name for logging.
//
// Example usage:
//
//	bridge, _ := websocket.NewActivityBridge(hub, bus)
//	svc := services.NewActivityBridgeService(bridge)
//	tree.AddMessagingService(svc)
type ActivityBridgeService struct {
	bridge ActivityRunner
	name   string
}

// NewActivityBridgeService creates a new activity bridge service wrapper.
func NewActivityBridgeService(bridge ActivityRunner) *ActivityBridgeService {
	return &ActivityBridgeService{
		bridge: bridge,
		name:   "activity-bridge",
	}
}

// Serve implements suture.Service.
//
// This method delegates to bridge.Run which:
//  1. Subscribes to the activity topic on the event bus
//  2. Forwards each event to the hub for broadcast
//  3. Returns when the context is canceled
//
// If the subscription fails, the error is returned immediately, causing
// suture to restart the service according to its backoff policy.
func (s *ActivityBridgeService) Serve(ctx context.Context) error {
	return s.bridge.Run(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *ActivityBridgeService) String() string {
	return s.name
}
