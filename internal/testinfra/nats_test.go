// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

//go:build integration

package testinfra

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/cinetrack/internal/config"
	"github.com/tomtom215/cinetrack/internal/events"
)

// TestNATSContainerActivityRoundTrip runs the activity event pipeline
// against a real standalone broker: stream provisioning on a fresh
// JetStream instance, publish, and consume.
func TestNATSContainerActivityRoundTrip(t *testing.T) {
	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	broker, err := NewNATSContainer(ctx)
	if err != nil {
		t.Fatalf("failed to start NATS container: %v", err)
	}
	defer CleanupContainer(t, ctx, broker)

	bus, err := events.NewBus(ctx, &config.EventsConfig{
		Enabled:             true,
		URL:                 broker.URL,
		StreamRetentionDays: 1,
	})
	if err != nil {
		t.Fatalf("failed to create bus against container: %v", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			t.Errorf("bus close: %v", err)
		}
	}()

	if !bus.Healthy() {
		t.Fatal("bus reports unhealthy against a running broker")
	}
	if got := bus.Mode(); got != "nats" {
		t.Fatalf("bus mode = %q, want nats", got)
	}

	received := make(chan *events.ActivityEvent, 1)
	consumeCtx, stopConsume := context.WithCancel(ctx)
	defer stopConsume()

	go func() {
		_ = bus.ConsumeActivity(consumeCtx, func(_ context.Context, event *events.ActivityEvent) error {
			select {
			case received <- event:
			default:
			}
			return nil
		})
	}()

	// The ephemeral consumer delivers new messages only; give the
	// subscription a moment to establish before publishing.
	time.Sleep(2 * time.Second)

	sent := events.NewActivityEvent(events.TypeWatchlistItemAdded, 42, "alice")
	sent.WatchlistID = 7
	sent.WatchlistName = "My Watchlist"
	sent.MovieID = 3
	sent.MovieTitle = "Metropolis"
	bus.Emit(ctx, sent)

	select {
	case got := <-received:
		if got.EventID != sent.EventID {
			t.Errorf("event ID = %q, want %q", got.EventID, sent.EventID)
		}
		if got.Type != events.TypeWatchlistItemAdded {
			t.Errorf("event type = %q, want %q", got.Type, events.TypeWatchlistItemAdded)
		}
		if got.MovieTitle != "Metropolis" {
			t.Errorf("movie title = %q, want Metropolis", got.MovieTitle)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("timed out waiting for activity event from container broker")
	}
}
