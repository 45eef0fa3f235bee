// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to manage Docker containers for integration tests,
// providing realistic testing environments that closely match production.
//
// # NATS Container
//
// The NATSContainer provides a real NATS JetStream broker for testing the
// activity event pipeline end to end:
//
//	func TestActivityEvents(t *testing.T) {
//	    ctx := context.Background()
//	    nats, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer nats.Terminate(ctx)
//
//	    bus, err := events.NewBus(ctx, &config.EventsConfig{
//	        Enabled: true,
//	        URL:     nats.URL,
//	    })
//	    // Publish and consume against a real broker
//	}
//
// Unit tests cover the same pipeline against the embedded nats-server and
// the in-process gochannel backend; the container path exists to validate
// the external-broker deployment mode (reconnects, stream provisioning
// against a standalone server).
//
// # CI Considerations
//
// These tests require Docker and network access. In CI:
//   - Self-hosted runners have Docker pre-installed
//   - Container images are cached between runs
//   - Tests are skipped gracefully if Docker is unavailable
//
// All files in this package carry the integration build tag so the default
// test run never touches Docker.
package testinfra
