// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

// Package events routes activity events from API handlers to the live
// activity feed using Watermill, with NATS JetStream as the optional
// durable backend.
//
// Every catalog or library mutation that matters to other users (a new
// movie, a rating, a review, watchlist changes) is emitted as an
// ActivityEvent after its database write commits:
//
//	┌──────────────┐     ┌─────────────┐     ┌──────────────┐
//	│ API Handlers │ ──▶ │  Event Bus  │ ──▶ │ WebSocket Hub│ ──▶ browsers
//	└──────────────┘     └─────────────┘     └──────────────┘
//
// # Backends
//
// The bus backend is chosen at startup from EventsConfig:
//
//   - In-process (default): a Watermill gochannel. Zero dependencies,
//     no persistence; the feed works within a single instance, which is
//     how most deployments run.
//   - NATS: an external JetStream server. Events are persisted to the
//     CINETRACK_ACTIVITY stream with bounded retention, and every
//     instance's feed sees every event.
//   - NATS embedded: same as NATS, but the server runs in-process on
//     loopback for single-binary deployments.
//
// All events share one subject so the backends stay interchangeable;
// the Type field discriminates event kinds.
//
// # Delivery Semantics
//
// Publishing is best effort by design: Bus.Emit logs and swallows
// failures because a broker outage must never fail the API request
// whose database write already committed. In NATS mode a circuit
// breaker rejects publishes fast once the broker is down, JetStream
// dedupes retries on the event ID, and consumers are ephemeral
// (DeliverNew) because the feed is live, not a replay log.
package events
