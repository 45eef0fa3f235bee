// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

/*
Package websocket streams live activity to connected clients.

It implements a hub-and-spoke pattern over gorilla/websocket: the hub
owns the client set and fans messages out, each client runs a read pump
(pings, connection health) and a write pump (messages, keepalives), and
the ActivityBridge feeds the hub from the event bus.

	┌───────────┐    ┌─────┐
	│  events   │ ─▶ │ Hub │ ─▶ Client1, Client2, ...
	│ (bridge)  │    └─────┘
	└───────────┘

Messages are JSON envelopes:

	{"type": "activity", "data": {"type": "rating.created", ...}}

The feed is one-directional and best-effort: clients that stop reading
are dropped once their send buffer fills, a full broadcast buffer drops
the message, and shutdown closes every client deterministically in id
order.

The HTTP upgrade endpoint lives in internal/api, which checks the
request origin against the configured CORS origins before handing the
connection to NewClient.
*/
package websocket
