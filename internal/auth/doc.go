// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

// Package auth implements credential verification and the two-token
// session model: short-lived HS256 access tokens plus opaque,
// single-use refresh tokens.
//
// # Components
//
//   - TokenManager: signs and validates JWT access tokens
//   - RefreshStore: tracks outstanding refresh tokens (memory or BadgerDB)
//   - Service: issues token pairs and rotates/revokes refresh tokens
//   - LockoutManager: temporary account lockout after repeated failures
//   - RequireAuth: HTTP middleware that puts validated Claims in context
//
// # Token model
//
// Access tokens are stateless JWTs carrying user_id, username and role;
// they cannot be revoked before expiry, so their TTL is kept short
// (15 minutes by default). Role changes therefore take effect on the
// next token issue, not mid-flight.
//
// Refresh tokens are opaque random strings. Only a SHA-256 digest is
// stored server-side, so a leaked token store does not yield usable
// tokens. Redeeming a refresh token consumes it: presenting the same
// token twice fails, which also surfaces token theft (whichever party
// presents it second is turned away).
//
// # Storage backends
//
// The refresh store runs in-memory by default and on BadgerDB when
// configured, in which case tokens survive restarts. BadgerDB entries
// carry a TTL matching the token lifetime; a periodic sweep removes
// anything compaction has not collected yet.
package auth
