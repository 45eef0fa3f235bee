// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

// Package api provides the HTTP surface of CineTrack: Chi routing,
// request handlers for the catalog (genres, platforms, movies), user
// libraries (watchlists, ratings, reviews), authentication, and the
// WebSocket activity feed.
//
// Handlers are split across files by resource:
//   - handlers.go: Handler struct and constructor
//   - handlers_helpers.go: response envelope and parsing helpers
//   - handlers_auth.go: signup, login, refresh, verify, logout, me
//   - handlers_genres.go / handlers_platforms.go: catalog dimensions
//   - handlers_movies.go: movie CRUD, ratings, per-movie reviews
//   - handlers_watchlists.go: watchlist CRUD and item mutations
//   - handlers_reviews.go: review listing and moderation
//   - handlers_admin.go: user administration
//   - handlers_health.go: liveness and readiness probes
//   - handlers_websocket.go: activity feed upgrade endpoint
//
// Every response is a models.APIResponse envelope. Domain errors from
// the database package are translated at this boundary into structured
// API error codes; nothing below the handlers writes HTTP.
package api
