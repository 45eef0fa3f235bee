// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

// Package models defines the data structures shared across CineTrack:
// domain entities, request/response shapes, and role constants.
//
// # Entities
//
// Every entity carries the same lifecycle fields:
//
//	CreatedAt time.Time   // set on insert
//	UpdatedAt time.Time   // bumped on every change
//	IsActive  bool        // soft-delete flag, true on insert
//	DeletedAt *time.Time  // set when soft-deleted
//
// Deleting an entity flips IsActive and stamps DeletedAt; rows are not
// removed. Read queries filter to active rows by default, so a soft-deleted
// movie vanishes from listings, averages and uniqueness checks without
// losing history. The one exception is watchlist membership removal, which
// is a hard delete: an item that was removed and re-added is a new row.
//
// # Ownership
//
// Watchlist, Review and Rating belong to a user and implement the Owned
// interface. The authorization guard allows writes when the caller is staff
// (editor or admin) or owns the resource. Movie, Genre and StreamingPlatform
// have no owner; only staff may write them.
//
// # Uniqueness
//
// Duplicate prevention lives in storage constraints, not application
// checks:
//
//	users:           username, email
//	genres:          name
//	platforms:       name
//	movies:          (title, release_date)
//	watchlists:      (user_id, name)
//	watchlist_items: (watchlist_id, movie_id)
//	reviews:         (user_id, movie_id, title)
//	ratings:         (user_id, movie_id)
//
// # Response Envelope
//
// All HTTP responses use APIResponse with a status, payload, metadata and
// optional structured error. RatingSummary.Average and Movie.AverageRating
// are *float64 so an unrated movie serializes as null rather than 0.
//
// # See Also
//
//   - internal/database: persistence for these entities
//   - internal/api: handlers mapping HTTP to these shapes
package models
