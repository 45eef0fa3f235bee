// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package events

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current event schema version.
// Increment this when making breaking changes to ActivityEvent.
const SchemaVersion = 1

// StreamName is the JetStream stream holding activity events.
const StreamName = "CINETRACK_ACTIVITY"

// TopicActivity is the single subject all activity events are published
// to. One subject keeps the in-process and NATS backends interchangeable
// (the in-process bus matches topics literally, not by wildcard); the
// Type field discriminates event kinds.
const TopicActivity = "cinetrack.activity"

// Event types carried in ActivityEvent.Type.
const (
	TypeMovieCreated         = "movie.created"
	TypeRatingCreated        = "rating.created"
	TypeRatingUpdated        = "rating.updated"
	TypeRatingDeleted        = "rating.deleted"
	TypeReviewCreated        = "review.created"
	TypeWatchlistCreated     = "watchlist.created"
	TypeWatchlistItemAdded   = "watchlist.item_added"
	TypeWatchlistItemRemoved = "watchlist.item_removed"
	TypeWatchlistBulkAdd     = "watchlist.bulk_add"
)

// ActivityEvent is the canonical record of a catalog or library mutation.
// It feeds the live activity stream; the fields beyond the actor are set
// per event type and omitted otherwise.
type ActivityEvent struct {
	// Schema version for forward/backward compatibility
	SchemaVersion int `json:"schema_version,omitempty"`

	// Identification
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Actor
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`

	// Subject of the mutation
	MovieID       int64  `json:"movie_id,omitempty"`
	MovieTitle    string `json:"movie_title,omitempty"`
	WatchlistID   int64  `json:"watchlist_id,omitempty"`
	WatchlistName string `json:"watchlist_name,omitempty"`
	ReviewID      int64  `json:"review_id,omitempty"`
	ReviewTitle   string `json:"review_title,omitempty"`
	Score         int    `json:"score,omitempty"`
	ItemCount     int    `json:"item_count,omitempty"`
}

// NewActivityEvent creates an event with a unique ID, timestamp, and
// schema version. Type-specific fields are set by the caller.
func NewActivityEvent(eventType string, userID int64, username string) *ActivityEvent {
	return &ActivityEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		UserID:        userID,
		Username:      username,
	}
}

// Validate checks required fields and returns an error if validation fails.
func (e *ActivityEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.Type == "" {
		return &ValidationError{Field: "type", Message: "required"}
	}
	if e.UserID <= 0 {
		return &ValidationError{Field: "user_id", Message: "required"}
	}
	return nil
}

// Topic returns the subject this event is published to.
func (e *ActivityEvent) Topic() string {
	return TopicActivity
}

// GetSchemaVersion returns the schema version, defaulting to 1 for
// events serialized before the field existed.
func (e *ActivityEvent) GetSchemaVersion() int {
	if e.SchemaVersion == 0 {
		return 1
	}
	return e.SchemaVersion
}

// ValidationError describes a missing or malformed event field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid event: " + e.Field + " " + e.Message
}
