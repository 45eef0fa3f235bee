// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package models

import (
	"time"
)

// Owned is implemented by resources that belong to a single user.
// Ownership drives the modify guard: a non-staff user may only change
// resources whose OwnerID matches their own. Catalog entities (Movie,
// Genre, StreamingPlatform) carry no owner and are staff-managed.
type Owned interface {
	OwnerID() int64
}

// User is an account that can sign in, own watchlists, write reviews and
// rate movies. PasswordHash is bcrypt output and never serialized.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	IsActive     bool       `json:"is_active"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Genre is a movie category (Drama, Sci-Fi, ...). Names are unique among
// active rows.
type Genre struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	IsActive  bool       `json:"is_active"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// StreamingPlatform is a service movies are available on (Netflix, ...).
// Names are unique among active rows.
type StreamingPlatform struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Website     string     `json:"website,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	IsActive    bool       `json:"is_active"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Movie is a catalog entry. (Title, ReleaseDate) is unique among active
// rows; two cuts of the same film need distinct release dates.
//
// ReleaseDate uses a date-only format on the wire (2006-01-02).
// Duration is in minutes and must be positive when set.
type Movie struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	PosterURL   *string    `json:"poster_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	IsActive    bool       `json:"is_active"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	// Genres and Platforms are populated by detail queries; list queries
	// may leave them nil to avoid N+1 fan-out.
	Genres    []Genre             `json:"genres,omitempty"`
	Platforms []StreamingPlatform `json:"platforms,omitempty"`

	// AverageRating is the mean of active rating scores, nil when the
	// movie has no ratings. RatingCount is the number of active ratings.
	AverageRating *float64 `json:"average_rating"`
	RatingCount   int      `json:"rating_count"`
}

// Watchlist is a user's named collection of movies. (UserID, Name) is
// unique among active rows.
type Watchlist struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	IsActive    bool       `json:"is_active"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	// ItemCount is populated by list queries.
	ItemCount int `json:"item_count"`
}

// OwnerID implements Owned.
func (w *Watchlist) OwnerID() int64 { return w.UserID }

// WatchlistItem links a movie into a watchlist. (WatchlistID, MovieID) is
// unique among active rows; membership is a set, not a bag.
type WatchlistItem struct {
	ID          int64      `json:"id"`
	WatchlistID int64      `json:"watchlist_id"`
	MovieID     int64      `json:"movie_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	IsActive    bool       `json:"is_active"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	// Movie is populated when items are listed with their movies.
	Movie *Movie `json:"movie,omitempty"`
}

// Review is a user's written take on a movie. (UserID, MovieID, Title) is
// unique among active rows, so one user can review the same movie from
// several angles under distinct titles.
type Review struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	MovieID   int64      `json:"movie_id"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	IsActive  bool       `json:"is_active"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Username is populated by queries that join users for display.
	Username string `json:"username,omitempty"`
}

// OwnerID implements Owned.
func (r *Review) OwnerID() int64 { return r.UserID }

// Rating is a user's 1-5 score for a movie. (UserID, MovieID) is unique
// among active rows; re-rating updates the score in place.
type Rating struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	MovieID   int64      `json:"movie_id"`
	Score     int        `json:"score"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	IsActive  bool       `json:"is_active"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// OwnerID implements Owned.
func (r *Rating) OwnerID() int64 { return r.UserID }

// RatingSummary aggregates the active ratings of a movie. Average is nil
// when no active ratings exist, which keeps "unrated" distinct from
// "rated 0" in API responses.
type RatingSummary struct {
	MovieID int64    `json:"movie_id"`
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

// Bulk add outcome states. Each requested movie ID resolves to exactly
// one of these.
const (
	// BulkOutcomeAdded means the movie was inserted into the watchlist.
	BulkOutcomeAdded = "added"

	// BulkOutcomeAlreadyPresent means the watchlist already held the movie.
	BulkOutcomeAlreadyPresent = "already_present"

	// BulkOutcomeMovieNotFound means no active movie has the requested ID.
	BulkOutcomeMovieNotFound = "movie_not_found"
)

// BulkAddOutcome reports what happened to one movie ID during a bulk add.
// Item is set only for the added status.
type BulkAddOutcome struct {
	MovieID int64          `json:"movie_id"`
	Status  string         `json:"status"`
	Item    *WatchlistItem `json:"item,omitempty"`
}

// BulkAddResult is the full per-item report for a bulk add request. The
// operation never aborts midway: valid IDs land even when others fail.
type BulkAddResult struct {
	WatchlistID int64            `json:"watchlist_id"`
	Requested   int              `json:"requested"`
	Added       int              `json:"added"`
	Outcomes    []BulkAddOutcome `json:"outcomes"`
}
