// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with
// metadata for observability.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"id": 7, "title": "Arrival", ...},
//	  "metadata": {
//	    "timestamp": "2026-08-25T12:00:00Z",
//	    "query_time_ms": 3
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "DUPLICATE_ITEM",
//	    "message": "Movie is already on this watchlist",
//	    "details": {"movie_id": 7}
//	  },
//	  "metadata": {"timestamp": "2026-08-25T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability and performance tracking.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Database query execution time in milliseconds
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters (400)
//   - AUTH_REQUIRED: Missing or invalid credentials (401)
//   - FORBIDDEN: Authenticated but not allowed (403)
//   - NOT_FOUND: Resource doesn't exist or is inactive (404)
//   - DUPLICATE_ITEM: Uniqueness constraint would be violated (409)
//   - RATE_LIMIT_EXCEEDED: Too many requests (429)
//   - DATABASE_ERROR: Query execution failure (500)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Machine-readable error codes carried in APIError.Code.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeAuthRequired  = "AUTH_REQUIRED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeDuplicateItem = "DUPLICATE_ITEM"
	ErrCodeRateLimited   = "RATE_LIMIT_EXCEEDED"
	ErrCodeDatabase      = "DATABASE_ERROR"
)

// PaginationInfo contains offset pagination metadata. Catalog listings are
// small enough that offset paging stays cheap; limit is clamped server-side.
type PaginationInfo struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	TotalCount int  `json:"total_count"`
	HasMore    bool `json:"has_more"`
}

// MoviesResponse wraps a movie listing with pagination info.
type MoviesResponse struct {
	Movies     []Movie        `json:"movies"`
	Pagination PaginationInfo `json:"pagination"`
}

// ReviewsResponse wraps a review listing with pagination info.
type ReviewsResponse struct {
	Reviews    []Review       `json:"reviews"`
	Pagination PaginationInfo `json:"pagination"`
}

// UsersResponse wraps the admin user listing with pagination info.
type UsersResponse struct {
	Users      []User         `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
}

// WatchlistDetail is a watchlist with its items and their movies.
type WatchlistDetail struct {
	Watchlist
	Items []WatchlistItem `json:"items"`
}

// SignupRequest registers a new account. New accounts start as viewers.
type SignupRequest struct {
	Username string `json:"username" validate:"required,username,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest exchanges credentials for a token pair.
//
// Security:
//   - Password is transmitted in plaintext (HTTPS required)
//   - Password is hashed with bcrypt (cost 12) before storage
//   - Login attempts are rate limited per client IP
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest rotates a refresh token into a fresh token pair.
// The presented token is revoked whether or not rotation succeeds.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse carries a signed access token and its rotating refresh
// token. The access token goes in the Authorization header as
// "Bearer <token>"; the refresh token is single-use.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	UserID       int64     `json:"user_id"`
}

// MovieRequest creates or updates a movie. ReleaseDate uses 2006-01-02.
type MovieRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"max=10000"`
	ReleaseDate string  `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Duration    *int    `json:"duration" validate:"omitempty,gt=0"`
	PosterURL   *string `json:"poster_url" validate:"omitempty,url,max=2000"`
	GenreIDs    []int64 `json:"genre_ids" validate:"omitempty,dive,gt=0"`
	PlatformIDs []int64 `json:"platform_ids" validate:"omitempty,dive,gt=0"`
}

// GenreRequest creates or updates a genre.
type GenreRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// PlatformRequest creates or updates a streaming platform.
type PlatformRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Website     string `json:"website" validate:"omitempty,url,max=2000"`
	Description string `json:"description" validate:"max=10000"`
}

// WatchlistRequest creates or updates a watchlist.
type WatchlistRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=150"`
	Description string `json:"description" validate:"max=10000"`
}

// AddItemRequest adds one movie to a watchlist.
type AddItemRequest struct {
	MovieID int64 `json:"movie_id" validate:"required,gt=0"`
}

// BulkAddRequest adds several movies to a watchlist in one call. Each ID
// gets its own outcome; a bad ID never aborts the rest.
type BulkAddRequest struct {
	MovieIDs []int64 `json:"movie_ids" validate:"required,min=1,max=500,dive,gt=0"`
}

// RateRequest scores a movie 1-5. Rating again replaces the prior score.
type RateRequest struct {
	Score int `json:"score" validate:"required,min=1,max=5"`
}

// ReviewRequest creates or updates a review.
type ReviewRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
	Body  string `json:"body" validate:"max=50000"`
}

// RoleUpdateRequest changes a user's role. Admin only.
type RoleUpdateRequest struct {
	Role string `json:"role" validate:"required,oneof=viewer editor admin"`
}

// HealthStatus reports overall service health. Status is "healthy" when
// the database answers pings and the event bus is running, "degraded"
// otherwise; the process keeps serving either way.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	EventBusRunning   bool    `json:"event_bus_running"`
	WebSocketClients  int     `json:"websocket_clients"`
	Uptime            float64 `json:"uptime_seconds"`
}
