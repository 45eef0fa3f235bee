// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/cinetrack/internal/authz"
	"github.com/tomtom215/cinetrack/internal/models"
)

// Handler authorization errors
var (
	// ErrNotAuthenticated is returned when authentication is required but not present.
	ErrNotAuthenticated = &AuthError{
		Code:       models.ErrCodeAuthRequired,
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrNotAuthorized is returned when the user lacks permission for the action.
	ErrNotAuthorized = &AuthError{
		Code:       models.ErrCodeForbidden,
		Message:    "Access denied: insufficient permissions",
		StatusCode: http.StatusForbidden,
	}
)

// AuthError is a structured error for authentication and authorization
// failures. It is separate from models.APIError so handlers can match it
// with errors.As and map it straight to a response.
type AuthError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return e.Message
}

// RespondAuthError writes an authorization failure response. It understands
// both api.AuthError values and the authz service sentinels.
func RespondAuthError(w http.ResponseWriter, err error) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		respondError(w, authErr.StatusCode, authErr.Code, authErr.Message, nil)
		return
	}

	switch {
	case errors.Is(err, authz.ErrNilSubject):
		respondError(w, http.StatusUnauthorized, models.ErrCodeAuthRequired, "Authentication required", nil)
	case errors.Is(err, authz.ErrAdminRequired):
		respondError(w, http.StatusForbidden, models.ErrCodeForbidden, "Admin role required", nil)
	case errors.Is(err, authz.ErrSelfRoleChange):
		respondError(w, http.StatusForbidden, models.ErrCodeForbidden, "Admins cannot change their own role", nil)
	case errors.Is(err, authz.ErrInvalidRole):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid role", nil)
	case errors.Is(err, authz.ErrNotAuthorized):
		respondError(w, http.StatusForbidden, models.ErrCodeForbidden, "Access denied: insufficient permissions", nil)
	default:
		respondError(w, http.StatusForbidden, models.ErrCodeForbidden, "Access denied", err)
	}
}
