// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package authz

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinetrack/internal/auth"
	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/models"
)

// Middleware enforces the route policy on every request passing through
// it. It reads claims left by auth.RequireAuth when present and falls
// back to the default role, so it can sit on public route groups too.
type Middleware struct {
	service *Service
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// Authorize checks the request's role against the route policy before
// invoking the next handler.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		allowed, err := m.service.CanAccess(claims, r.URL.Path, r.Method)
		if err != nil {
			logging.Error().Err(err).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("Authorization check failed")
			writeAuthzError(w, http.StatusInternalServerError,
				models.ErrCodeDatabase, "Authorization check failed")
			return
		}

		if !allowed {
			logAuthzDenial(claims, r)
			writeAuthzError(w, http.StatusForbidden,
				models.ErrCodeForbidden, "Insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// logAuthzDenial logs a denied request with enough context to audit it.
func logAuthzDenial(claims *auth.Claims, r *http.Request) {
	evt := logging.Warn().
		Str("path", r.URL.Path).
		Str("method", r.Method)
	if claims != nil {
		evt = evt.Int64("user_id", claims.UserID).
			Str("username", claims.Username).
			Str("role", claims.Role)
	} else {
		evt = evt.Str("role", "anonymous")
	}
	evt.Msg("Authorization denied")
}

// writeAuthzError emits the standard error envelope. Living here keeps
// the authz package free of an api-package import cycle.
func writeAuthzError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Error().Err(err).Msg("Failed to encode authz error response")
	}
}
