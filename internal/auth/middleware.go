// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/models"
)

type claimsContextKey struct{}

// ContextWithClaims returns a context carrying validated token claims.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext extracts the claims RequireAuth stored. The second
// return is false on routes that never went through RequireAuth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*Claims)
	return claims, ok
}

// TokenFromRequest pulls the access token from the Authorization
// header, falling back to the "token" query parameter for WebSocket
// clients, which cannot set headers from the browser API.
func TokenFromRequest(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return r.URL.Query().Get("token")
}

// RequireAuth rejects requests without a valid access token and puts
// the token's Claims into the request context for handlers downstream.
// Authorization (who may do what) lives elsewhere; this middleware only
// establishes who is asking. Each invalid token counts against a per-IP
// failure budget, so a client spraying forged tokens gets 429 instead
// of an unbounded stream of 401s.
func RequireAuth(tokens *TokenManager) func(http.Handler) http.Handler {
	failures := NewFailureLimiter(10, time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := TokenFromRequest(r)
			if tokenString == "" {
				writeAuthRequired(w, "Authentication required")
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				if !failures.Allow(clientIP(r)) {
					writeTooManyFailures(w)
					return
				}
				if errors.Is(err, jwt.ErrTokenExpired) {
					writeAuthRequired(w, "Access token expired")
				} else {
					writeAuthRequired(w, "Invalid access token")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// writeAuthRequired emits the standard 401 envelope. Living here keeps
// the auth package free of an api-package import cycle.
func writeAuthRequired(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="CineTrack"`)
	w.WriteHeader(http.StatusUnauthorized)

	response := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    models.ErrCodeAuthRequired,
			Message: message,
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Error().Err(err).Msg("Failed to encode auth error response")
	}
}

// writeTooManyFailures emits the standard 429 envelope when a client
// exhausts its invalid-token budget.
func writeTooManyFailures(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	response := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    models.ErrCodeRateLimited,
			Message: "Too many failed authentication attempts",
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Error().Err(err).Msg("Failed to encode rate limit response")
	}
}
