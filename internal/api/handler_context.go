// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

/*
handler_context.go - Request Context Helpers for Authorization

Extracts the authenticated subject from the request context and exposes
the checks handlers need: authentication, staff status, and the ownership
guard over owned resources (watchlists, ratings, reviews).

Usage:

	func (h *Handler) SomeHandler(w http.ResponseWriter, r *http.Request) {
	    hctx := GetHandlerContext(r)
	    if err := hctx.RequireAuthenticated(); err != nil {
	        RespondAuthError(w, err)
	        return
	    }
	    if err := h.requireOwner(hctx, watchlist); err != nil {
	        RespondAuthError(w, err)
	        return
	    }
	    // ... proceed with handler logic
	}
*/

package api

import (
	"net/http"

	"github.com/tomtom215/cinetrack/internal/auth"
	"github.com/tomtom215/cinetrack/internal/models"
)

// HandlerContext provides request-scoped authorization context for handlers.
type HandlerContext struct {
	// Claims is the verified access token payload. Nil for
	// unauthenticated requests.
	Claims *auth.Claims

	// UserID is the authenticated user's ID; zero when unauthenticated.
	UserID int64

	// Username is the authenticated user's name; empty when unauthenticated.
	Username string

	// Role is the subject's role carried in the token (viewer, editor,
	// admin); empty when unauthenticated.
	Role string

	// RequestID identifies this request for logging correlation.
	RequestID string
}

// GetHandlerContext extracts the authentication context from an HTTP
// request. Claims are set by auth.RequireAuth; on public routes they are
// absent and the context reports unauthenticated.
func GetHandlerContext(r *http.Request) *HandlerContext {
	hctx := &HandlerContext{
		RequestID: r.Header.Get("X-Request-ID"),
	}

	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		hctx.Claims = claims
		hctx.UserID = claims.UserID
		hctx.Username = claims.Username
		hctx.Role = claims.Role
	}

	return hctx
}

// IsAuthenticated reports whether the request carries a verified subject.
func (hctx *HandlerContext) IsAuthenticated() bool {
	return hctx != nil && hctx.Claims != nil
}

// IsStaff reports whether the subject holds a staff role (editor or
// admin). Staff bypass the ownership guard on library resources.
func (hctx *HandlerContext) IsStaff() bool {
	return hctx.IsAuthenticated() && models.IsStaffRole(hctx.Role)
}

// IsAdmin reports whether the subject holds the admin role.
func (hctx *HandlerContext) IsAdmin() bool {
	return hctx.IsAuthenticated() && hctx.Role == models.RoleAdmin
}

// RequireAuthenticated returns ErrNotAuthenticated when no verified
// subject is present.
func (hctx *HandlerContext) RequireAuthenticated() error {
	if !hctx.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// requireOwner rejects mutation of a resource the subject neither owns
// nor may moderate. The predicate is authz.Service.CanModify over the
// closed Owned variant set; this helper only shapes the failure.
func (h *Handler) requireOwner(hctx *HandlerContext, resource models.Owned) error {
	if !hctx.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if !h.authz.CanModify(hctx.Claims, resource.OwnerID()) {
		return ErrNotAuthorized
	}
	return nil
}
