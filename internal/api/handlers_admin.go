// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/cinetrack/internal/database"
	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/models"
)

// AdminListUsers returns all accounts, active and deactivated
//
// @Summary List users
// @Description Admin only. Includes deactivated accounts; password hashes are never serialized.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} models.APIResponse{data=models.UsersResponse} "Users"
// @Failure 403 {object} models.APIResponse "Not an admin"
// @Router /admin/users [get]
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	hctx := GetHandlerContext(r)
	if err := hctx.RequireAuthenticated(); err != nil {
		RespondAuthError(w, err)
		return
	}
	if !hctx.IsAdmin() {
		RespondAuthError(w, ErrNotAuthorized)
		return
	}

	limit, offset := h.pageParams(r)
	users, total, err := h.db.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to list users", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.UsersResponse{
			Users:      users,
			Pagination: paginationInfo(limit, offset, total),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// AdminUpdateUserRole changes a user's role
//
// @Summary Change a user's role
// @Description Admin only. Admins cannot change their own role. The target's refresh tokens are revoked so stale role claims expire with the current access token.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param role body models.RoleUpdateRequest true "New role"
// @Success 200 {object} models.APIResponse{data=models.User} "Updated user"
// @Failure 400 {object} models.APIResponse "Unknown role"
// @Failure 403 {object} models.APIResponse "Not an admin, or self-demotion"
// @Failure 404 {object} models.APIResponse "User not found"
// @Router /admin/users/{id}/role [put]
func (h *Handler) AdminUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPut) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	hctx := GetHandlerContext(r)
	if err := hctx.RequireAuthenticated(); err != nil {
		RespondAuthError(w, err)
		return
	}

	id, apiErr := urlID(r, "id")
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	var req models.RoleUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.authz.ValidateRoleChange(hctx.Claims, id, req.Role); err != nil {
		RespondAuthError(w, err)
		return
	}

	if err := h.db.UpdateUserRole(r.Context(), id, req.Role); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to update role", err)
		return
	}

	// A live access token keeps its old role until expiry; revoking the
	// refresh tokens caps that window at the access TTL.
	revoked, err := h.auth.RevokeUserTokens(r.Context(), id)
	if err != nil {
		logging.Warn().Err(err).Int64("user_id", id).Msg("Failed to revoke tokens after role change")
	}

	logging.Info().Int64("user_id", id).Str("role", req.Role).
		Int64("admin_id", hctx.UserID).Int("tokens_revoked", revoked).Msg("User role changed")

	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load user", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   user,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
