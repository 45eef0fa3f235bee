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

// ListPlatforms returns all active streaming platforms
//
// @Summary List streaming platforms
// @Tags Catalog
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.StreamingPlatform} "Platforms"
// @Router /platforms [get]
func (h *Handler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	platforms, err := h.db.ListPlatforms(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to list platforms", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   platforms,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// CreatePlatform creates a streaming platform
//
// @Summary Create a streaming platform
// @Description Creates a platform with a unique name. Requires the editor role.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param platform body models.PlatformRequest true "Platform"
// @Success 201 {object} models.APIResponse{data=models.StreamingPlatform} "Platform created"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 409 {object} models.APIResponse "Name already exists"
// @Router /platforms [post]
func (h *Handler) CreatePlatform(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	var req models.PlatformRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	platform := &models.StreamingPlatform{
		Name:        req.Name,
		Website:     req.Website,
		Description: req.Description,
	}
	if err := h.db.CreatePlatform(r.Context(), platform); err != nil {
		if errors.Is(err, database.ErrDuplicatePlatform) {
			respondError(w, http.StatusConflict, models.ErrCodeDuplicateItem, "A platform with this name already exists", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to create platform", err)
		return
	}

	hctx := GetHandlerContext(r)
	logging.Info().Int64("platform_id", platform.ID).Int64("user_id", hctx.UserID).Msg("Platform created")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   platform,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetPlatform returns one platform by ID
//
// @Summary Get a streaming platform
// @Tags Catalog
// @Produce json
// @Param id path int true "Platform ID"
// @Success 200 {object} models.APIResponse{data=models.StreamingPlatform} "Platform"
// @Failure 404 {object} models.APIResponse "Platform not found"
// @Router /platforms/{id} [get]
func (h *Handler) GetPlatform(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	id, apiErr := urlID(r, "id")
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	platform, err := h.db.GetPlatformByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrPlatformNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Platform not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load platform", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   platform,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// UpdatePlatform updates a platform's fields
//
// @Summary Update a streaming platform
// @Description Requires the editor role.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Platform ID"
// @Param platform body models.PlatformRequest true "Platform"
// @Success 200 {object} models.APIResponse{data=models.StreamingPlatform} "Updated platform"
// @Failure 404 {object} models.APIResponse "Platform not found"
// @Failure 409 {object} models.APIResponse "Name already exists"
// @Router /platforms/{id} [put]
func (h *Handler) UpdatePlatform(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPut) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	id, apiErr := urlID(r, "id")
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	var req models.PlatformRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	platform := &models.StreamingPlatform{
		ID:          id,
		Name:        req.Name,
		Website:     req.Website,
		Description: req.Description,
	}
	if err := h.db.UpdatePlatform(r.Context(), platform); err != nil {
		switch {
		case errors.Is(err, database.ErrPlatformNotFound):
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Platform not found", nil)
		case errors.Is(err, database.ErrDuplicatePlatform):
			respondError(w, http.StatusConflict, models.ErrCodeDuplicateItem, "A platform with this name already exists", nil)
		default:
			respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to update platform", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   platform,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// DeletePlatform soft-deletes a platform
//
// @Summary Delete a streaming platform
// @Description Soft-deletes a platform. Requires the editor role.
// @Tags Catalog
// @Security BearerAuth
// @Param id path int true "Platform ID"
// @Success 204 "Platform deleted"
// @Failure 404 {object} models.APIResponse "Platform not found"
// @Router /platforms/{id} [delete]
func (h *Handler) DeletePlatform(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	if !h.requireDB(w) {
		return
	}

	id, apiErr := urlID(r, "id")
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.db.DeletePlatform(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrPlatformNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Platform not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to delete platform", err)
		return
	}

	hctx := GetHandlerContext(r)
	logging.Info().Int64("platform_id", id).Int64("user_id", hctx.UserID).Msg("Platform deleted")

	w.WriteHeader(http.StatusNoContent)
}
