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

// ListGenres returns all active genres
//
// @Summary List genres
// @Description Returns every active genre ordered by name
// @Tags Catalog
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.Genre} "Genres"
// @Router /genres [get]
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	genres, err := h.db.ListGenres(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to list genres", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   genres,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// CreateGenre creates a genre
//
// @Summary Create a genre
// @Description Creates a genre with a unique name. Requires the editor role.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param genre body models.GenreRequest true "Genre"
// @Success 201 {object} models.APIResponse{data=models.Genre} "Genre created"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 409 {object} models.APIResponse "Name already exists"
// @Router /genres [post]
func (h *Handler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	var req models.GenreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	genre := &models.Genre{Name: req.Name}
	if err := h.db.CreateGenre(r.Context(), genre); err != nil {
		if errors.Is(err, database.ErrDuplicateGenre) {
			respondError(w, http.StatusConflict, models.ErrCodeDuplicateItem, "A genre with this name already exists", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to create genre", err)
		return
	}

	hctx := GetHandlerContext(r)
	logging.Info().Int64("genre_id", genre.ID).Int64("user_id", hctx.UserID).Msg("Genre created")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   genre,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetGenre returns one genre by ID
//
// @Summary Get a genre
// @Tags Catalog
// @Produce json
// @Param id path int true "Genre ID"
// @Success 200 {object} models.APIResponse{data=models.Genre} "Genre"
// @Failure 404 {object} models.APIResponse "Genre not found"
// @Router /genres/{id} [get]
func (h *Handler) GetGenre(w http.ResponseWriter, r *http.Request) {
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

	genre, err := h.db.GetGenreByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrGenreNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Genre not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load genre", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   genre,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// UpdateGenre renames a genre
//
// @Summary Update a genre
// @Description Renames a genre. Requires the editor role.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Genre ID"
// @Param genre body models.GenreRequest true "Genre"
// @Success 200 {object} models.APIResponse{data=models.Genre} "Updated genre"
// @Failure 404 {object} models.APIResponse "Genre not found"
// @Failure 409 {object} models.APIResponse "Name already exists"
// @Router /genres/{id} [put]
func (h *Handler) UpdateGenre(w http.ResponseWriter, r *http.Request) {
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

	var req models.GenreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	genre := &models.Genre{ID: id, Name: req.Name}
	if err := h.db.UpdateGenre(r.Context(), genre); err != nil {
		switch {
		case errors.Is(err, database.ErrGenreNotFound):
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Genre not found", nil)
		case errors.Is(err, database.ErrDuplicateGenre):
			respondError(w, http.StatusConflict, models.ErrCodeDuplicateItem, "A genre with this name already exists", nil)
		default:
			respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to update genre", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   genre,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// DeleteGenre soft-deletes a genre
//
// @Summary Delete a genre
// @Description Soft-deletes a genre; it disappears from reads but the row persists. Requires the editor role.
// @Tags Catalog
// @Security BearerAuth
// @Param id path int true "Genre ID"
// @Success 204 "Genre deleted"
// @Failure 404 {object} models.APIResponse "Genre not found"
// @Router /genres/{id} [delete]
func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
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

	if err := h.db.DeleteGenre(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrGenreNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Genre not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to delete genre", err)
		return
	}

	hctx := GetHandlerContext(r)
	logging.Info().Int64("genre_id", id).Int64("user_id", hctx.UserID).Msg("Genre deleted")

	w.WriteHeader(http.StatusNoContent)
}
