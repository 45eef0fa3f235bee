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
	"github.com/tomtom215/cinetrack/internal/events"
	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/models"
)

// loadOwnedWatchlist fetches a watchlist and enforces the ownership
// guard. On failure the response has already been written.
func (h *Handler) loadOwnedWatchlist(w http.ResponseWriter, r *http.Request, hctx *HandlerContext, id int64) *models.Watchlist {
	watchlist, err := h.db.GetWatchlistByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrWatchlistNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Watchlist not found", nil)
			return nil
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load watchlist", err)
		return nil
	}

	if err := h.requireOwner(hctx, watchlist); err != nil {
		RespondAuthError(w, err)
		return nil
	}
	return watchlist
}

// ListWatchlists returns the subject's watchlists
//
// @Summary List watchlists
// @Description Lists the authenticated user's watchlists with item counts. Staff may pass user_id to inspect another user's lists, or user_id=all for every list.
// @Tags Watchlists
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Staff only: another user's ID, or all"
// @Success 200 {object} models.APIResponse{data=[]models.Watchlist} "Watchlists"
// @Failure 401 {object} models.APIResponse "Missing or invalid token"
// @Router /watchlists [get]
func (h *Handler) ListWatchlists(w http.ResponseWriter, r *http.Request) {
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

	scope := hctx.UserID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		if !hctx.IsStaff() {
			RespondAuthError(w, ErrNotAuthorized)
			return
		}
		if raw == "all" {
			scope = 0
		} else if uid := getInt64Param(r, "user_id"); uid > 0 {
			scope = uid
		} else {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid user_id parameter", nil)
			return
		}
	}

	watchlists, err := h.db.ListWatchlists(r.Context(), scope)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to list watchlists", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   watchlists,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// CreateWatchlist creates a watchlist owned by the subject
//
// @Summary Create a watchlist
// @Description Creates a watchlist owned by the authenticated user. Names are unique per owner.
// @Tags Watchlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param watchlist body models.WatchlistRequest true "Watchlist"
// @Success 201 {object} models.APIResponse{data=models.Watchlist} "Watchlist created"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 409 {object} models.APIResponse "Name already used by this user"
// @Router /watchlists [post]
func (h *Handler) CreateWatchlist(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
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

	var req models.WatchlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	watchlist := &models.Watchlist{
		UserID:      hctx.UserID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.db.CreateWatchlist(r.Context(), watchlist); err != nil {
		if errors.Is(err, database.ErrDuplicateWatchlist) {
			respondError(w, http.StatusConflict, models.ErrCodeDuplicateItem, "You already have a watchlist with this name", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to create watchlist", err)
		return
	}

	logging.Info().Int64("watchlist_id", watchlist.ID).Int64("user_id", hctx.UserID).Msg("Watchlist created")

	event := events.NewActivityEvent(events.TypeWatchlistCreated, hctx.UserID, hctx.Username)
	event.WatchlistID = watchlist.ID
	event.WatchlistName = watchlist.Name
	h.emit(r, event)

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   watchlist,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetWatchlist returns a watchlist with its items
//
// @Summary Get a watchlist
// @Description Returns a watchlist and its items with movie summaries. Owner or staff only.
// @Tags Watchlists
// @Produce json
// @Security BearerAuth
// @Param id path int true "Watchlist ID"
// @Success 200 {object} models.APIResponse{data=models.WatchlistDetail} "Watchlist with items"
// @Failure 403 {object} models.APIResponse "Not the owner"
// @Failure 404 {object} models.APIResponse "Watchlist not found"
// @Router /watchlists/{id} [get]
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
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

	id, apiErr := urlID(r, "id")
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	watchlist := h.loadOwnedWatchlist(w, r, hctx, id)
	if watchlist == nil {
		return
	}

	items, err := h.db.ListWatchlistItems(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load watchlist items", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.WatchlistDetail{
			Watchlist: *watchlist,
			Items:     items,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// UpdateWatchlist renames or re-describes a watchlist
//
// @Summary Update a watchlist
// @Description Owner or staff only
// @Tags Watchlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Watchlist ID"
// @Param watchlist body models.WatchlistRequest true "Watchlist"
// @Success 200 {object} models.APIResponse{data=models.Watchlist} "Updated watchlist"
// @Failure 403 {object} models.APIResponse "Not the owner"
// @Failure 404 {object} models.APIResponse "Watchlist not found"
// @Failure 409 {object} models.APIResponse "Name already used by this user"
// @Router /watchlists/{id} [put]
func (h *Handler) UpdateWatchlist(w http.ResponseWriter, r *http.Request) {
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

	var req models.WatchlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	watchlist := h.loadOwnedWatchlist(w, r, hctx, id)
	if watchlist == nil {
		return
	}

	watchlist.Name = req.Name
	watchlist.Description = req.Description
	if err := h.db.UpdateWatchlist(r.Context(), watchlist); err != nil {
		switch {
		case errors.Is(err, database.ErrWatchlistNotFound):
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Watchlist not found", nil)
		case errors.Is(err, database.ErrDuplicateWatchlist):
			respondError(w, http.StatusConflict, models.ErrCodeDuplicateItem, "You already have a watchlist with this name", nil)
		default:
			respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to update watchlist", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   watchlist,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// DeleteWatchlist soft-deletes a watchlist
//
// @Summary Delete a watchlist
// @Description Owner or staff only. The list disappears from reads; its rows persist.
// @Tags Watchlists
// @Security BearerAuth
// @Param id path int true "Watchlist ID"
// @Success 204 "Watchlist deleted"
// @Failure 403 {object} models.APIResponse "Not the owner"
// @Failure 404 {object} models.APIResponse "Watchlist not found"
// @Router /watchlists/{id} [delete]
func (h *Handler) DeleteWatchlist(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	if !h.requireDB(w) {
		return
	}

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

	watchlist := h.loadOwnedWatchlist(w, r, hctx, id)
	if watchlist == nil {
		return
	}

	if err := h.db.DeleteWatchlist(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrWatchlistNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Watchlist not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to delete watchlist", err)
		return
	}

	logging.Info().Int64("watchlist_id", id).Int64("user_id", hctx.UserID).Msg("Watchlist deleted")

	w.WriteHeader(http.StatusNoContent)
}

// ListWatchlistItems returns a watchlist's items with movie summaries
//
// @Summary List watchlist items
// @Description Items in insertion order, each with a movie summary. Owner or staff only.
// @Tags Watchlists
// @Produce json
// @Security BearerAuth
// @Param id path int true "Watchlist ID"
// @Success 200 {object} models.APIResponse{data=[]models.WatchlistItem} "Items"
// @Failure 403 {object} models.APIResponse "Not the owner"
// @Failure 404 {object} models.APIResponse "Watchlist not found"
// @Router /watchlists/{id}/items [get]
func (h *Handler) ListWatchlistItems(w http.ResponseWriter, r *http.Request) {
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

	id, apiErr := urlID(r, "id")
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	if watchlist := h.loadOwnedWatchlist(w, r, hctx, id); watchlist == nil {
		return
	}

	items, err := h.db.ListWatchlistItems(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to list items", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   items,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// AddWatchlistItem adds one movie to a watchlist
//
// @Summary Add a movie to a watchlist
// @Description Adds a movie by ID. Membership is a set: adding a movie the list already holds is a conflict, not a silent no-op.
// @Tags Watchlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Watchlist ID"
// @Param item body models.AddItemRequest true "Movie to add"
// @Success 201 {object} models.APIResponse{data=models.WatchlistItem} "Item added"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 403 {object} models.APIResponse "Not the owner"
// @Failure 404 {object} models.APIResponse "Watchlist or movie not found"
// @Failure 409 {object} models.APIResponse "Movie already on the list"
// @Router /watchlists/{id}/add-item [post]
func (h *Handler) AddWatchlistItem(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
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

	var req models.AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	watchlist := h.loadOwnedWatchlist(w, r, hctx, id)
	if watchlist == nil {
		return
	}

	item, err := h.db.AddWatchlistItem(r.Context(), id, req.MovieID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicateItem):
			respondErrorDetails(w, http.StatusConflict, &models.APIError{
				Code:    models.ErrCodeDuplicateItem,
				Message: "Movie is already on this watchlist",
				Details: map[string]interface{}{"movie_id": req.MovieID},
			})
		case errors.Is(err, database.ErrMovieNotFound):
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Movie not found", nil)
		case errors.Is(err, database.ErrWatchlistNotFound):
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Watchlist not found", nil)
		default:
			respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to add item", err)
		}
		return
	}

	event := events.NewActivityEvent(events.TypeWatchlistItemAdded, hctx.UserID, hctx.Username)
	event.WatchlistID = id
	event.WatchlistName = watchlist.Name
	event.MovieID = req.MovieID
	if item.Movie != nil {
		event.MovieTitle = item.Movie.Title
	}
	h.emit(r, event)

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   item,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// RemoveWatchlistItem removes one movie from a watchlist
//
// @Summary Remove a movie from a watchlist
// @Description Removes a movie by ID. Removing a movie the list does not hold is NotFound; the list is unchanged.
// @Tags Watchlists
// @Accept json
// @Security BearerAuth
// @Param id path int true "Watchlist ID"
// @Param item body models.AddItemRequest true "Movie to remove"
// @Success 204 "Item removed"
// @Failure 403 {object} models.APIResponse "Not the owner"
// @Failure 404 {object} models.APIResponse "Watchlist or item not found"
// @Router /watchlists/{id}/remove-item [post]
func (h *Handler) RemoveWatchlistItem(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !h.requireDB(w) {
		return
	}

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

	var req models.AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	watchlist := h.loadOwnedWatchlist(w, r, hctx, id)
	if watchlist == nil {
		return
	}

	if err := h.db.RemoveWatchlistItem(r.Context(), id, req.MovieID); err != nil {
		switch {
		case errors.Is(err, database.ErrItemNotFound):
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Movie is not on this watchlist", nil)
		case errors.Is(err, database.ErrWatchlistNotFound):
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Watchlist not found", nil)
		default:
			respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to remove item", err)
		}
		return
	}

	event := events.NewActivityEvent(events.TypeWatchlistItemRemoved, hctx.UserID, hctx.Username)
	event.WatchlistID = id
	event.WatchlistName = watchlist.Name
	event.MovieID = req.MovieID
	h.emit(r, event)

	w.WriteHeader(http.StatusNoContent)
}

// BulkAddWatchlistItems adds several movies with per-item outcomes
//
// @Summary Bulk-add movies to a watchlist
// @Description Adds each movie ID independently and reports added, already_present, or movie_not_found per ID. One bad ID never blocks the rest.
// @Tags Watchlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Watchlist ID"
// @Param items body models.BulkAddRequest true "Movie IDs"
// @Success 200 {object} models.APIResponse{data=models.BulkAddResult} "Per-item report"
// @Failure 400 {object} models.APIResponse "Empty or invalid ID list"
// @Failure 403 {object} models.APIResponse "Not the owner"
// @Failure 404 {object} models.APIResponse "Watchlist not found"
// @Router /watchlists/{id}/bulk-add [post]
func (h *Handler) BulkAddWatchlistItems(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
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

	var req models.BulkAddRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	watchlist := h.loadOwnedWatchlist(w, r, hctx, id)
	if watchlist == nil {
		return
	}

	result, err := h.db.BulkAddItems(r.Context(), id, req.MovieIDs)
	if err != nil {
		if errors.Is(err, database.ErrWatchlistNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Watchlist not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to bulk-add items", err)
		return
	}

	logging.Info().Int64("watchlist_id", id).Int64("user_id", hctx.UserID).
		Int("requested", result.Requested).Int("added", result.Added).Msg("Bulk add completed")

	event := events.NewActivityEvent(events.TypeWatchlistBulkAdd, hctx.UserID, hctx.Username)
	event.WatchlistID = id
	event.WatchlistName = watchlist.Name
	event.ItemCount = result.Added
	h.emit(r, event)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
