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

// ListReviews returns reviews, optionally filtered by movie or author
//
// @Summary List reviews
// @Description Lists active reviews newest first. Filter by movie_id or user_id; both combine.
// @Tags Reviews
// @Produce json
// @Param movie_id query int false "Filter by movie"
// @Param user_id query int false "Filter by author"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} models.APIResponse{data=models.ReviewsResponse} "Reviews"
// @Router /reviews [get]
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	limit, offset := h.pageParams(r)
	filter := database.ReviewFilter{
		MovieID: getInt64Param(r, "movie_id"),
		UserID:  getInt64Param(r, "user_id"),
		Limit:   limit,
		Offset:  offset,
	}

	reviews, total, err := h.db.ListReviews(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to list reviews", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.ReviewsResponse{
			Reviews:    reviews,
			Pagination: paginationInfo(limit, offset, total),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetReview returns one review
//
// @Summary Get a review
// @Tags Reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} models.APIResponse{data=models.Review} "Review"
// @Failure 404 {object} models.APIResponse "Review not found"
// @Router /reviews/{id} [get]
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
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

	review, err := h.db.GetReviewByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrReviewNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Review not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load review", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   review,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// UpdateReview edits a review's title and body
//
// @Summary Update a review
// @Description Author or staff only. The review keeps its author and movie.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param review body models.ReviewRequest true "Review"
// @Success 200 {object} models.APIResponse{data=models.Review} "Updated review"
// @Failure 403 {object} models.APIResponse "Not the author"
// @Failure 404 {object} models.APIResponse "Review not found"
// @Failure 409 {object} models.APIResponse "Title collides with another review by the same author"
// @Router /reviews/{id} [put]
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
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

	var req models.ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	review, err := h.db.GetReviewByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrReviewNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Review not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load review", err)
		return
	}

	if err := h.requireOwner(hctx, review); err != nil {
		RespondAuthError(w, err)
		return
	}

	review.Title = req.Title
	review.Body = req.Body
	if err := h.db.UpdateReview(r.Context(), review); err != nil {
		switch {
		case errors.Is(err, database.ErrReviewNotFound):
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Review not found", nil)
		case errors.Is(err, database.ErrDuplicateReview):
			respondError(w, http.StatusConflict, models.ErrCodeDuplicateItem, "You already have a review with this title on this movie", nil)
		default:
			respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to update review", err)
		}
		return
	}

	logging.Info().Int64("review_id", id).Int64("user_id", hctx.UserID).Msg("Review updated")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   review,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// DeleteReview soft-deletes a review
//
// @Summary Delete a review
// @Description Author or staff only. The review disappears from reads; its row persists.
// @Tags Reviews
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 204 "Review deleted"
// @Failure 403 {object} models.APIResponse "Not the author"
// @Failure 404 {object} models.APIResponse "Review not found"
// @Router /reviews/{id} [delete]
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
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

	review, err := h.db.GetReviewByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrReviewNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Review not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load review", err)
		return
	}

	if err := h.requireOwner(hctx, review); err != nil {
		RespondAuthError(w, err)
		return
	}

	if err := h.db.DeleteReview(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrReviewNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Review not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to delete review", err)
		return
	}

	logging.Info().Int64("review_id", id).Int64("user_id", hctx.UserID).Msg("Review deleted")

	w.WriteHeader(http.StatusNoContent)
}
