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
	"github.com/tomtom215/cinetrack/internal/metrics"
	"github.com/tomtom215/cinetrack/internal/models"
)

// ListMovies returns a filtered page of the movie catalog
//
// @Summary List movies
// @Description Lists active movies with optional filters. Each movie carries its genres, platforms, and rating aggregate.
// @Tags Catalog
// @Produce json
// @Param search query string false "Substring match on title or description"
// @Param genre_id query int false "Only movies linked to this genre"
// @Param platform_id query int false "Only movies available on this platform"
// @Param release_year query int false "Only movies released in this year"
// @Param sort query string false "created_at, release_date, or title; prefix with - for descending"
// @Param limit query int false "Page size"
// @Param offset query int false "Page start"
// @Success 200 {object} models.APIResponse{data=models.MoviesResponse} "Movies"
// @Router /movies [get]
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	limit, offset := h.pageParams(r)
	filter := database.MovieFilter{
		Search:      r.URL.Query().Get("search"),
		GenreID:     getInt64Param(r, "genre_id"),
		PlatformID:  getInt64Param(r, "platform_id"),
		ReleaseYear: getIntParam(r, "release_year", 0),
		Sort:        r.URL.Query().Get("sort"),
		Limit:       limit,
		Offset:      offset,
	}

	movies, total, err := h.db.ListMovies(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to list movies", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.MoviesResponse{
			Movies:     movies,
			Pagination: paginationInfo(limit, offset, total),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// CreateMovie adds a movie to the catalog
//
// @Summary Create a movie
// @Description Creates a movie with optional genre and platform links. Requires the editor role. Unknown link IDs are a validation failure, not a server error.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param movie body models.MovieRequest true "Movie"
// @Success 201 {object} models.APIResponse{data=models.Movie} "Movie created"
// @Failure 400 {object} models.APIResponse "Invalid body or unknown genre/platform ID"
// @Failure 409 {object} models.APIResponse "Title and release date already exist"
// @Router /movies [post]
func (h *Handler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	var req models.MovieRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	movie := movieFromRequest(0, &req)
	if err := h.db.CreateMovie(r.Context(), movie, req.GenreIDs, req.PlatformIDs); err != nil {
		respondMovieWriteError(w, err)
		return
	}

	hctx := GetHandlerContext(r)
	logging.Info().Int64("movie_id", movie.ID).Int64("user_id", hctx.UserID).
		Str("title", sanitizeLogValue(movie.Title)).Msg("Movie created")

	event := events.NewActivityEvent(events.TypeMovieCreated, hctx.UserID, hctx.Username)
	event.MovieID = movie.ID
	event.MovieTitle = movie.Title
	h.emit(r, event)

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   movie,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetMovie returns one movie with links and rating aggregate
//
// @Summary Get a movie
// @Description Returns a movie with its genres, platforms, average rating (null when unrated), and rating count
// @Tags Catalog
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} models.APIResponse{data=models.Movie} "Movie"
// @Failure 404 {object} models.APIResponse "Movie not found"
// @Router /movies/{id} [get]
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
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

	movie, err := h.db.GetMovieByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrMovieNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load movie", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   movie,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// UpdateMovie replaces a movie's fields and links
//
// @Summary Update a movie
// @Description Replaces title, description, dates, and genre/platform links. Requires the editor role.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param movie body models.MovieRequest true "Movie"
// @Success 200 {object} models.APIResponse{data=models.Movie} "Updated movie"
// @Failure 400 {object} models.APIResponse "Invalid body or unknown genre/platform ID"
// @Failure 404 {object} models.APIResponse "Movie not found"
// @Failure 409 {object} models.APIResponse "Title and release date already exist"
// @Router /movies/{id} [put]
func (h *Handler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
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

	var req models.MovieRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	movie := movieFromRequest(id, &req)
	if err := h.db.UpdateMovie(r.Context(), movie, req.GenreIDs, req.PlatformIDs); err != nil {
		respondMovieWriteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   movie,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// DeleteMovie soft-deletes a movie
//
// @Summary Delete a movie
// @Description Soft-deletes a movie; it disappears from listings, watch lists keep their rows. Requires the editor role.
// @Tags Catalog
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Success 204 "Movie deleted"
// @Failure 404 {object} models.APIResponse "Movie not found"
// @Router /movies/{id} [delete]
func (h *Handler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
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

	if err := h.db.DeleteMovie(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrMovieNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to delete movie", err)
		return
	}

	hctx := GetHandlerContext(r)
	logging.Info().Int64("movie_id", id).Int64("user_id", hctx.UserID).Msg("Movie deleted")

	w.WriteHeader(http.StatusNoContent)
}

// RateMovie records or replaces the subject's score for a movie
//
// @Summary Rate a movie
// @Description Scores a movie 1-5 for the authenticated user. Rating again replaces the prior score in place (one rating per user per movie).
// @Tags Ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param rating body models.RateRequest true "Score"
// @Success 201 {object} models.APIResponse{data=models.Rating} "Resulting rating"
// @Failure 400 {object} models.APIResponse "Score out of range"
// @Failure 404 {object} models.APIResponse "Movie not found"
// @Router /movies/{id}/rate [post]
func (h *Handler) RateMovie(w http.ResponseWriter, r *http.Request) {
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

	movieID, apiErr := urlID(r, "id")
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	var req models.RateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	movie, err := h.db.GetMovieByID(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, database.ErrMovieNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load movie", err)
		return
	}

	rating := &models.Rating{
		UserID:  hctx.UserID,
		MovieID: movieID,
		Score:   req.Score,
	}
	created, err := h.db.UpsertRating(r.Context(), rating)
	if err != nil {
		if errors.Is(err, database.ErrMovieNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to save rating", err)
		return
	}

	metrics.RecordRatingUpsert(!created)

	eventType := events.TypeRatingCreated
	if !created {
		eventType = events.TypeRatingUpdated
	}
	event := events.NewActivityEvent(eventType, hctx.UserID, hctx.Username)
	event.MovieID = movieID
	event.MovieTitle = movie.Title
	event.Score = req.Score
	h.emit(r, event)

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   rating,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// UnrateMovie retracts the subject's rating for a movie
//
// @Summary Retract a rating
// @Description Soft-deletes the authenticated user's rating; the movie's aggregate no longer counts it
// @Tags Ratings
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Success 204 "Rating retracted"
// @Failure 404 {object} models.APIResponse "No rating to retract"
// @Router /movies/{id}/rate [delete]
func (h *Handler) UnrateMovie(w http.ResponseWriter, r *http.Request) {
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

	movieID, apiErr := urlID(r, "id")
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.db.DeleteRating(r.Context(), hctx.UserID, movieID); err != nil {
		if errors.Is(err, database.ErrRatingNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "No rating to retract", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to retract rating", err)
		return
	}

	event := events.NewActivityEvent(events.TypeRatingDeleted, hctx.UserID, hctx.Username)
	event.MovieID = movieID
	h.emit(r, event)

	w.WriteHeader(http.StatusNoContent)
}

// MovieReviews lists a movie's reviews
//
// @Summary List a movie's reviews
// @Description Active reviews for one movie, newest first, paginated
// @Tags Reviews
// @Produce json
// @Param id path int true "Movie ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page start"
// @Success 200 {object} models.APIResponse{data=models.ReviewsResponse} "Reviews"
// @Failure 404 {object} models.APIResponse "Movie not found"
// @Router /movies/{id}/reviews [get]
func (h *Handler) MovieReviews(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	movieID, apiErr := urlID(r, "id")
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	if _, err := h.db.GetMovieByID(r.Context(), movieID); err != nil {
		if errors.Is(err, database.ErrMovieNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Movie not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load movie", err)
		return
	}

	limit, offset := h.pageParams(r)
	reviews, total, err := h.db.ListReviews(r.Context(), database.ReviewFilter{
		MovieID: movieID,
		Limit:   limit,
		Offset:  offset,
	})
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

// CreateMovieReview writes a review for a movie
//
// @Summary Review a movie
// @Description Creates a review authored by the authenticated user. One user may review the same movie under several distinct titles.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param review body models.ReviewRequest true "Review"
// @Success 201 {object} models.APIResponse{data=models.Review} "Review created"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 404 {object} models.APIResponse "Movie not found"
// @Failure 409 {object} models.APIResponse "Same-titled review already exists"
// @Router /movies/{id}/reviews [post]
func (h *Handler) CreateMovieReview(w http.ResponseWriter, r *http.Request) {
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

	movieID, apiErr := urlID(r, "id")
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

	review := &models.Review{
		UserID:  hctx.UserID,
		MovieID: movieID,
		Title:   req.Title,
		Body:    req.Body,
	}
	if err := h.db.CreateReview(r.Context(), review); err != nil {
		switch {
		case errors.Is(err, database.ErrMovieNotFound):
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Movie not found", nil)
		case errors.Is(err, database.ErrDuplicateReview):
			respondError(w, http.StatusConflict, models.ErrCodeDuplicateItem, "You already reviewed this movie under this title", nil)
		default:
			respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to create review", err)
		}
		return
	}

	review.Username = hctx.Username

	event := events.NewActivityEvent(events.TypeReviewCreated, hctx.UserID, hctx.Username)
	event.MovieID = movieID
	event.ReviewID = review.ID
	event.ReviewTitle = review.Title
	h.emit(r, event)

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   review,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// movieFromRequest maps a validated MovieRequest onto a movie entity.
// ReleaseDate already passed datetime validation, so the parse cannot
// fail on validated input.
func movieFromRequest(id int64, req *models.MovieRequest) *models.Movie {
	movie := &models.Movie{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		PosterURL:   req.PosterURL,
	}
	if req.ReleaseDate != "" {
		if t, err := time.Parse("2006-01-02", req.ReleaseDate); err == nil {
			movie.ReleaseDate = &t
		}
	}
	return movie
}

// respondMovieWriteError maps movie create/update failures. Unknown link
// IDs are client input errors, not server faults.
func respondMovieWriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrMovieNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Movie not found", nil)
	case errors.Is(err, database.ErrGenreNotFound):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "One or more genre IDs do not exist", nil)
	case errors.Is(err, database.ErrPlatformNotFound):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "One or more platform IDs do not exist", nil)
	case errors.Is(err, database.ErrDuplicateMovie):
		respondError(w, http.StatusConflict, models.ErrCodeDuplicateItem, "A movie with this title and release date already exists", nil)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to save movie", err)
	}
}
