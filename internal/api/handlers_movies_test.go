// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/tomtom215/cinetrack/internal/database"
	"github.com/tomtom215/cinetrack/internal/models"
)

func TestRateMovie(t *testing.T) {
	h := setupTestHandler(t)
	alice := createTestUser(t, h, "alice", models.RoleViewer)
	movie := createTestMovie(t, h, "Metropolis")
	movieID := strconv.FormatInt(movie.ID, 10)

	rate := func(user *models.User, target string, score int) *httptest.ResponseRecorder {
		req := newRequest(t, "POST", "/api/v1/movies/"+target+"/rate",
			models.RateRequest{Score: score})
		req = asUser(req, user)
		req = withURLParams(req, map[string]string{"id": target})
		rec := httptest.NewRecorder()
		h.RateMovie(rec, req)
		return rec
	}

	t.Run("first rating is recorded", func(t *testing.T) {
		rec := rate(alice, movieID, 3)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var resp struct {
			Status string        `json:"status"`
			Data   models.Rating `json:"data"`
		}
		decodeBody(t, rec, &resp)
		if resp.Data.Score != 3 {
			t.Errorf("score = %d, want 3", resp.Data.Score)
		}
	})

	t.Run("rating again replaces in place", func(t *testing.T) {
		rec := rate(alice, movieID, 5)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		rating, err := h.db.GetUserRating(context.Background(), alice.ID, movie.ID)
		if err != nil {
			t.Fatalf("failed to load rating: %v", err)
		}
		if rating.Score != 5 {
			t.Errorf("stored score = %d, want 5", rating.Score)
		}

		summary, err := h.db.GetRatingSummary(context.Background(), movie.ID)
		if err != nil {
			t.Fatalf("failed to load summary: %v", err)
		}
		if summary.Count != 1 {
			t.Errorf("rating count after re-rate = %d, want 1", summary.Count)
		}
	})

	t.Run("out of range scores are rejected without a row", func(t *testing.T) {
		bob := createTestUser(t, h, "bob", models.RoleViewer)
		for _, score := range []int{0, 6, -1} {
			rec := rate(bob, movieID, score)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("score %d: status = %d, want %d", score, rec.Code, http.StatusBadRequest)
				continue
			}
			if code := errorCode(t, rec); code != models.ErrCodeValidation {
				t.Errorf("score %d: error code = %q, want %q", score, code, models.ErrCodeValidation)
			}
		}
		if _, err := h.db.GetUserRating(context.Background(), bob.ID, movie.ID); !errors.Is(err, database.ErrRatingNotFound) {
			t.Errorf("rating lookup after rejected scores = %v, want ErrRatingNotFound", err)
		}
	})

	t.Run("unknown movie is not found", func(t *testing.T) {
		rec := rate(alice, "99999", 4)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("unauthenticated is rejected", func(t *testing.T) {
		rec := rate(nil, movieID, 4)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func TestUnrateMovie(t *testing.T) {
	h := setupTestHandler(t)
	alice := createTestUser(t, h, "alice", models.RoleViewer)
	movie := createTestMovie(t, h, "Sunrise")
	movieID := strconv.FormatInt(movie.ID, 10)

	unrate := func() *httptest.ResponseRecorder {
		req := newRequest(t, "DELETE", "/api/v1/movies/"+movieID+"/rate", nil)
		req = asUser(req, alice)
		req = withURLParams(req, map[string]string{"id": movieID})
		rec := httptest.NewRecorder()
		h.UnrateMovie(rec, req)
		return rec
	}

	t.Run("retracting without a rating is not found", func(t *testing.T) {
		rec := unrate()
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNotFound, rec.Body.String())
		}
	})

	t.Run("retracting removes the score from the aggregate", func(t *testing.T) {
		if _, err := h.db.UpsertRating(context.Background(),
			&models.Rating{UserID: alice.ID, MovieID: movie.ID, Score: 4}); err != nil {
			t.Fatalf("failed to seed rating: %v", err)
		}

		rec := unrate()
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		summary, err := h.db.GetRatingSummary(context.Background(), movie.ID)
		if err != nil {
			t.Fatalf("failed to load summary: %v", err)
		}
		if summary.Count != 0 {
			t.Errorf("rating count after retraction = %d, want 0", summary.Count)
		}
		if summary.Average != nil {
			t.Errorf("average after retraction = %v, want nil", *summary.Average)
		}
	})
}

func TestGetMovieRatingAggregate(t *testing.T) {
	h := setupTestHandler(t)
	alice := createTestUser(t, h, "alice", models.RoleViewer)
	bob := createTestUser(t, h, "bob", models.RoleViewer)
	movie := createTestMovie(t, h, "Metropolis")
	movieID := strconv.FormatInt(movie.ID, 10)

	getMovie := func() *httptest.ResponseRecorder {
		req := newRequest(t, "GET", "/api/v1/movies/"+movieID, nil)
		req = withURLParams(req, map[string]string{"id": movieID})
		rec := httptest.NewRecorder()
		h.GetMovie(rec, req)
		return rec
	}

	t.Run("unrated movie reports a null average, never zero", func(t *testing.T) {
		rec := getMovie()
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var resp struct {
			Status string       `json:"status"`
			Data   models.Movie `json:"data"`
		}
		decodeBody(t, rec, &resp)
		if resp.Data.AverageRating != nil {
			t.Errorf("average rating = %v, want null", *resp.Data.AverageRating)
		}
		if resp.Data.RatingCount != 0 {
			t.Errorf("rating count = %d, want 0", resp.Data.RatingCount)
		}
	})

	t.Run("aggregate reflects active ratings", func(t *testing.T) {
		for _, seed := range []struct {
			user  *models.User
			score int
		}{
			{alice, 3},
			{bob, 4},
		} {
			if _, err := h.db.UpsertRating(context.Background(),
				&models.Rating{UserID: seed.user.ID, MovieID: movie.ID, Score: seed.score}); err != nil {
				t.Fatalf("failed to seed rating: %v", err)
			}
		}

		rec := getMovie()
		var resp struct {
			Status string       `json:"status"`
			Data   models.Movie `json:"data"`
		}
		decodeBody(t, rec, &resp)

		if resp.Data.AverageRating == nil {
			t.Fatal("average rating is null with two active ratings")
		}
		if got := *resp.Data.AverageRating; got != 3.5 {
			t.Errorf("average rating = %v, want 3.5", got)
		}
		if resp.Data.RatingCount != 2 {
			t.Errorf("rating count = %d, want 2", resp.Data.RatingCount)
		}
	})
}

func TestMovieReviews(t *testing.T) {
	h := setupTestHandler(t)
	alice := createTestUser(t, h, "alice", models.RoleViewer)
	movie := createTestMovie(t, h, "Vertigo")
	movieID := strconv.FormatInt(movie.ID, 10)

	for _, title := range []string{"First thoughts", "Second viewing", "Final verdict"} {
		if err := h.db.CreateReview(context.Background(), &models.Review{
			UserID:  alice.ID,
			MovieID: movie.ID,
			Title:   title,
			Body:    "review body",
		}); err != nil {
			t.Fatalf("failed to seed review %q: %v", title, err)
		}
	}

	listReviews := func(query string) *httptest.ResponseRecorder {
		req := newRequest(t, "GET", "/api/v1/movies/"+movieID+"/reviews"+query, nil)
		req = withURLParams(req, map[string]string{"id": movieID})
		rec := httptest.NewRecorder()
		h.MovieReviews(rec, req)
		return rec
	}

	t.Run("newest first", func(t *testing.T) {
		rec := listReviews("")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp struct {
			Status string                 `json:"status"`
			Data   models.ReviewsResponse `json:"data"`
		}
		decodeBody(t, rec, &resp)

		if len(resp.Data.Reviews) != 3 {
			t.Fatalf("review count = %d, want 3", len(resp.Data.Reviews))
		}
		if resp.Data.Reviews[0].Title != "Final verdict" {
			t.Errorf("first review = %q, want the newest", resp.Data.Reviews[0].Title)
		}
		for i := 1; i < len(resp.Data.Reviews); i++ {
			if resp.Data.Reviews[i].ID > resp.Data.Reviews[i-1].ID {
				t.Errorf("reviews out of order at index %d", i)
			}
		}
	})

	t.Run("pagination clamps and reports totals", func(t *testing.T) {
		rec := listReviews("?limit=2")
		var resp struct {
			Status string                 `json:"status"`
			Data   models.ReviewsResponse `json:"data"`
		}
		decodeBody(t, rec, &resp)

		if len(resp.Data.Reviews) != 2 {
			t.Errorf("page size = %d, want 2", len(resp.Data.Reviews))
		}
		if resp.Data.Pagination.TotalCount != 3 {
			t.Errorf("total = %d, want 3", resp.Data.Pagination.TotalCount)
		}
		if !resp.Data.Pagination.HasMore {
			t.Error("HasMore = false, want true")
		}
	})

	t.Run("unknown movie is not found", func(t *testing.T) {
		req := newRequest(t, "GET", "/api/v1/movies/99999/reviews", nil)
		req = withURLParams(req, map[string]string{"id": "99999"})
		rec := httptest.NewRecorder()
		h.MovieReviews(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}
