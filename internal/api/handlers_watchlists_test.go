// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/tomtom215/cinetrack/internal/models"
)

func TestAddWatchlistItem(t *testing.T) {
	h := setupTestHandler(t)
	alice := createTestUser(t, h, "alice", models.RoleViewer)
	movie := createTestMovie(t, h, "Metropolis")
	watchlist := createTestWatchlist(t, h, alice.ID, "Silent Classics")

	addItem := func(watchlistID string, movieID int64) *httptest.ResponseRecorder {
		req := newRequest(t, "POST", "/api/v1/watchlists/"+watchlistID+"/add-item",
			models.AddItemRequest{MovieID: movieID})
		req = asUser(req, alice)
		req = withURLParams(req, map[string]string{"id": watchlistID})
		rec := httptest.NewRecorder()
		h.AddWatchlistItem(rec, req)
		return rec
	}

	wlID := strconv.FormatInt(watchlist.ID, 10)

	t.Run("first add succeeds", func(t *testing.T) {
		rec := addItem(wlID, movie.ID)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var resp struct {
			Status string               `json:"status"`
			Data   models.WatchlistItem `json:"data"`
		}
		decodeBody(t, rec, &resp)
		if resp.Data.MovieID != movie.ID {
			t.Errorf("item movie ID = %d, want %d", resp.Data.MovieID, movie.ID)
		}
		if resp.Data.Movie == nil || resp.Data.Movie.Title != "Metropolis" {
			t.Errorf("item movie summary = %+v, want title Metropolis", resp.Data.Movie)
		}
	})

	t.Run("duplicate add conflicts and leaves one item", func(t *testing.T) {
		rec := addItem(wlID, movie.ID)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusConflict, rec.Body.String())
		}
		if code := errorCode(t, rec); code != models.ErrCodeDuplicateItem {
			t.Errorf("error code = %q, want %q", code, models.ErrCodeDuplicateItem)
		}

		items, err := h.db.ListWatchlistItems(context.Background(), watchlist.ID)
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}
		if len(items) != 1 {
			t.Errorf("item count after duplicate add = %d, want 1", len(items))
		}
	})

	t.Run("unknown movie is not found", func(t *testing.T) {
		rec := addItem(wlID, 99999)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		if code := errorCode(t, rec); code != models.ErrCodeNotFound {
			t.Errorf("error code = %q, want %q", code, models.ErrCodeNotFound)
		}
	})

	t.Run("unknown watchlist is not found", func(t *testing.T) {
		rec := addItem("99999", movie.ID)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestRemoveWatchlistItem(t *testing.T) {
	h := setupTestHandler(t)
	alice := createTestUser(t, h, "alice", models.RoleViewer)
	movie := createTestMovie(t, h, "Nosferatu")
	watchlist := createTestWatchlist(t, h, alice.ID, "Silent Classics")
	wlID := strconv.FormatInt(watchlist.ID, 10)

	removeItem := func(movieID int64) *httptest.ResponseRecorder {
		req := newRequest(t, "POST", "/api/v1/watchlists/"+wlID+"/remove-item",
			models.AddItemRequest{MovieID: movieID})
		req = asUser(req, alice)
		req = withURLParams(req, map[string]string{"id": wlID})
		rec := httptest.NewRecorder()
		h.RemoveWatchlistItem(rec, req)
		return rec
	}

	t.Run("removing an absent movie is not found", func(t *testing.T) {
		rec := removeItem(movie.ID)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNotFound, rec.Body.String())
		}
		if code := errorCode(t, rec); code != models.ErrCodeNotFound {
			t.Errorf("error code = %q, want %q", code, models.ErrCodeNotFound)
		}
	})

	t.Run("removing a present movie succeeds", func(t *testing.T) {
		if _, err := h.db.AddWatchlistItem(context.Background(), watchlist.ID, movie.ID); err != nil {
			t.Fatalf("failed to add item: %v", err)
		}

		rec := removeItem(movie.ID)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		items, err := h.db.ListWatchlistItems(context.Background(), watchlist.ID)
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("item count after removal = %d, want 0", len(items))
		}
	})

	t.Run("second removal is not found", func(t *testing.T) {
		rec := removeItem(movie.ID)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestBulkAddWatchlistItems(t *testing.T) {
	h := setupTestHandler(t)
	alice := createTestUser(t, h, "alice", models.RoleViewer)
	m1 := createTestMovie(t, h, "Metropolis")
	m2 := createTestMovie(t, h, "Sunrise")
	watchlist := createTestWatchlist(t, h, alice.ID, "Silent Classics")
	wlID := strconv.FormatInt(watchlist.ID, 10)

	bulkAdd := func(movieIDs []int64) *httptest.ResponseRecorder {
		req := newRequest(t, "POST", "/api/v1/watchlists/"+wlID+"/bulk-add",
			models.BulkAddRequest{MovieIDs: movieIDs})
		req = asUser(req, alice)
		req = withURLParams(req, map[string]string{"id": wlID})
		rec := httptest.NewRecorder()
		h.BulkAddWatchlistItems(rec, req)
		return rec
	}

	t.Run("one bad ID never blocks the rest", func(t *testing.T) {
		rec := bulkAdd([]int64{m1.ID, 99999, m2.ID})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp struct {
			Status string               `json:"status"`
			Data   models.BulkAddResult `json:"data"`
		}
		decodeBody(t, rec, &resp)

		if resp.Data.Requested != 3 {
			t.Errorf("requested = %d, want 3", resp.Data.Requested)
		}
		if resp.Data.Added != 2 {
			t.Errorf("added = %d, want 2", resp.Data.Added)
		}
		wantStatuses := []string{
			models.BulkOutcomeAdded,
			models.BulkOutcomeMovieNotFound,
			models.BulkOutcomeAdded,
		}
		if len(resp.Data.Outcomes) != len(wantStatuses) {
			t.Fatalf("outcome count = %d, want %d", len(resp.Data.Outcomes), len(wantStatuses))
		}
		for i, want := range wantStatuses {
			if resp.Data.Outcomes[i].Status != want {
				t.Errorf("outcome[%d] = %q, want %q", i, resp.Data.Outcomes[i].Status, want)
			}
		}

		items, err := h.db.ListWatchlistItems(context.Background(), watchlist.ID)
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}
		if len(items) != 2 {
			t.Errorf("item count = %d, want 2", len(items))
		}
	})

	t.Run("re-adding reports already present", func(t *testing.T) {
		rec := bulkAdd([]int64{m1.ID})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var resp struct {
			Status string               `json:"status"`
			Data   models.BulkAddResult `json:"data"`
		}
		decodeBody(t, rec, &resp)

		if resp.Data.Added != 0 {
			t.Errorf("added = %d, want 0", resp.Data.Added)
		}
		if len(resp.Data.Outcomes) != 1 || resp.Data.Outcomes[0].Status != models.BulkOutcomeAlreadyPresent {
			t.Errorf("outcomes = %+v, want one already_present", resp.Data.Outcomes)
		}
	})

	t.Run("empty ID list is a validation failure", func(t *testing.T) {
		rec := bulkAdd([]int64{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
		if code := errorCode(t, rec); code != models.ErrCodeValidation {
			t.Errorf("error code = %q, want %q", code, models.ErrCodeValidation)
		}
	})
}

func TestWatchlistOwnershipGuard(t *testing.T) {
	h := setupTestHandler(t)
	alice := createTestUser(t, h, "alice", models.RoleViewer)
	mallory := createTestUser(t, h, "mallory", models.RoleViewer)
	erin := createTestUser(t, h, "erin", models.RoleEditor)
	movie := createTestMovie(t, h, "Vertigo")
	watchlist := createTestWatchlist(t, h, alice.ID, "Hitchcock")
	wlID := strconv.FormatInt(watchlist.ID, 10)

	addItemAs := func(user *models.User) *httptest.ResponseRecorder {
		req := newRequest(t, "POST", "/api/v1/watchlists/"+wlID+"/add-item",
			models.AddItemRequest{MovieID: movie.ID})
		req = asUser(req, user)
		req = withURLParams(req, map[string]string{"id": wlID})
		rec := httptest.NewRecorder()
		h.AddWatchlistItem(rec, req)
		return rec
	}

	t.Run("unauthenticated is rejected", func(t *testing.T) {
		rec := addItemAs(nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if code := errorCode(t, rec); code != models.ErrCodeAuthRequired {
			t.Errorf("error code = %q, want %q", code, models.ErrCodeAuthRequired)
		}
	})

	t.Run("another viewer is forbidden and the list is unchanged", func(t *testing.T) {
		rec := addItemAs(mallory)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusForbidden, rec.Body.String())
		}
		if code := errorCode(t, rec); code != models.ErrCodeForbidden {
			t.Errorf("error code = %q, want %q", code, models.ErrCodeForbidden)
		}

		items, err := h.db.ListWatchlistItems(context.Background(), watchlist.ID)
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("item count after forbidden add = %d, want 0", len(items))
		}
	})

	t.Run("staff may moderate", func(t *testing.T) {
		rec := addItemAs(erin)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
	})
}

func TestCreateWatchlist(t *testing.T) {
	h := setupTestHandler(t)
	alice := createTestUser(t, h, "alice", models.RoleViewer)

	create := func(name string) *httptest.ResponseRecorder {
		req := newRequest(t, "POST", "/api/v1/watchlists", models.WatchlistRequest{Name: name})
		req = asUser(req, alice)
		rec := httptest.NewRecorder()
		h.CreateWatchlist(rec, req)
		return rec
	}

	t.Run("create succeeds", func(t *testing.T) {
		rec := create("Favorites")
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var resp struct {
			Status string           `json:"status"`
			Data   models.Watchlist `json:"data"`
		}
		decodeBody(t, rec, &resp)
		if resp.Data.UserID != alice.ID {
			t.Errorf("owner = %d, want %d", resp.Data.UserID, alice.ID)
		}
		if resp.Data.ID == 0 {
			t.Error("watchlist ID not assigned")
		}
	})

	t.Run("duplicate name per owner conflicts", func(t *testing.T) {
		rec := create("Favorites")
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusConflict, rec.Body.String())
		}
		if code := errorCode(t, rec); code != models.ErrCodeDuplicateItem {
			t.Errorf("error code = %q, want %q", code, models.ErrCodeDuplicateItem)
		}
	})

	t.Run("empty name is a validation failure", func(t *testing.T) {
		rec := create("")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestListWatchlists(t *testing.T) {
	h := setupTestHandler(t)
	alice := createTestUser(t, h, "alice", models.RoleViewer)
	bob := createTestUser(t, h, "bob", models.RoleViewer)
	erin := createTestUser(t, h, "erin", models.RoleEditor)
	createTestWatchlist(t, h, alice.ID, "Favorites")

	list := func(user *models.User, query string) *httptest.ResponseRecorder {
		req := newRequest(t, "GET", "/api/v1/watchlists"+query, nil)
		req = asUser(req, user)
		rec := httptest.NewRecorder()
		h.ListWatchlists(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) []models.Watchlist {
		var resp struct {
			Status string             `json:"status"`
			Data   []models.Watchlist `json:"data"`
		}
		decodeBody(t, rec, &resp)
		return resp.Data
	}

	t.Run("own lists only", func(t *testing.T) {
		rec := list(alice, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		for _, wl := range decode(rec) {
			if wl.UserID != alice.ID {
				t.Errorf("list %q owned by %d leaked into alice's view", wl.Name, wl.UserID)
			}
		}
	})

	t.Run("viewer may not scope to another user", func(t *testing.T) {
		rec := list(bob, "?user_id="+strconv.FormatInt(alice.ID, 10))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("staff may scope to another user", func(t *testing.T) {
		rec := list(erin, "?user_id="+strconv.FormatInt(alice.ID, 10))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		lists := decode(rec)
		if len(lists) == 0 {
			t.Fatal("expected alice's lists, got none")
		}
		for _, wl := range lists {
			if wl.UserID != alice.ID {
				t.Errorf("list %q owned by %d in alice-scoped view", wl.Name, wl.UserID)
			}
		}
	})
}
