// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinetrack/internal/auth"
	"github.com/tomtom215/cinetrack/internal/authz"
	"github.com/tomtom215/cinetrack/internal/config"
	"github.com/tomtom215/cinetrack/internal/database"
	"github.com/tomtom215/cinetrack/internal/models"
)

// testDBSemaphore serializes tests that open a database. DuckDB instances
// are memory-hungry; running them one at a time keeps CI boxes alive.
var (
	testDBSemaphore = make(chan struct{}, 1)
	testDBMutex     sync.Mutex
)

// setupTestHandler builds a handler over an in-memory database with a
// real enforcer. The bus and hub stay nil: emit is best effort and the
// health handler treats a nil bus as a stopped one.
func setupTestHandler(t *testing.T) *Handler {
	t.Helper()

	testDBMutex.Lock()
	defer testDBMutex.Unlock()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	type result struct {
		db  *database.DB
		err error
	}
	done := make(chan result, 1)
	go func() {
		db, err := database.New(&config.DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "1GB",
			Threads:   2,
		})
		done <- result{db, err}
	}()

	var db *database.DB
	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("failed to create test database: %v", res.err)
		}
		db = res.db
		t.Cleanup(func() {
			if err := db.Close(); err != nil {
				t.Errorf("failed to close test database: %v", err)
			}
		})
	case <-time.After(120 * time.Second):
		t.Fatal("timed out creating test database")
	}

	enforcer, err := authz.NewEnforcer(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}
	authzSvc, err := authz.NewService(enforcer)
	if err != nil {
		t.Fatalf("failed to create authz service: %v", err)
	}

	return &Handler{
		db: db,
		config: &config.Config{
			API: config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100},
		},
		authz:     authzSvc,
		startTime: time.Now(),
	}
}

// createTestUser inserts a user (and its default watchlist).
func createTestUser(t *testing.T, h *Handler, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@test.example",
		PasswordHash: "$2a$12$testhashtesthashtesthashtesthashtesthashtesthashtesta",
		Role:         role,
	}
	if err := h.db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return user
}

// createTestMovie inserts a movie with no genre or platform links.
func createTestMovie(t *testing.T, h *Handler, title string) *models.Movie {
	t.Helper()
	movie := &models.Movie{Title: title, Description: "test movie"}
	if err := h.db.CreateMovie(context.Background(), movie, nil, nil); err != nil {
		t.Fatalf("failed to create test movie %s: %v", title, err)
	}
	return movie
}

// createTestWatchlist inserts a watchlist owned by userID.
func createTestWatchlist(t *testing.T, h *Handler, userID int64, name string) *models.Watchlist {
	t.Helper()
	watchlist := &models.Watchlist{UserID: userID, Name: name}
	if err := h.db.CreateWatchlist(context.Background(), watchlist); err != nil {
		t.Fatalf("failed to create test watchlist %s: %v", name, err)
	}
	return watchlist
}

// newRequest builds a request with an optional JSON body.
func newRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// asUser attaches verified claims for user, the way RequireAuth would.
func asUser(r *http.Request, user *models.User) *http.Request {
	if user == nil {
		return r
	}
	claims := &auth.Claims{UserID: user.ID, Username: user.Username, Role: user.Role}
	return r.WithContext(auth.ContextWithClaims(r.Context(), claims))
}

// withURLParams places route parameters where chi.URLParam finds them.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// errorCode decodes the standard envelope and returns its error code.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.APIResponse
	decodeBody(t, rec, &resp)
	if resp.Error == nil {
		t.Fatalf("expected error envelope, got %q", rec.Body.String())
	}
	return resp.Error.Code
}
