// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinetrack/internal/auth"
	"github.com/tomtom215/cinetrack/internal/models"
)

// newTestMiddleware wires enforcer, service, and middleware around a
// handler that records whether it ran.
func newTestMiddleware(t *testing.T) (http.Handler, *bool) {
	t.Helper()
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return NewMiddleware(newTestService(t)).Authorize(handler), &called
}

// authedRequest builds a request carrying validated claims, the way
// auth.RequireAuth leaves them.
func authedRequest(method, path, role string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	claims := &auth.Claims{UserID: 7, Username: "alice", Role: role}
	return req.WithContext(auth.ContextWithClaims(req.Context(), claims))
}

func decodeAuthzEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var envelope models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not the standard envelope: %v\n%s", err, rec.Body.String())
	}
	return envelope
}

func TestMiddleware_AnonymousCatalogRead(t *testing.T) {
	handler, called := newTestMiddleware(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !*called {
		t.Error("handler did not run for an allowed request")
	}
}

func TestMiddleware_AnonymousWriteDenied(t *testing.T) {
	handler, called := newTestMiddleware(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/movies", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if *called {
		t.Error("handler ran for a denied request")
	}
	envelope := decodeAuthzEnvelope(t, rec)
	if envelope.Status != "error" || envelope.Error == nil || envelope.Error.Code != models.ErrCodeForbidden {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
}

func TestMiddleware_RoleLadder(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		method     string
		path       string
		wantStatus int
	}{
		{"viewer posts review", models.RoleViewer, http.MethodPost, "/api/v1/movies/42/reviews", http.StatusOK},
		{"viewer creates watchlist", models.RoleViewer, http.MethodPost, "/api/v1/watchlists", http.StatusOK},
		{"viewer cannot create movie", models.RoleViewer, http.MethodPost, "/api/v1/movies", http.StatusForbidden},
		{"editor creates movie", models.RoleEditor, http.MethodPost, "/api/v1/movies", http.StatusOK},
		{"editor cannot list users", models.RoleEditor, http.MethodGet, "/api/v1/admin/users", http.StatusForbidden},
		{"admin lists users", models.RoleAdmin, http.MethodGet, "/api/v1/admin/users", http.StatusOK},
		{"admin changes role", models.RoleAdmin, http.MethodPut, "/api/v1/admin/users/3/role", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestMiddleware(t)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, authedRequest(tt.method, tt.path, tt.role))

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s as %s: status = %d, want %d",
					tt.method, tt.path, tt.role, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMethodToAction(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{http.MethodGet, "read"},
		{http.MethodHead, "read"},
		{http.MethodOptions, "read"},
		{http.MethodPost, "write"},
		{http.MethodPut, "write"},
		{http.MethodPatch, "write"},
		{http.MethodDelete, "delete"},
		{"TRACE", "read"},
	}

	for _, tt := range tests {
		if got := methodToAction(tt.method); got != tt.want {
			t.Errorf("methodToAction(%q) = %q, want %q", tt.method, got, tt.want)
		}
	}
}
