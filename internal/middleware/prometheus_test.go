// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"static path unchanged", "/api/v1/movies", "/api/v1/movies"},
		{"single numeric segment", "/api/v1/movies/42", "/api/v1/movies/{id}"},
		{"numeric segment mid-path", "/api/v1/watchlists/7/items", "/api/v1/watchlists/{id}/items"},
		{"two numeric segments", "/api/v1/watchlists/7/items/42", "/api/v1/watchlists/{id}/items/{id}"},
		{"version segment not numeric", "/api/v1/genres", "/api/v1/genres"},
		{"verb suffix preserved", "/api/v1/movies/42/rate", "/api/v1/movies/{id}/rate"},
		{"bulk path", "/api/v1/watchlists/3/items/bulk", "/api/v1/watchlists/{id}/items/bulk"},
		{"root path", "/", "/"},
		{"trailing slash after id", "/api/v1/movies/42/", "/api/v1/movies/{id}/"},
		{"mixed alphanumeric untouched", "/api/v1/movies/abc123", "/api/v1/movies/abc123"},
		{"empty path", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePath(tt.path)
			if got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestPrometheusMetrics_CapturesStatusCode(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	wrappedHandler := PrometheusMetrics(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/99999", nil)
	rec := httptest.NewRecorder()

	wrappedHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 to pass through, got %d", rec.Code)
	}
}

func TestPrometheusMetrics_DefaultsToOK(t *testing.T) {
	// Handlers that never call WriteHeader should be recorded as 200
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	wrappedHandler := PrometheusMetrics(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/genres", nil)
	rec := httptest.NewRecorder()

	wrappedHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestMetricsResponseWriter_WriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapper := &metricsResponseWriter{
		ResponseWriter: rec,
		statusCode:     http.StatusOK,
	}

	wrapper.WriteHeader(http.StatusConflict)

	if wrapper.statusCode != http.StatusConflict {
		t.Errorf("Expected captured status 409, got %d", wrapper.statusCode)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected underlying recorder status 409, got %d", rec.Code)
	}
}

func BenchmarkNormalizePath_Static(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NormalizePath("/api/v1/movies")
	}
}

func BenchmarkNormalizePath_Parameterized(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NormalizePath("/api/v1/watchlists/7/items/42")
	}
}
