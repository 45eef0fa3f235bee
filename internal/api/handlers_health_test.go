// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/cinetrack/internal/models"
)

func TestHealth(t *testing.T) {
	h := setupTestHandler(t)

	t.Run("degraded service still answers 200", func(t *testing.T) {
		req := newRequest(t, "GET", "/api/v1/health", nil)
		rec := httptest.NewRecorder()
		h.Health(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var resp struct {
			Status string              `json:"status"`
			Data   models.HealthStatus `json:"data"`
		}
		decodeBody(t, rec, &resp)

		if !resp.Data.DatabaseConnected {
			t.Error("database_connected = false with a live database")
		}
		// No bus is wired, so the service reports degraded rather than
		// pretending everything is up.
		if resp.Data.EventBusRunning {
			t.Error("event_bus_running = true with no bus")
		}
		if resp.Data.Status != "degraded" {
			t.Errorf("health status = %q, want degraded", resp.Data.Status)
		}
		if resp.Data.Version == "" {
			t.Error("version is empty")
		}
	})

	t.Run("wrong method is rejected", func(t *testing.T) {
		req := newRequest(t, "POST", "/api/v1/health", nil)
		rec := httptest.NewRecorder()
		h.Health(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}

func TestHealthReady(t *testing.T) {
	t.Run("database up means ready", func(t *testing.T) {
		h := setupTestHandler(t)

		req := newRequest(t, "GET", "/api/v1/ready", nil)
		rec := httptest.NewRecorder()
		h.HealthReady(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp models.APIResponse
		decodeBody(t, rec, &resp)
		if resp.Status != "ready" {
			t.Errorf("status = %q, want ready", resp.Status)
		}
	})

	t.Run("no database means 503", func(t *testing.T) {
		h := &Handler{startTime: time.Now()}

		req := newRequest(t, "GET", "/api/v1/ready", nil)
		rec := httptest.NewRecorder()
		h.HealthReady(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}

		var resp models.APIResponse
		decodeBody(t, rec, &resp)
		if resp.Status != "not_ready" {
			t.Errorf("status = %q, want not_ready", resp.Status)
		}
	})
}
