// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/cinetrack/internal/auth"
	"github.com/tomtom215/cinetrack/internal/authz"
	"github.com/tomtom215/cinetrack/internal/config"
	"github.com/tomtom215/cinetrack/internal/database"
	"github.com/tomtom215/cinetrack/internal/events"
	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/middleware"
	ws "github.com/tomtom215/cinetrack/internal/websocket"
)

// Handler contains dependencies for API handlers.
type Handler struct {
	db        *database.DB
	config    *config.Config
	auth      *auth.Service
	authz     *authz.Service
	lockout   *auth.LockoutManager
	bus       *events.Bus
	wsHub     *ws.Hub
	startTime time.Time
	perfMon   *middleware.PerformanceMonitor
}

// NewHandler creates a new API handler with all required dependencies.
//
// Dependencies:
//   - db: database connection for all stores
//   - cfg: application configuration
//   - authSvc: token issuance, rotation, and revocation
//   - authzSvc: RBAC decisions and the ownership guard
//   - lockout: failed-login throttling
//   - bus: activity event publication (best effort)
//   - wsHub: WebSocket hub for the live activity feed
//
// Example:
//
//	handler := api.NewHandler(db, cfg, authSvc, authzSvc, lockout, bus, hub)
//	router := api.NewRouter(handler, authSvc.TokenManager(), authz.NewMiddleware(authzSvc), chiMW)
//	http.ListenAndServe(":1895", router.SetupChi())
func NewHandler(db *database.DB, cfg *config.Config, authSvc *auth.Service, authzSvc *authz.Service,
	lockout *auth.LockoutManager, bus *events.Bus, wsHub *ws.Hub) *Handler {
	return &Handler{
		db:        db,
		config:    cfg,
		auth:      authSvc,
		authz:     authzSvc,
		lockout:   lockout,
		bus:       bus,
		wsHub:     wsHub,
		startTime: time.Now(),
		perfMon:   middleware.NewPerformanceMonitor(1000), // keep last 1000 requests
	}
}

// emit publishes an activity event without blocking the request path.
// Publication is best effort: failures are logged by the bus and never
// surface to the client.
func (h *Handler) emit(r *http.Request, event *events.ActivityEvent) {
	if h.bus == nil || event == nil {
		return
	}
	h.bus.Emit(r.Context(), event)
}

// requireDB checks database availability and returns true if available, false if error was sent
func (h *Handler) requireDB(w http.ResponseWriter) bool {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Database not available", nil)
		return false
	}
	return true
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins against the
// configured CORS origins. Browser WebSockets always send Origin; an empty
// header means a non-browser client and is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// If config is nil, allow by default (fail open for tests/development)
	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
