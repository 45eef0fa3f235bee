// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/cinetrack/internal/auth"
	"github.com/tomtom215/cinetrack/internal/authz"
	"github.com/tomtom215/cinetrack/internal/middleware"
)

// Router wires handlers, authentication, authorization and the Chi
// middleware stack into the HTTP route tree.
type Router struct {
	handler       *Handler
	tokens        *auth.TokenManager
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. The token manager authenticates bearer
// tokens; the authz middleware enforces the route policy on protected
// groups.
func NewRouter(handler *Handler, tokens *auth.TokenManager, authzMW *authz.Middleware, chiMW *ChiMiddleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		tokens:        tokens,
		authz:         authzMW,
		chiMiddleware: chiMW,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so the handler-level middleware
// (PrometheusMetrics, Compression) works with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(RequestIDWithLogging())      // X-Request-ID header plus logging context
	r.Use(E2EDebugLogging())           // diagnostic logging (enabled via E2E_DEBUG=true)
	r.Use(chimiddleware.RealIP)        // extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting so monitoring tools can poll frequently.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/api/v1/health", router.handler.Health)
		r.Get("/api/v1/ready", router.handler.HealthReady)
	})

	// ========================
	// Authentication Endpoints
	// ========================
	// Credential endpoints carry strict limits; login is strictest. The
	// lockout manager additionally throttles per account.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(NoStore()) // token pairs must never be cached
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		authLimit := router.chiMiddleware.RateLimitCustom(RateLimitAuth)
		r.With(authLimit).Post("/signup", router.handler.Signup)
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitLogin)).Post("/login", router.handler.Login)
		r.With(authLimit).Post("/refresh", router.handler.Refresh)

		// Session endpoints need a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(auth.RequireAuth(router.tokens))
			r.Use(router.authz.Authorize)
			r.Post("/verify", router.handler.Verify)
			r.Post("/logout", router.handler.Logout)
			r.Get("/me", router.handler.Me)
		})
	})

	// ========================
	// Public Catalog Reads
	// ========================
	// No authentication: browsing the catalog and reading reviews is open.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))

		r.Get("/api/v1/genres", router.handler.ListGenres)
		r.Get("/api/v1/genres/{id}", router.handler.GetGenre)
		r.Get("/api/v1/platforms", router.handler.ListPlatforms)
		r.Get("/api/v1/platforms/{id}", router.handler.GetPlatform)
		r.Get("/api/v1/movies", router.handler.ListMovies)
		r.Get("/api/v1/movies/{id}", router.handler.GetMovie)
		r.Get("/api/v1/movies/{id}/reviews", router.handler.MovieReviews)
		r.Get("/api/v1/reviews", router.handler.ListReviews)
		r.Get("/api/v1/reviews/{id}", router.handler.GetReview)
	})

	// ========================
	// Catalog Writes
	// ========================
	// Bearer token required; the route policy restricts these to editors
	// and admins.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitWrite))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(auth.RequireAuth(router.tokens))
		r.Use(router.authz.Authorize)

		r.Post("/api/v1/genres", router.handler.CreateGenre)
		r.Put("/api/v1/genres/{id}", router.handler.UpdateGenre)
		r.Delete("/api/v1/genres/{id}", router.handler.DeleteGenre)

		r.Post("/api/v1/platforms", router.handler.CreatePlatform)
		r.Put("/api/v1/platforms/{id}", router.handler.UpdatePlatform)
		r.Delete("/api/v1/platforms/{id}", router.handler.DeletePlatform)

		r.Post("/api/v1/movies", router.handler.CreateMovie)
		r.Put("/api/v1/movies/{id}", router.handler.UpdateMovie)
		r.Delete("/api/v1/movies/{id}", router.handler.DeleteMovie)
	})

	// ========================
	// Ratings and Reviews
	// ========================
	// Any authenticated user; ownership of existing reviews is enforced
	// in the handlers.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitWrite))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(auth.RequireAuth(router.tokens))
		r.Use(router.authz.Authorize)

		r.Post("/api/v1/movies/{id}/rate", router.handler.RateMovie)
		r.Delete("/api/v1/movies/{id}/rate", router.handler.UnrateMovie)
		r.Post("/api/v1/movies/{id}/reviews", router.handler.CreateMovieReview)
		r.Put("/api/v1/reviews/{id}", router.handler.UpdateReview)
		r.Delete("/api/v1/reviews/{id}", router.handler.DeleteReview)
	})

	// ========================
	// Watchlist Endpoints
	// ========================
	// Fully authenticated; every watchlist route is ownership-guarded in
	// the handlers, with staff bypass.
	r.Route("/api/v1/watchlists", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(auth.RequireAuth(router.tokens))
		r.Use(router.authz.Authorize)

		r.Get("/", router.handler.ListWatchlists)
		r.Post("/", router.handler.CreateWatchlist)
		r.Get("/{id}", router.handler.GetWatchlist)
		r.Put("/{id}", router.handler.UpdateWatchlist)
		r.Delete("/{id}", router.handler.DeleteWatchlist)
		r.Get("/{id}/items", router.handler.ListWatchlistItems)

		writeLimit := router.chiMiddleware.RateLimitCustom(RateLimitWrite)
		r.With(writeLimit).Post("/{id}/add-item", router.handler.AddWatchlistItem)
		r.With(writeLimit).Post("/{id}/remove-item", router.handler.RemoveWatchlistItem)
		r.With(writeLimit).Post("/{id}/bulk-add", router.handler.BulkAddWatchlistItems)
	})

	// ========================
	// Admin Endpoints
	// ========================
	// The route policy admits only admins; handlers re-check.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(auth.RequireAuth(router.tokens))
		r.Use(router.authz.Authorize)

		r.Get("/users", router.handler.AdminListUsers)
		r.Put("/users/{id}/role", router.handler.AdminUpdateUserRole)
	})

	// ========================
	// Live Activity Feed
	// ========================
	// Public WebSocket, origin-checked against the CORS origins. The
	// limit applies to upgrade attempts, not established connections.
	r.With(router.chiMiddleware.RateLimitCustom(RateLimitWebSocket)).
		Get("/api/v1/ws/activity", router.handler.ActivityFeed)

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
