// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for compression, performance
monitoring, request ID tracking, and Prometheus metrics integration. These
components are framework-agnostic (plain http.HandlerFunc wrappers) and are
adapted onto the Chi router by the api package.

Key Components:

  - Compression: Gzip compression for clients sending Accept-Encoding: gzip
  - Performance Monitor: Request latency tracking with percentile calculations
  - Request ID: UUID-based request tracking for distributed tracing
  - Prometheus Metrics: HTTP request/response instrumentation

Path Normalization:

Both the Prometheus and performance middleware normalize request paths before
using them as labels, collapsing numeric segments into {id} placeholders:

	/api/v1/movies/42          -> /api/v1/movies/{id}
	/api/v1/watchlists/7/items -> /api/v1/watchlists/{id}/items

Without this, a catalog with ten thousand movies would mint ten thousand
Prometheus time series for the detail endpoint alone.

Usage Example - Request ID:

	http.HandleFunc("/api/v1/movies",
	    middleware.RequestID(handler),
	)

	// Access request ID in handler
	func handler(w http.ResponseWriter, r *http.Request) {
	    requestID := middleware.GetRequestID(r.Context())
	    logging.Ctx(r.Context()).Info().Msg("Processing request")
	}

Inbound X-Request-ID and X-Correlation-ID headers from upstream proxies are
honored, so traces stay continuous when CineTrack runs behind nginx or Caddy.

Usage Example - Performance Monitoring:

	perfMon := middleware.NewPerformanceMonitor(1000)

	handler := perfMon.Middleware(mux)

	// Later, from the health API:
	stats := perfMon.GetStats() // per-endpoint P50/P95/P99

Thread Safety:

All middleware components are thread-safe:
  - Compression uses a sync.Pool of gzip writers
  - Performance monitor uses sync.RWMutex around its sliding window
  - Request ID uses context.Context (immutable)
  - Prometheus metrics use atomic operations

See Also:

  - internal/api: Chi router and the chiMiddleware adapter
  - internal/auth: Authentication middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
