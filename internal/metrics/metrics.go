// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Authentication and token lifecycle
// - Watchlist/rating/review activity
// - Event publishing (NATS) and circuit breaker state
// - WebSocket activity feed connections

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s .. 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connection_pool_size",
			Help: "Current number of database connections in use",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Authentication Metrics
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"}, // "success", "bad_credentials", "inactive_account"
	)

	AuthSignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_signups_total",
			Help: "Total number of accounts created via signup",
		},
	)

	TokensIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of tokens issued",
		},
		[]string{"token_type"}, // "access", "refresh"
	)

	TokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_refresh_total",
			Help: "Total number of refresh attempts",
		},
		[]string{"result"}, // "success", "revoked", "expired", "invalid"
	)

	RefreshTokensActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_refresh_tokens_active",
			Help: "Current number of live refresh tokens in the store",
		},
	)

	RefreshTokensSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_refresh_tokens_swept_total",
			Help: "Total number of expired refresh tokens removed by GC",
		},
	)

	// Catalog and Activity Metrics
	MoviesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_movies_created_total",
			Help: "Total number of movies added to the catalog",
		},
	)

	RatingsUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_upserts_total",
			Help: "Total number of rating writes",
		},
		[]string{"kind"}, // "insert", "update"
	)

	ReviewsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_created_total",
			Help: "Total number of reviews created",
		},
	)

	WatchlistItemsAddedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_items_added_total",
			Help: "Total number of movies added to watchlists",
		},
		[]string{"mode"}, // "single", "bulk"
	)

	BulkAddOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_bulk_add_outcomes_total",
			Help: "Per-item outcomes of bulk watchlist adds",
		},
		[]string{"outcome"}, // "added", "already_present", "movie_not_found"
	)

	// Event Publishing Metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"topic"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_publish_errors_total",
			Help: "Total number of failed event publishes",
		},
		[]string{"topic"},
	)

	EventPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "events_publish_duration_seconds",
			Help:    "Duration of event publishes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAuthAttempt records a login attempt and its outcome
func RecordAuthAttempt(result string) {
	AuthAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordTokenIssued records an access or refresh token being minted
func RecordTokenIssued(tokenType string) {
	TokensIssuedTotal.WithLabelValues(tokenType).Inc()
}

// RecordTokenRefresh records a refresh attempt and its outcome
func RecordTokenRefresh(result string) {
	TokenRefreshTotal.WithLabelValues(result).Inc()
}

// RecordRatingUpsert records a rating write, distinguishing first-time
// scores from re-rates
func RecordRatingUpsert(updated bool) {
	kind := "insert"
	if updated {
		kind = "update"
	}
	RatingsUpsertsTotal.WithLabelValues(kind).Inc()
}

// RecordWatchlistAdd records movies landing on a watchlist
func RecordWatchlistAdd(mode string, count int) {
	WatchlistItemsAddedTotal.WithLabelValues(mode).Add(float64(count))
}

// RecordBulkAddOutcome records one per-item outcome of a bulk add
func RecordBulkAddOutcome(outcome string) {
	BulkAddOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordEventPublish records an event publish attempt
func RecordEventPublish(topic string, duration time.Duration, err error) {
	EventPublishDuration.Observe(duration.Seconds())
	if err != nil {
		EventPublishErrors.WithLabelValues(topic).Inc()
		return
	}
	EventsPublishedTotal.WithLabelValues(topic).Inc()
}

// RecordCircuitBreakerRequest records a request passing through a breaker
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// SetCircuitBreakerState updates a breaker's state gauge
// (0=closed, 1=half-open, 2=open)
func SetCircuitBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}
