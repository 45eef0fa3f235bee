// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

// Package metrics provides Prometheus instrumentation for CineTrack.
//
// All collectors are package-level variables registered via promauto at
// init time and exposed on GET /metrics by the HTTP server.
//
// # Metric Families
//
// Database:
//
//	duckdb_query_duration_seconds{operation,table}
//	duckdb_query_errors_total{operation,table,error_type}
//	duckdb_connection_pool_size
//
// API:
//
//	api_requests_total{method,endpoint,status_code}
//	api_request_duration_seconds{method,endpoint}
//	api_active_requests
//	api_rate_limit_hits_total{endpoint}
//
// Authentication:
//
//	auth_attempts_total{result}
//	auth_signups_total
//	auth_tokens_issued_total{token_type}
//	auth_token_refresh_total{result}
//	auth_refresh_tokens_active
//	auth_refresh_tokens_swept_total
//
// Activity:
//
//	catalog_movies_created_total
//	ratings_upserts_total{kind}
//	reviews_created_total
//	watchlist_items_added_total{mode}
//	watchlist_bulk_add_outcomes_total{outcome}
//
// Events and messaging:
//
//	events_published_total{topic}
//	events_publish_errors_total{topic}
//	events_publish_duration_seconds
//	circuit_breaker_state{name}
//	circuit_breaker_requests_total{name,result}
//
// WebSocket:
//
//	websocket_connections
//	websocket_messages_sent_total
//	websocket_errors_total{error_type}
//
// # Cardinality
//
// Endpoint labels use chi route patterns ("/api/v1/movies/{id}"), never
// raw URLs, so path parameters cannot explode the label space. Error type
// labels are truncated to 50 characters for the same reason.
//
// # Usage
//
//	defer func(start time.Time) {
//	    metrics.RecordDBQuery("SELECT", "movies", time.Since(start), err)
//	}(time.Now())
package metrics
