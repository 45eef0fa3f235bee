// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/cinetrack/internal/metrics"
)

// PrometheusMetrics records request count, latency, and in-flight gauge for
// every request passing through it. Paths are normalized before being used
// as the endpoint label so /api/v1/movies/42 and /api/v1/movies/97 share a
// single time series.
func PrometheusMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()

		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next(wrapper, r)

		duration := time.Since(start)

		metrics.RecordAPIRequest(
			r.Method,
			NormalizePath(r.URL.Path),
			strconv.Itoa(wrapper.statusCode),
			duration,
		)
	}
}

// NormalizePath collapses numeric path segments into {id} placeholders,
// bounding the cardinality of the endpoint label. Non-numeric segments
// (resource names, verbs like "rate" or "bulk") pass through unchanged.
func NormalizePath(path string) string {
	if !containsDigitSegment(path) {
		return path
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if isAllDigits(seg) {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// containsDigitSegment is a cheap pre-check so the common case
// (static paths) avoids the split/join allocation.
func containsDigitSegment(path string) bool {
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start && isAllDigits(path[start:i]) {
				return true
			}
			start = i + 1
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code
func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
