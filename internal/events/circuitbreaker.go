// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package events

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/metrics"
)

// breakerName labels the publish breaker in metrics and logs.
const breakerName = "events-publisher"

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

// newPublishBreaker builds the circuit breaker guarding broker publishes.
// It trips after failureThreshold consecutive failures and probes again
// after openTimeout. State changes are exported as a gauge so an open
// breaker is visible on a dashboard before users notice a stale feed.
func newPublishBreaker(failureThreshold uint32, openTimeout time.Duration) *gobreaker.CircuitBreaker[interface{}] {
	if failureThreshold == 0 {
		failureThreshold = defaultFailureThreshold
	}
	if openTimeout <= 0 {
		openTimeout = defaultOpenTimeout
	}

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(name, breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	cb := gobreaker.NewCircuitBreaker[interface{}](settings)
	metrics.SetCircuitBreakerState(breakerName, breakerStateValue(cb.State()))
	return cb
}

// breakerStateValue maps breaker states onto the gauge scale:
// 0 closed, 1 half-open, 2 open.
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// breakerResult classifies an Execute outcome for the request counter.
func breakerResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "failure"
	}
}
