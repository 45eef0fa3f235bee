// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package services

import (
	"context"
	"time"

	"github.com/tomtom215/cinetrack/internal/logging"
)

// ExpiryCleaner is a store that can drop its expired entries.
//
// Satisfied by the auth package's refresh-token stores and lockout
// store, which all expose CleanupExpired(ctx) (int, error).
type ExpiryCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// CleanupService periodically sweeps expired entries from a store.
//
// One instance runs per store that needs sweeping (refresh tokens,
// lockout entries). The service never fails on a sweep error because a
// failed sweep is retried on the next tick anyway; restarting the
// service would not help.
//
// Example usage:
//
//	svc := services.NewCleanupService("token-store-gc", refreshStore, cfg.TokenStore.GCInterval)
//	tree.AddDataService(svc)
type CleanupService struct {
	cleaner  ExpiryCleaner
	interval time.Duration
	name     string
}

// NewCleanupService creates a cleanup service that sweeps the given
// store on the given interval. A non-positive interval defaults to one
// hour.
func NewCleanupService(name string, cleaner ExpiryCleaner, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupService{
		cleaner:  cleaner,
		interval: interval,
		name:     name,
	}
}

// Serve implements suture.Service.
//
// It runs one sweep per interval until the context is canceled. Sweep
// errors are logged, not returned, so the ticker keeps running.
func (s *CleanupService) Serve(ctx context.Context) error {
	logging.Info().
		Str("service", s.name).
		Dur("interval", s.interval).
		Msg("Cleanup service started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("service", s.name).Msg("Cleanup service stopped")
			return ctx.Err()

		case <-ticker.C:
			count, err := s.cleaner.CleanupExpired(ctx)
			if err != nil {
				logging.Warn().Err(err).Str("service", s.name).Msg("Cleanup sweep failed")
				continue
			}
			if count > 0 {
				logging.Debug().
					Str("service", s.name).
					Int("count", count).
					Msg("Swept expired entries")
			}
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *CleanupService) String() string {
	return s.name
}
