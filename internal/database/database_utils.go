// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"
)

// defaultQueryTimeout bounds queries whose caller passed a context without
// a deadline. Keeps a stuck scan from pinning a connection forever.
const defaultQueryTimeout = 30 * time.Second

// ensureContext adds the default query timeout when ctx has no deadline.
// The returned cancel func must always be called.
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// Checkpoint forces DuckDB to flush its WAL into the main database file.
// Called after schema creation, on close, and by operational tooling.
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("failed to checkpoint database: %w", err)
	}
	return nil
}

// GetDatabasePath returns the configured database file path.
func (db *DB) GetDatabasePath() string {
	return db.cfg.Path
}

// GetRecordCounts returns row counts per table, including soft-deleted
// rows. Feeds the health endpoint's storage summary.
func (db *DB) GetRecordCounts(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tables := []string{
		"users", "genres", "streaming_platforms", "movies",
		"movie_genres", "movie_platforms",
		"watchlists", "watchlist_items", "ratings", "reviews",
	}

	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		// table names come from the list above, never user input.
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)

		var count int64
		if err := db.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count rows in %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}

// enableProfiling turns on DuckDB query profiling when the
// ENABLE_QUERY_PROFILING environment variable is set. The profile for each
// query is written to DuckDB's log; strictly a debugging aid.
func enableProfiling(db *DB) {
	if os.Getenv("ENABLE_QUERY_PROFILING") == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "PRAGMA enable_profiling='json'"); err != nil {
		db.log.Warn().Err(err).Msg("Failed to enable query profiling")
		return
	}
	db.log.Info().Msg("Query profiling enabled")
}

// nullableTime converts a scanned nullable TIMESTAMP to *time.Time.
func nullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// nullableString converts a scanned nullable VARCHAR to *string.
func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullableInt converts a scanned nullable INTEGER to *int.
func nullableInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}

// nullableFloat converts a scanned nullable DOUBLE to *float64.
func nullableFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

// stringOrEmpty flattens a nullable VARCHAR into a plain string for model
// fields that treat empty and NULL the same.
func stringOrEmpty(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
