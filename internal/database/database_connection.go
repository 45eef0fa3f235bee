// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package database

import (
	"context"
	"database/sql"
	"runtime"
	"strings"
	"time"
)

const (
	// maxWriteAttempts bounds retries of write statements aborted by
	// DuckDB's optimistic concurrency control.
	maxWriteAttempts = 3

	// retryBackoffBase is the first retry delay; it doubles per attempt
	// (1ms, 2ms).
	retryBackoffBase = time.Millisecond
)

// configureConnectionPool tunes database/sql pooling for DuckDB. DuckDB is
// in-process, so connections are cheap, but each one pins memory; the pool
// is sized to the CPU count rather than the usual network-database numbers.
func configureConnectionPool(conn *sql.DB) {
	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)
}

// effectiveThreads resolves the configured DuckDB worker thread count;
// zero means one per CPU.
func effectiveThreads(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.NumCPU()
}

// execWithRetry runs fn, retrying transaction conflicts with exponential
// backoff. DuckDB aborts one side of a write/write conflict instead of
// blocking; the aborted statement is safe to replay. Internal errors and
// unique violations are returned immediately.
func execWithRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoffBase << (attempt - 1)):
			}
		}
		err = fn()
		if err == nil || !isTransactionConflict(err) || isInternalError(err) {
			return err
		}
	}
	return err
}

// isTransactionConflict reports whether err is a DuckDB optimistic
// concurrency abort, safe to retry.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "TransactionContext Error") ||
		strings.Contains(msg, "Conflict on tuple") ||
		strings.Contains(msg, "write-write conflict")
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint violation. The stores translate these into their duplicate
// sentinels; they are never retried.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate key") ||
		strings.Contains(msg, "violates unique constraint") ||
		strings.Contains(msg, "violates primary key constraint")
}

// isInternalError reports whether err indicates DuckDB has entered an
// invalid state. These are fatal for the current database handle and must
// not be retried.
func isInternalError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "INTERNAL Error") ||
		strings.Contains(msg, "database has been invalidated")
}

// isConnectionError reports whether err looks like a broken or closed
// connection. The readiness probe uses this to distinguish transient pool
// churn from real storage failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "sql: database is closed")
}
