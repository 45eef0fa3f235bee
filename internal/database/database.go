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
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB database driver
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinetrack/internal/config"
	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/metrics"
)

// DB wraps a DuckDB connection and exposes the CineTrack stores. Entity
// methods (users, catalog, watchlists, ratings, reviews) live in their own
// files; this file owns the connection lifecycle.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
	log  zerolog.Logger
}

// New opens (or creates) the DuckDB database at cfg.Path, tunes the
// connection pool, and creates any missing tables and indexes. Use
// Path ":memory:" for an ephemeral store.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config cannot be nil")
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	connStr := fmt.Sprintf(
		"%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%t"+
			"&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, effectiveThreads(cfg.Threads), cfg.MaxMemory, cfg.PreserveInsertionOrder,
	)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", cfg.Path, err)
	}

	configureConnectionPool(conn)

	db := &DB{
		conn: conn,
		cfg:  cfg,
		log:  logging.With().Str("component", "database").Logger(),
	}

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	enableProfiling(db)

	db.log.Info().
		Str("path", cfg.Path).
		Str("max_memory", cfg.MaxMemory).
		Int("threads", effectiveThreads(cfg.Threads)).
		Msg("Database opened")

	return db, nil
}

// initialize creates the schema and flushes the WAL so a crash right after
// first startup does not lose the table definitions.
func (db *DB) initialize() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if err := db.createTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if err := db.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	if err := db.Checkpoint(ctx); err != nil {
		return fmt.Errorf("failed to checkpoint after schema creation: %w", err)
	}
	return nil
}

// Close checkpoints outstanding WAL data and closes the connection pool.
// Safe to call once; the checkpoint failure is logged but does not block
// the close.
func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Checkpoint(ctx); err != nil {
		db.log.Warn().Err(err).Msg("Checkpoint on close failed")
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	db.log.Info().Str("path", db.cfg.Path).Msg("Database closed")
	return nil
}

// Ping verifies the connection is alive. Used by the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Conn exposes the raw connection pool for callers that need it (stats,
// migrations in tooling). Stores go through the entity methods instead.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// observe records query latency and outcome for the Prometheus exporter.
// Use with a named error return:
//
//	func (db *DB) CreateMovie(ctx context.Context, m *models.Movie) (err error) {
//		defer db.observe(time.Now(), "insert", "movies")(&err)
//		...
//
// Expected domain outcomes (not-found, duplicate) are not counted as query
// errors; only storage failures are.
func (db *DB) observe(start time.Time, operation, table string) func(*error) {
	return func(errp *error) {
		var err error
		if errp != nil && *errp != nil && !isDomainError(*errp) {
			err = *errp
		}
		metrics.RecordDBQuery(operation, table, time.Since(start), err)
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers in the
// store files.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// nextIDLocked allocates the next primary key for table. DuckDB has no
// auto-increment usable with a plain PRIMARY KEY, so IDs are allocated with
// MAX(id)+1; callers must hold the table's write mutex so two allocations
// cannot observe the same MAX.
func (db *DB) nextIDLocked(ctx context.Context, table string) (int64, error) {
	// table is a compile-time constant in every caller, never user input.
	query := fmt.Sprintf("SELECT COALESCE(MAX(id), 0) + 1 FROM %s", table)

	var id int64
	if err := db.conn.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to allocate id for %s: %w", table, err)
	}
	return id, nil
}
