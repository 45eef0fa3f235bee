// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

/*
Package database provides DuckDB-backed persistence for CineTrack: users,
the movie catalog (movies, genres, streaming platforms), watchlists and
their items, ratings and reviews.

# Layout

Each entity has one store file (users.go, movies.go, watchlists.go,
ratings.go, reviews.go, ...) holding its sentinel errors, its SQL, a scan
helper, and the per-table mutex used for ID allocation. Connection
lifecycle and pooling live in database.go and database_connection.go;
schema DDL in database_schema.go.

# Conventions

	ID allocation    MAX(id)+1 under a per-table mutex; DuckDB has no
	                 usable auto-increment for these tables.
	Uniqueness       UNIQUE constraints plus ON CONFLICT writes; the
	                 application never does check-then-act for keys.
	Soft delete      is_active/deleted_at columns; every default read
	                 filters is_active = TRUE in exactly one query per
	                 store. Watchlist item removal is the one hard delete.
	Timestamps       written by the application in UTC.
	Errors           errors.Is-matchable sentinels (ErrMovieNotFound,
	                 ErrDuplicateItem, ...) wrapped with context via %w.

# Concurrency

DuckDB uses optimistic concurrency control: conflicting writers abort
rather than block. Write statements run through execWithRetry, which
replays transaction conflicts with a short backoff. Unique violations are
never retried; they are outcomes.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	movie := &models.Movie{Title: "Metropolis"}
	if err := db.CreateMovie(ctx, movie, genreIDs, platformIDs); err != nil {
		return err
	}

Query latency and outcomes are exported per operation and table through
the metrics package.
*/
package database
