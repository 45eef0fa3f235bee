// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context for DDL statements. Schema creation on a
// cold start with a large WAL can take a while; 60s is generous but finite.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates all CineTrack tables if they do not exist.
//
// Conventions shared by every entity table:
//   - id BIGINT PRIMARY KEY, allocated by the application (MAX(id)+1 under
//     a per-table mutex; DuckDB has no auto-increment usable here)
//   - created_at / updated_at set by the application in UTC
//   - soft delete via is_active + deleted_at; default reads filter
//     is_active = TRUE
//
// Uniqueness invariants live here as UNIQUE constraints so concurrent
// writers cannot race past an application-level check.
func (db *DB) createTables(ctx context.Context) error {
	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute table creation query: %w", err)
		}
	}
	return nil
}

func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username VARCHAR NOT NULL UNIQUE,
			email VARCHAR NOT NULL UNIQUE,
			password_hash VARCHAR NOT NULL,
			role VARCHAR NOT NULL DEFAULT 'viewer',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			deleted_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS genres (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			deleted_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS streaming_platforms (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL UNIQUE,
			website VARCHAR,
			description VARCHAR,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			deleted_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS movies (
			id BIGINT PRIMARY KEY,
			title VARCHAR NOT NULL,
			description VARCHAR,
			release_date DATE,
			duration INTEGER,
			poster_url VARCHAR,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			deleted_at TIMESTAMP,
			UNIQUE (title, release_date)
		)`,

		`CREATE TABLE IF NOT EXISTS movie_genres (
			movie_id BIGINT NOT NULL,
			genre_id BIGINT NOT NULL,
			PRIMARY KEY (movie_id, genre_id)
		)`,

		`CREATE TABLE IF NOT EXISTS movie_platforms (
			movie_id BIGINT NOT NULL,
			platform_id BIGINT NOT NULL,
			PRIMARY KEY (movie_id, platform_id)
		)`,

		`CREATE TABLE IF NOT EXISTS watchlists (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			name VARCHAR NOT NULL,
			description VARCHAR,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			deleted_at TIMESTAMP,
			UNIQUE (user_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS watchlist_items (
			id BIGINT PRIMARY KEY,
			watchlist_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			deleted_at TIMESTAMP,
			UNIQUE (watchlist_id, movie_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ratings (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			score INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			deleted_at TIMESTAMP,
			UNIQUE (user_id, movie_id)
		)`,

		`CREATE TABLE IF NOT EXISTS reviews (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			title VARCHAR NOT NULL,
			body VARCHAR,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			deleted_at TIMESTAMP,
			UNIQUE (user_id, movie_id, title)
		)`,
	}
}

// createIndexes creates indexes for the hot read paths: catalog listing
// and search, per-watchlist item reads, and the rating/review lookups the
// aggregate queries lean on. UNIQUE constraints already index their key
// columns.
func (db *DB) createIndexes(ctx context.Context) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_movies_title ON movies(title)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_release_date ON movies(release_date)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_created_at ON movies(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_active ON movies(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres(genre_id)`,
		`CREATE INDEX IF NOT EXISTS idx_movie_platforms_platform ON movie_platforms(platform_id)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlists_user ON watchlists(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_items_watchlist ON watchlist_items(watchlist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_items_movie ON watchlist_items(movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_movie ON ratings(movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_movie ON reviews(movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
