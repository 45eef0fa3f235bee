// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/cinetrack/internal/models"
)

var (
	// ErrGenreNotFound is returned when a genre does not exist or is inactive.
	ErrGenreNotFound = errors.New("genre not found")

	// ErrDuplicateGenre is returned when a genre name is already taken.
	ErrDuplicateGenre = errors.New("genre already exists")
)

// genresMutex serializes genre ID allocation.
var genresMutex sync.Mutex

const genreColumns = "id, name, created_at, updated_at, is_active, deleted_at"

// CreateGenre inserts a genre, filling in ID and timestamps. Names are
// unique across active and inactive rows.
func (db *DB) CreateGenre(ctx context.Context, genre *models.Genre) (err error) {
	defer db.observe(time.Now(), "insert", "genres")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	genresMutex.Lock()
	defer genresMutex.Unlock()

	id, err := db.nextIDLocked(ctx, "genres")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = execWithRetry(ctx, func() error {
		_, execErr := db.conn.ExecContext(ctx,
			`INSERT INTO genres (id, name, created_at, updated_at, is_active)
			 VALUES (?, ?, ?, ?, TRUE)`,
			id, genre.Name, now, now)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("genre %q: %w", genre.Name, ErrDuplicateGenre)
		}
		return fmt.Errorf("failed to create genre %q: %w", genre.Name, err)
	}

	genre.ID = id
	genre.CreatedAt = now
	genre.UpdatedAt = now
	genre.IsActive = true
	genre.DeletedAt = nil
	return nil
}

// GetGenreByID returns an active genre by ID.
func (db *DB) GetGenreByID(ctx context.Context, id int64) (genre *models.Genre, err error) {
	defer db.observe(time.Now(), "select", "genres")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE id = ? AND is_active = TRUE`, id)

	genre, err = scanGenreRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("genre %d: %w", id, ErrGenreNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get genre %d: %w", id, err)
	}
	return genre, nil
}

// ListGenres returns all active genres ordered by name. The genre set is
// small and bounded, so no pagination.
func (db *DB) ListGenres(ctx context.Context) (genres []models.Genre, err error) {
	defer db.observe(time.Now(), "select", "genres")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	defer closeWithLog(rows, db.log, "genres rows")

	genres = []models.Genre{}
	for rows.Next() {
		genre, scanErr := scanGenreRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan genre row: %w", scanErr)
		}
		genres = append(genres, *genre)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate genre rows: %w", err)
	}
	return genres, nil
}

// UpdateGenre renames a genre. Returns ErrGenreNotFound for missing or
// inactive rows and ErrDuplicateGenre when the new name is taken.
func (db *DB) UpdateGenre(ctx context.Context, genre *models.Genre) (err error) {
	defer db.observe(time.Now(), "update", "genres")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE genres SET name = ?, updated_at = ? WHERE id = ? AND is_active = TRUE`,
			genre.Name, now, genre.ID)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("genre %q: %w", genre.Name, ErrDuplicateGenre)
		}
		return fmt.Errorf("failed to update genre %d: %w", genre.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("genre %d: %w", genre.ID, ErrGenreNotFound)
	}

	genre.UpdatedAt = now
	return nil
}

// DeleteGenre soft-deletes a genre. Movies keep their link rows; the genre
// simply stops appearing in reads.
func (db *DB) DeleteGenre(ctx context.Context, id int64) (err error) {
	defer db.observe(time.Now(), "delete", "genres")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE genres SET is_active = FALSE, deleted_at = ?, updated_at = ? WHERE id = ? AND is_active = TRUE`,
			now, now, id)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to delete genre %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("genre %d: %w", id, ErrGenreNotFound)
	}
	return nil
}

// scanGenreRow scans one genres row in genreColumns order.
func scanGenreRow(scanner rowScanner) (*models.Genre, error) {
	var genre models.Genre
	var deletedAt sql.NullTime

	if err := scanner.Scan(
		&genre.ID, &genre.Name,
		&genre.CreatedAt, &genre.UpdatedAt, &genre.IsActive, &deletedAt,
	); err != nil {
		return nil, err
	}

	genre.DeletedAt = nullableTime(deletedAt)
	return &genre, nil
}
