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
	// ErrPlatformNotFound is returned when a platform does not exist or is
	// inactive.
	ErrPlatformNotFound = errors.New("streaming platform not found")

	// ErrDuplicatePlatform is returned when a platform name is already taken.
	ErrDuplicatePlatform = errors.New("streaming platform already exists")
)

// platformsMutex serializes platform ID allocation.
var platformsMutex sync.Mutex

const platformColumns = "id, name, website, description, created_at, updated_at, is_active, deleted_at"

// CreatePlatform inserts a streaming platform, filling in ID and timestamps.
func (db *DB) CreatePlatform(ctx context.Context, platform *models.StreamingPlatform) (err error) {
	defer db.observe(time.Now(), "insert", "streaming_platforms")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	platformsMutex.Lock()
	defer platformsMutex.Unlock()

	id, err := db.nextIDLocked(ctx, "streaming_platforms")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = execWithRetry(ctx, func() error {
		_, execErr := db.conn.ExecContext(ctx,
			`INSERT INTO streaming_platforms (id, name, website, description, created_at, updated_at, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, TRUE)`,
			id, platform.Name, platform.Website, platform.Description, now, now)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("platform %q: %w", platform.Name, ErrDuplicatePlatform)
		}
		return fmt.Errorf("failed to create platform %q: %w", platform.Name, err)
	}

	platform.ID = id
	platform.CreatedAt = now
	platform.UpdatedAt = now
	platform.IsActive = true
	platform.DeletedAt = nil
	return nil
}

// GetPlatformByID returns an active platform by ID.
func (db *DB) GetPlatformByID(ctx context.Context, id int64) (platform *models.StreamingPlatform, err error) {
	defer db.observe(time.Now(), "select", "streaming_platforms")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+platformColumns+` FROM streaming_platforms WHERE id = ? AND is_active = TRUE`, id)

	platform, err = scanPlatformRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("platform %d: %w", id, ErrPlatformNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get platform %d: %w", id, err)
	}
	return platform, nil
}

// ListPlatforms returns all active platforms ordered by name.
func (db *DB) ListPlatforms(ctx context.Context) (platforms []models.StreamingPlatform, err error) {
	defer db.observe(time.Now(), "select", "streaming_platforms")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+platformColumns+` FROM streaming_platforms WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}
	defer closeWithLog(rows, db.log, "platforms rows")

	platforms = []models.StreamingPlatform{}
	for rows.Next() {
		platform, scanErr := scanPlatformRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan platform row: %w", scanErr)
		}
		platforms = append(platforms, *platform)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate platform rows: %w", err)
	}
	return platforms, nil
}

// UpdatePlatform updates a platform's name, website and description.
func (db *DB) UpdatePlatform(ctx context.Context, platform *models.StreamingPlatform) (err error) {
	defer db.observe(time.Now(), "update", "streaming_platforms")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE streaming_platforms SET name = ?, website = ?, description = ?, updated_at = ?
			 WHERE id = ? AND is_active = TRUE`,
			platform.Name, platform.Website, platform.Description, now, platform.ID)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("platform %q: %w", platform.Name, ErrDuplicatePlatform)
		}
		return fmt.Errorf("failed to update platform %d: %w", platform.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("platform %d: %w", platform.ID, ErrPlatformNotFound)
	}

	platform.UpdatedAt = now
	return nil
}

// DeletePlatform soft-deletes a platform.
func (db *DB) DeletePlatform(ctx context.Context, id int64) (err error) {
	defer db.observe(time.Now(), "delete", "streaming_platforms")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE streaming_platforms SET is_active = FALSE, deleted_at = ?, updated_at = ?
			 WHERE id = ? AND is_active = TRUE`,
			now, now, id)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to delete platform %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("platform %d: %w", id, ErrPlatformNotFound)
	}
	return nil
}

// scanPlatformRow scans one streaming_platforms row in platformColumns order.
func scanPlatformRow(scanner rowScanner) (*models.StreamingPlatform, error) {
	var platform models.StreamingPlatform
	var website, description sql.NullString
	var deletedAt sql.NullTime

	if err := scanner.Scan(
		&platform.ID, &platform.Name, &website, &description,
		&platform.CreatedAt, &platform.UpdatedAt, &platform.IsActive, &deletedAt,
	); err != nil {
		return nil, err
	}

	platform.Website = stringOrEmpty(website)
	platform.Description = stringOrEmpty(description)
	platform.DeletedAt = nullableTime(deletedAt)
	return &platform, nil
}
