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

	"github.com/tomtom215/cinetrack/internal/metrics"
	"github.com/tomtom215/cinetrack/internal/models"
)

// ErrRatingNotFound is returned when a user has no active rating for a
// movie.
var ErrRatingNotFound = errors.New("rating not found")

// ratingsMutex serializes rating ID allocation.
var ratingsMutex sync.Mutex

const ratingColumns = "id, user_id, movie_id, score, created_at, updated_at, is_active, deleted_at"

// UpsertRating records or replaces a user's score for a movie as one
// atomic statement: INSERT ... ON CONFLICT (user_id, movie_id) DO UPDATE.
// There is never a read-then-write window, so two concurrent submissions
// for the same pair collapse into one row holding the later score. A
// previously retracted (soft-deleted) rating is resurrected with the new
// score. Score must already be validated to [1,5]; the CHECK constraint is
// the backstop.
//
// The passed rating is overwritten with the stored row. Returns created =
// true when the user had no active rating for the movie before the call.
func (db *DB) UpsertRating(ctx context.Context, rating *models.Rating) (created bool, err error) {
	defer db.observe(time.Now(), "upsert", "ratings")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	exists, err := db.movieExists(ctx, rating.MovieID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("movie %d: %w", rating.MovieID, ErrMovieNotFound)
	}

	ratingsMutex.Lock()
	defer ratingsMutex.Unlock()

	// Existence probe for the created flag only; correctness rests on the
	// ON CONFLICT statement below.
	var priorID int64
	var priorActive bool
	probeErr := db.conn.QueryRowContext(ctx,
		`SELECT id, is_active FROM ratings WHERE user_id = ? AND movie_id = ?`,
		rating.UserID, rating.MovieID).Scan(&priorID, &priorActive)
	if probeErr != nil && !errors.Is(probeErr, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to probe rating for user %d movie %d: %w", rating.UserID, rating.MovieID, probeErr)
	}
	hadActiveRating := probeErr == nil && priorActive

	// Fresh ID on every attempt; the conflict path discards it and keeps
	// the existing row's ID. Reusing the prior ID would make the insert
	// collide on the primary key instead of the (user_id, movie_id) target.
	id, err := db.nextIDLocked(ctx, "ratings")
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	err = execWithRetry(ctx, func() error {
		_, execErr := db.conn.ExecContext(ctx,
			`INSERT INTO ratings (id, user_id, movie_id, score, created_at, updated_at, is_active, deleted_at)
			 VALUES (?, ?, ?, ?, ?, ?, TRUE, NULL)
			 ON CONFLICT (user_id, movie_id) DO UPDATE SET
				score = EXCLUDED.score,
				updated_at = EXCLUDED.updated_at,
				is_active = TRUE,
				deleted_at = NULL`,
			id, rating.UserID, rating.MovieID, rating.Score, now, now)
		return execErr
	})
	if err != nil {
		return false, fmt.Errorf("failed to upsert rating for user %d movie %d: %w", rating.UserID, rating.MovieID, err)
	}

	stored, err := db.getRatingAnyState(ctx, rating.UserID, rating.MovieID)
	if err != nil {
		return false, err
	}
	*rating = *stored

	metrics.RecordRatingUpsert(hadActiveRating)
	return !hadActiveRating, nil
}

// GetUserRating returns a user's active rating for a movie.
func (db *DB) GetUserRating(ctx context.Context, userID, movieID int64) (rating *models.Rating, err error) {
	defer db.observe(time.Now(), "select", "ratings")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE user_id = ? AND movie_id = ? AND is_active = TRUE`,
		userID, movieID)

	rating, err = scanRatingRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rating for user %d movie %d: %w", userID, movieID, ErrRatingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating for user %d movie %d: %w", userID, movieID, err)
	}
	return rating, nil
}

// GetRatingSummary returns the mean and count of a movie's active ratings.
// With no ratings the average is nil, never zero: an unrated movie has no
// score, not a score of 0.
func (db *DB) GetRatingSummary(ctx context.Context, movieID int64) (summary *models.RatingSummary, err error) {
	defer db.observe(time.Now(), "select", "ratings")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var avg sql.NullFloat64
	var count int
	if err = db.conn.QueryRowContext(ctx,
		`SELECT AVG(CAST(score AS DOUBLE)), COUNT(*) FROM ratings WHERE movie_id = ? AND is_active = TRUE`,
		movieID).Scan(&avg, &count); err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings for movie %d: %w", movieID, err)
	}

	return &models.RatingSummary{
		MovieID: movieID,
		Average: nullableFloat(avg),
		Count:   count,
	}, nil
}

// DeleteRating retracts a user's rating via soft delete, so the row (and
// its ID) survives for a later re-rate to resurrect. The score leaves the
// movie's aggregate immediately.
func (db *DB) DeleteRating(ctx context.Context, userID, movieID int64) (err error) {
	defer db.observe(time.Now(), "delete", "ratings")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE ratings SET is_active = FALSE, deleted_at = ?, updated_at = ?
			 WHERE user_id = ? AND movie_id = ? AND is_active = TRUE`,
			now, now, userID, movieID)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to retract rating for user %d movie %d: %w", userID, movieID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rating for user %d movie %d: %w", userID, movieID, ErrRatingNotFound)
	}
	return nil
}

// getRatingAnyState reads the stored row after an upsert, active or not.
func (db *DB) getRatingAnyState(ctx context.Context, userID, movieID int64) (*models.Rating, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE user_id = ? AND movie_id = ?`,
		userID, movieID)

	rating, err := scanRatingRow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to read back rating for user %d movie %d: %w", userID, movieID, err)
	}
	return rating, nil
}

// scanRatingRow scans one ratings row in ratingColumns order.
func scanRatingRow(scanner rowScanner) (*models.Rating, error) {
	var rating models.Rating
	var deletedAt sql.NullTime

	if err := scanner.Scan(
		&rating.ID, &rating.UserID, &rating.MovieID, &rating.Score,
		&rating.CreatedAt, &rating.UpdatedAt, &rating.IsActive, &deletedAt,
	); err != nil {
		return nil, err
	}

	rating.DeletedAt = nullableTime(deletedAt)
	return &rating, nil
}
