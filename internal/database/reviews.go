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
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/cinetrack/internal/metrics"
	"github.com/tomtom215/cinetrack/internal/models"
)

var (
	// ErrReviewNotFound is returned when a review does not exist or is
	// inactive.
	ErrReviewNotFound = errors.New("review not found")

	// ErrDuplicateReview is returned when the user already has a review
	// with the same title on that movie. Differently titled reviews per
	// (user, movie) are allowed.
	ErrDuplicateReview = errors.New("review already exists")
)

// reviewsMutex serializes review ID allocation.
var reviewsMutex sync.Mutex

// reviewSelect joins the author's username onto every review read.
const reviewSelect = `SELECT r.id, r.user_id, r.movie_id, r.title, r.body,
	r.created_at, r.updated_at, r.is_active, r.deleted_at, u.username
	FROM reviews r JOIN users u ON u.id = r.user_id`

// ReviewFilter narrows and pages the review listing. Zero values mean no
// filter.
type ReviewFilter struct {
	MovieID int64
	UserID  int64
	Limit   int
	Offset  int
}

// CreateReview inserts a review, filling in ID and timestamps. The movie
// must exist; a same-titled review by the same user on the same movie
// returns ErrDuplicateReview.
func (db *DB) CreateReview(ctx context.Context, review *models.Review) (err error) {
	defer db.observe(time.Now(), "insert", "reviews")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	exists, err := db.movieExists(ctx, review.MovieID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("movie %d: %w", review.MovieID, ErrMovieNotFound)
	}

	reviewsMutex.Lock()
	defer reviewsMutex.Unlock()

	id, err := db.nextIDLocked(ctx, "reviews")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = execWithRetry(ctx, func() error {
		_, execErr := db.conn.ExecContext(ctx,
			`INSERT INTO reviews (id, user_id, movie_id, title, body, created_at, updated_at, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, TRUE)`,
			id, review.UserID, review.MovieID, review.Title, review.Body, now, now)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("review %q by user %d on movie %d: %w", review.Title, review.UserID, review.MovieID, ErrDuplicateReview)
		}
		return fmt.Errorf("failed to create review %q: %w", review.Title, err)
	}

	metrics.ReviewsCreatedTotal.Inc()

	review.ID = id
	review.CreatedAt = now
	review.UpdatedAt = now
	review.IsActive = true
	review.DeletedAt = nil
	return nil
}

// GetReviewByID returns an active review with its author's username.
func (db *DB) GetReviewByID(ctx context.Context, id int64) (review *models.Review, err error) {
	defer db.observe(time.Now(), "select", "reviews")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		reviewSelect+` WHERE r.id = ? AND r.is_active = TRUE`, id)

	review, err = scanReviewRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("review %d: %w", id, ErrReviewNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review %d: %w", id, err)
	}
	return review, nil
}

// ListReviews returns a filtered page of active reviews, newest first,
// plus the total match count.
func (db *DB) ListReviews(ctx context.Context, filter ReviewFilter) (reviews []models.Review, total int, err error) {
	defer db.observe(time.Now(), "select", "reviews")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	clauses := []string{"r.is_active = TRUE"}
	args := []interface{}{}
	if filter.MovieID > 0 {
		clauses = append(clauses, "r.movie_id = ?")
		args = append(args, filter.MovieID)
	}
	if filter.UserID > 0 {
		clauses = append(clauses, "r.user_id = ?")
		args = append(args, filter.UserID)
	}
	where := " WHERE " + strings.Join(clauses, " AND ")

	if err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews r`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		reviewSelect+where+` ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?`,
		append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer closeWithLog(rows, db.log, "reviews rows")

	reviews = []models.Review{}
	for rows.Next() {
		review, scanErr := scanReviewRow(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan review row: %w", scanErr)
		}
		reviews = append(reviews, *review)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate review rows: %w", err)
	}
	return reviews, total, nil
}

// UpdateReview changes a review's title and body. Retitling onto an
// existing (user, movie, title) key returns ErrDuplicateReview.
func (db *DB) UpdateReview(ctx context.Context, review *models.Review) (err error) {
	defer db.observe(time.Now(), "update", "reviews")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE reviews SET title = ?, body = ?, updated_at = ? WHERE id = ? AND is_active = TRUE`,
			review.Title, review.Body, now, review.ID)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("review %q: %w", review.Title, ErrDuplicateReview)
		}
		return fmt.Errorf("failed to update review %d: %w", review.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("review %d: %w", review.ID, ErrReviewNotFound)
	}

	review.UpdatedAt = now
	return nil
}

// DeleteReview soft-deletes a review.
func (db *DB) DeleteReview(ctx context.Context, id int64) (err error) {
	defer db.observe(time.Now(), "delete", "reviews")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE reviews SET is_active = FALSE, deleted_at = ?, updated_at = ? WHERE id = ? AND is_active = TRUE`,
			now, now, id)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to delete review %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("review %d: %w", id, ErrReviewNotFound)
	}
	return nil
}

// scanReviewRow scans one reviewSelect row.
func scanReviewRow(scanner rowScanner) (*models.Review, error) {
	var review models.Review
	var body sql.NullString
	var deletedAt sql.NullTime

	if err := scanner.Scan(
		&review.ID, &review.UserID, &review.MovieID, &review.Title, &body,
		&review.CreatedAt, &review.UpdatedAt, &review.IsActive, &deletedAt,
		&review.Username,
	); err != nil {
		return nil, err
	}

	review.Body = stringOrEmpty(body)
	review.DeletedAt = nullableTime(deletedAt)
	return &review, nil
}
