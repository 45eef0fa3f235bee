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

var (
	// ErrWatchlistNotFound is returned when a watchlist does not exist or is
	// inactive.
	ErrWatchlistNotFound = errors.New("watchlist not found")

	// ErrDuplicateWatchlist is returned when a user already has a watchlist
	// with the same name.
	ErrDuplicateWatchlist = errors.New("watchlist already exists")

	// ErrItemNotFound is returned when a (watchlist, movie) pair is not on
	// the list.
	ErrItemNotFound = errors.New("watchlist item not found")

	// ErrDuplicateItem is returned when a movie is already on the watchlist.
	ErrDuplicateItem = errors.New("movie is already on this watchlist")
)

// watchlistsMutex serializes watchlist ID allocation; watchlistItemsMutex
// does the same for items. See usersMutex for the lock ordering note.
var (
	watchlistsMutex     sync.Mutex
	watchlistItemsMutex sync.Mutex
)

// watchlistSelect carries the live item count; items whose movie was
// soft-deleted are not counted, matching what ListWatchlistItems returns.
const watchlistSelect = `SELECT w.id, w.user_id, w.name, w.description,
	w.created_at, w.updated_at, w.is_active, w.deleted_at,
	(SELECT COUNT(*) FROM watchlist_items wi JOIN movies m ON m.id = wi.movie_id
	 WHERE wi.watchlist_id = w.id AND wi.is_active = TRUE AND m.is_active = TRUE)
	FROM watchlists w`

// CreateWatchlist inserts a watchlist, filling in ID and timestamps. A
// second list with the same name for the same user returns
// ErrDuplicateWatchlist.
func (db *DB) CreateWatchlist(ctx context.Context, watchlist *models.Watchlist) (err error) {
	defer db.observe(time.Now(), "insert", "watchlists")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	watchlistsMutex.Lock()
	defer watchlistsMutex.Unlock()

	id, err := db.nextIDLocked(ctx, "watchlists")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = execWithRetry(ctx, func() error {
		_, execErr := db.conn.ExecContext(ctx,
			`INSERT INTO watchlists (id, user_id, name, description, created_at, updated_at, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, TRUE)`,
			id, watchlist.UserID, watchlist.Name, watchlist.Description, now, now)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("watchlist %q for user %d: %w", watchlist.Name, watchlist.UserID, ErrDuplicateWatchlist)
		}
		return fmt.Errorf("failed to create watchlist %q: %w", watchlist.Name, err)
	}

	watchlist.ID = id
	watchlist.CreatedAt = now
	watchlist.UpdatedAt = now
	watchlist.IsActive = true
	watchlist.DeletedAt = nil
	watchlist.ItemCount = 0
	return nil
}

// GetWatchlistByID returns an active watchlist with its live item count.
func (db *DB) GetWatchlistByID(ctx context.Context, id int64) (watchlist *models.Watchlist, err error) {
	defer db.observe(time.Now(), "select", "watchlists")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		watchlistSelect+` WHERE w.id = ? AND w.is_active = TRUE`, id)

	watchlist, err = scanWatchlistRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("watchlist %d: %w", id, ErrWatchlistNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist %d: %w", id, err)
	}
	return watchlist, nil
}

// ListWatchlists returns active watchlists ordered by name. A positive
// userID scopes the listing to that user; zero lists everyone's (staff
// surface).
func (db *DB) ListWatchlists(ctx context.Context, userID int64) (watchlists []models.Watchlist, err error) {
	defer db.observe(time.Now(), "select", "watchlists")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	query := watchlistSelect + ` WHERE w.is_active = TRUE`
	args := []interface{}{}
	if userID > 0 {
		query += ` AND w.user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY w.name, w.id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlists: %w", err)
	}
	defer closeWithLog(rows, db.log, "watchlists rows")

	watchlists = []models.Watchlist{}
	for rows.Next() {
		watchlist, scanErr := scanWatchlistRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan watchlist row: %w", scanErr)
		}
		watchlists = append(watchlists, *watchlist)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watchlist rows: %w", err)
	}
	return watchlists, nil
}

// UpdateWatchlist renames a watchlist or changes its description.
// Ownership never changes here.
func (db *DB) UpdateWatchlist(ctx context.Context, watchlist *models.Watchlist) (err error) {
	defer db.observe(time.Now(), "update", "watchlists")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE watchlists SET name = ?, description = ?, updated_at = ? WHERE id = ? AND is_active = TRUE`,
			watchlist.Name, watchlist.Description, now, watchlist.ID)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("watchlist %q: %w", watchlist.Name, ErrDuplicateWatchlist)
		}
		return fmt.Errorf("failed to update watchlist %d: %w", watchlist.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("watchlist %d: %w", watchlist.ID, ErrWatchlistNotFound)
	}

	watchlist.UpdatedAt = now
	return nil
}

// DeleteWatchlist soft-deletes a watchlist. Its items stay in place but
// become unreachable through default reads.
func (db *DB) DeleteWatchlist(ctx context.Context, id int64) (err error) {
	defer db.observe(time.Now(), "delete", "watchlists")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE watchlists SET is_active = FALSE, deleted_at = ?, updated_at = ? WHERE id = ? AND is_active = TRUE`,
			now, now, id)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to delete watchlist %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("watchlist %d: %w", id, ErrWatchlistNotFound)
	}
	return nil
}

// AddWatchlistItem puts a movie on a watchlist. The UNIQUE constraint on
// (watchlist_id, movie_id) closes the duplicate race; a movie already on
// the list returns ErrDuplicateItem rather than a silent no-op. The
// returned item carries the full movie.
func (db *DB) AddWatchlistItem(ctx context.Context, watchlistID, movieID int64) (item *models.WatchlistItem, err error) {
	defer db.observe(time.Now(), "insert", "watchlist_items")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if err = db.watchlistExists(ctx, watchlistID); err != nil {
		return nil, err
	}
	movie, err := db.GetMovieByID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	watchlistItemsMutex.Lock()
	defer watchlistItemsMutex.Unlock()

	id, err := db.nextIDLocked(ctx, "watchlist_items")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = execWithRetry(ctx, func() error {
		_, execErr := db.conn.ExecContext(ctx,
			`INSERT INTO watchlist_items (id, watchlist_id, movie_id, created_at, updated_at, is_active)
			 VALUES (?, ?, ?, ?, ?, TRUE)`,
			id, watchlistID, movieID, now, now)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("movie %d on watchlist %d: %w", movieID, watchlistID, ErrDuplicateItem)
		}
		return nil, fmt.Errorf("failed to add movie %d to watchlist %d: %w", movieID, watchlistID, err)
	}

	metrics.RecordWatchlistAdd("single", 1)

	return &models.WatchlistItem{
		ID:          id,
		WatchlistID: watchlistID,
		MovieID:     movieID,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsActive:    true,
		Movie:       movie,
	}, nil
}

// RemoveWatchlistItem hard-deletes a (watchlist, movie) pair. Removing an
// absent pair returns ErrItemNotFound; there is nothing to resurrect, so
// no soft delete here.
func (db *DB) RemoveWatchlistItem(ctx context.Context, watchlistID, movieID int64) (err error) {
	defer db.observe(time.Now(), "delete", "watchlist_items")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if err = db.watchlistExists(ctx, watchlistID); err != nil {
		return err
	}

	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`DELETE FROM watchlist_items WHERE watchlist_id = ? AND movie_id = ?`,
			watchlistID, movieID)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to remove movie %d from watchlist %d: %w", movieID, watchlistID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("movie %d on watchlist %d: %w", movieID, watchlistID, ErrItemNotFound)
	}
	return nil
}

// BulkAddItems adds several movies to a watchlist with a per-movie outcome
// report. One unknown movie ID never blocks the rest; only a storage
// failure aborts the batch.
func (db *DB) BulkAddItems(ctx context.Context, watchlistID int64, movieIDs []int64) (result *models.BulkAddResult, err error) {
	defer db.observe(time.Now(), "bulk_insert", "watchlist_items")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if err = db.watchlistExists(ctx, watchlistID); err != nil {
		return nil, err
	}

	watchlistItemsMutex.Lock()
	defer watchlistItemsMutex.Unlock()

	result = &models.BulkAddResult{
		WatchlistID: watchlistID,
		Requested:   len(movieIDs),
		Outcomes:    make([]models.BulkAddOutcome, 0, len(movieIDs)),
	}

	for _, movieID := range movieIDs {
		outcome := models.BulkAddOutcome{MovieID: movieID}

		exists, checkErr := db.movieExists(ctx, movieID)
		if checkErr != nil {
			return nil, checkErr
		}

		switch {
		case !exists:
			outcome.Status = models.BulkOutcomeMovieNotFound
		default:
			item, insErr := db.insertItemLocked(ctx, watchlistID, movieID)
			switch {
			case insErr == nil:
				outcome.Status = models.BulkOutcomeAdded
				outcome.Item = item
				result.Added++
			case isUniqueViolation(insErr):
				outcome.Status = models.BulkOutcomeAlreadyPresent
			default:
				return nil, fmt.Errorf("failed to add movie %d to watchlist %d: %w", movieID, watchlistID, insErr)
			}
		}

		metrics.RecordBulkAddOutcome(outcome.Status)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if result.Added > 0 {
		metrics.RecordWatchlistAdd("bulk", result.Added)
	}
	return result, nil
}

// insertItemLocked inserts one watchlist item. Callers hold
// watchlistItemsMutex.
func (db *DB) insertItemLocked(ctx context.Context, watchlistID, movieID int64) (*models.WatchlistItem, error) {
	id, err := db.nextIDLocked(ctx, "watchlist_items")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = execWithRetry(ctx, func() error {
		_, execErr := db.conn.ExecContext(ctx,
			`INSERT INTO watchlist_items (id, watchlist_id, movie_id, created_at, updated_at, is_active)
			 VALUES (?, ?, ?, ?, ?, TRUE)`,
			id, watchlistID, movieID, now, now)
		return execErr
	})
	if err != nil {
		return nil, err
	}

	return &models.WatchlistItem{
		ID:          id,
		WatchlistID: watchlistID,
		MovieID:     movieID,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsActive:    true,
	}, nil
}

// ListWatchlistItems returns a watchlist's items in the order they were
// added, each carrying a movie summary with its rating aggregate. Items
// whose movie was soft-deleted are filtered out.
func (db *DB) ListWatchlistItems(ctx context.Context, watchlistID int64) (items []models.WatchlistItem, err error) {
	defer db.observe(time.Now(), "select", "watchlist_items")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if err = db.watchlistExists(ctx, watchlistID); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT wi.id, wi.watchlist_id, wi.movie_id, wi.created_at, wi.updated_at, wi.is_active, wi.deleted_at,
			`+movieColumns+`,
			(SELECT AVG(CAST(r.score AS DOUBLE)) FROM ratings r WHERE r.movie_id = m.id AND r.is_active = TRUE),
			(SELECT COUNT(*) FROM ratings r WHERE r.movie_id = m.id AND r.is_active = TRUE)
		 FROM watchlist_items wi
		 JOIN movies m ON m.id = wi.movie_id
		 WHERE wi.watchlist_id = ? AND wi.is_active = TRUE AND m.is_active = TRUE
		 ORDER BY wi.created_at, wi.id`,
		watchlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for watchlist %d: %w", watchlistID, err)
	}
	defer closeWithLog(rows, db.log, "watchlist items rows")

	items = []models.WatchlistItem{}
	for rows.Next() {
		item, scanErr := scanWatchlistItemRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan watchlist item row: %w", scanErr)
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watchlist item rows: %w", err)
	}
	return items, nil
}

// watchlistExists returns ErrWatchlistNotFound unless an active watchlist
// with the given ID exists.
func (db *DB) watchlistExists(ctx context.Context, id int64) error {
	var exists bool
	if err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM watchlists WHERE id = ? AND is_active = TRUE)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check watchlist %d: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("watchlist %d: %w", id, ErrWatchlistNotFound)
	}
	return nil
}

// scanWatchlistRow scans one watchlistSelect row.
func scanWatchlistRow(scanner rowScanner) (*models.Watchlist, error) {
	var watchlist models.Watchlist
	var description sql.NullString
	var deletedAt sql.NullTime

	if err := scanner.Scan(
		&watchlist.ID, &watchlist.UserID, &watchlist.Name, &description,
		&watchlist.CreatedAt, &watchlist.UpdatedAt, &watchlist.IsActive, &deletedAt,
		&watchlist.ItemCount,
	); err != nil {
		return nil, err
	}

	watchlist.Description = stringOrEmpty(description)
	watchlist.DeletedAt = nullableTime(deletedAt)
	return &watchlist, nil
}

// scanWatchlistItemRow scans an item row joined with its movie and the
// movie's rating aggregate.
func scanWatchlistItemRow(scanner rowScanner) (*models.WatchlistItem, error) {
	var item models.WatchlistItem
	var itemDeletedAt sql.NullTime

	var movie models.Movie
	var description, posterURL sql.NullString
	var releaseDate, movieDeletedAt sql.NullTime
	var duration sql.NullInt64
	var avgRating sql.NullFloat64

	if err := scanner.Scan(
		&item.ID, &item.WatchlistID, &item.MovieID,
		&item.CreatedAt, &item.UpdatedAt, &item.IsActive, &itemDeletedAt,
		&movie.ID, &movie.Title, &description, &releaseDate, &duration, &posterURL,
		&movie.CreatedAt, &movie.UpdatedAt, &movie.IsActive, &movieDeletedAt,
		&avgRating, &movie.RatingCount,
	); err != nil {
		return nil, err
	}

	item.DeletedAt = nullableTime(itemDeletedAt)
	movie.Description = stringOrEmpty(description)
	movie.ReleaseDate = nullableTime(releaseDate)
	movie.Duration = nullableInt(duration)
	movie.PosterURL = nullableString(posterURL)
	movie.DeletedAt = nullableTime(movieDeletedAt)
	movie.AverageRating = nullableFloat(avgRating)
	item.Movie = &movie
	return &item, nil
}
