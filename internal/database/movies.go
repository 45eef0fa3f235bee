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
	// ErrMovieNotFound is returned when a movie does not exist or is inactive.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrDuplicateMovie is returned when (title, release_date) is already
	// taken.
	ErrDuplicateMovie = errors.New("movie already exists")
)

// moviesMutex serializes movie ID allocation.
var moviesMutex sync.Mutex

const movieColumns = "m.id, m.title, m.description, m.release_date, m.duration, m.poster_url, " +
	"m.created_at, m.updated_at, m.is_active, m.deleted_at"

// movieSelectWithRating is the base SELECT for movie reads. The rating
// aggregate is computed per row; DuckDB decorrelates the subqueries, and
// the null average falls straight out of AVG over the empty set.
const movieSelectWithRating = `SELECT ` + movieColumns + `,
	(SELECT AVG(CAST(r.score AS DOUBLE)) FROM ratings r WHERE r.movie_id = m.id AND r.is_active = TRUE),
	(SELECT COUNT(*) FROM ratings r WHERE r.movie_id = m.id AND r.is_active = TRUE)
	FROM movies m`

// MovieFilter narrows and pages the movie listing. Zero values mean no
// filter. Sort accepts created_at, release_date or title, with a leading
// "-" for descending; anything else falls back to newest-first.
type MovieFilter struct {
	Search      string
	GenreID     int64
	PlatformID  int64
	ReleaseYear int
	Sort        string
	Limit       int
	Offset      int
}

// CreateMovie inserts a movie and its genre/platform links in one
// transaction. Link IDs are verified up front so a stale genre ID is a
// domain error rather than a dangling row. Fills in ID and timestamps and
// loads the linked entities back onto the movie.
func (db *DB) CreateMovie(ctx context.Context, movie *models.Movie, genreIDs, platformIDs []int64) (err error) {
	defer db.observe(time.Now(), "insert", "movies")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	genreIDs = dedupeIDs(genreIDs)
	platformIDs = dedupeIDs(platformIDs)
	if err = db.verifyGenreIDs(ctx, genreIDs); err != nil {
		return err
	}
	if err = db.verifyPlatformIDs(ctx, platformIDs); err != nil {
		return err
	}

	moviesMutex.Lock()
	defer moviesMutex.Unlock()

	id, err := db.nextIDLocked(ctx, "movies")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = execWithRetry(ctx, func() error {
		tx, txErr := db.conn.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}
		defer func() { _ = tx.Rollback() }()

		if _, txErr = tx.ExecContext(ctx,
			`INSERT INTO movies (id, title, description, release_date, duration, poster_url, created_at, updated_at, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, TRUE)`,
			id, movie.Title, movie.Description, movie.ReleaseDate, movie.Duration, movie.PosterURL, now, now,
		); txErr != nil {
			return txErr
		}

		if txErr = insertMovieLinks(ctx, tx, id, genreIDs, platformIDs); txErr != nil {
			return txErr
		}
		return tx.Commit()
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movie %q: %w", movie.Title, ErrDuplicateMovie)
		}
		return fmt.Errorf("failed to create movie %q: %w", movie.Title, err)
	}

	metrics.MoviesCreatedTotal.Inc()

	movie.ID = id
	movie.CreatedAt = now
	movie.UpdatedAt = now
	movie.IsActive = true
	movie.DeletedAt = nil
	movie.AverageRating = nil
	movie.RatingCount = 0

	return db.attachMovieLinks(ctx, []*models.Movie{movie})
}

// GetMovieByID returns an active movie with its genres, platforms and
// rating aggregate.
func (db *DB) GetMovieByID(ctx context.Context, id int64) (movie *models.Movie, err error) {
	defer db.observe(time.Now(), "select", "movies")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		movieSelectWithRating+` WHERE m.id = ? AND m.is_active = TRUE`, id)

	movie, err = scanMovieRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("movie %d: %w", id, ErrMovieNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie %d: %w", id, err)
	}

	if err = db.attachMovieLinks(ctx, []*models.Movie{movie}); err != nil {
		return nil, err
	}
	return movie, nil
}

// ListMovies returns a filtered, sorted page of active movies plus the
// total match count. Each movie carries its rating aggregate and linked
// genres/platforms.
func (db *DB) ListMovies(ctx context.Context, filter MovieFilter) (movies []models.Movie, total int, err error) {
	defer db.observe(time.Now(), "select", "movies")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	where, args := buildMoviesQuery(filter)

	if err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movies m`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	query := movieSelectWithRating + where + " " + movieSortClause(filter.Sort) + " LIMIT ? OFFSET ?"
	rows, err := db.conn.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}
	defer closeWithLog(rows, db.log, "movies rows")

	movies = []models.Movie{}
	for rows.Next() {
		movie, scanErr := scanMovieRow(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan movie row: %w", scanErr)
		}
		movies = append(movies, *movie)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate movie rows: %w", err)
	}

	ptrs := make([]*models.Movie, len(movies))
	for i := range movies {
		ptrs[i] = &movies[i]
	}
	if err = db.attachMovieLinks(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// UpdateMovie updates a movie's fields and replaces its genre/platform
// links wholesale, matching PUT semantics.
func (db *DB) UpdateMovie(ctx context.Context, movie *models.Movie, genreIDs, platformIDs []int64) (err error) {
	defer db.observe(time.Now(), "update", "movies")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	genreIDs = dedupeIDs(genreIDs)
	platformIDs = dedupeIDs(platformIDs)
	if err = db.verifyGenreIDs(ctx, genreIDs); err != nil {
		return err
	}
	if err = db.verifyPlatformIDs(ctx, platformIDs); err != nil {
		return err
	}

	now := time.Now().UTC()
	var affected int64
	err = execWithRetry(ctx, func() error {
		tx, txErr := db.conn.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}
		defer func() { _ = tx.Rollback() }()

		result, txErr := tx.ExecContext(ctx,
			`UPDATE movies SET title = ?, description = ?, release_date = ?, duration = ?, poster_url = ?, updated_at = ?
			 WHERE id = ? AND is_active = TRUE`,
			movie.Title, movie.Description, movie.ReleaseDate, movie.Duration, movie.PosterURL, now, movie.ID)
		if txErr != nil {
			return txErr
		}
		if affected, txErr = result.RowsAffected(); txErr != nil {
			return txErr
		}
		if affected == 0 {
			return tx.Commit()
		}

		if _, txErr = tx.ExecContext(ctx, `DELETE FROM movie_genres WHERE movie_id = ?`, movie.ID); txErr != nil {
			return txErr
		}
		if _, txErr = tx.ExecContext(ctx, `DELETE FROM movie_platforms WHERE movie_id = ?`, movie.ID); txErr != nil {
			return txErr
		}
		if txErr = insertMovieLinks(ctx, tx, movie.ID, genreIDs, platformIDs); txErr != nil {
			return txErr
		}
		return tx.Commit()
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movie %q: %w", movie.Title, ErrDuplicateMovie)
		}
		return fmt.Errorf("failed to update movie %d: %w", movie.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("movie %d: %w", movie.ID, ErrMovieNotFound)
	}

	movie.UpdatedAt = now
	return db.attachMovieLinks(ctx, []*models.Movie{movie})
}

// DeleteMovie soft-deletes a movie. Link rows, ratings and reviews stay in
// place; default reads stop seeing all of them through the movie's
// is_active flag.
func (db *DB) DeleteMovie(ctx context.Context, id int64) (err error) {
	defer db.observe(time.Now(), "delete", "movies")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE movies SET is_active = FALSE, deleted_at = ?, updated_at = ? WHERE id = ? AND is_active = TRUE`,
			now, now, id)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to delete movie %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("movie %d: %w", id, ErrMovieNotFound)
	}
	return nil
}

// movieExists reports whether an active movie with the given ID exists.
// Shared by the watchlist, rating and review stores.
func (db *DB) movieExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM movies WHERE id = ? AND is_active = TRUE)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check movie %d: %w", id, err)
	}
	return exists, nil
}

// buildMoviesQuery translates a MovieFilter into a WHERE clause and its
// arguments, shared by the page and count queries.
func buildMoviesQuery(filter MovieFilter) (string, []interface{}) {
	clauses := []string{"m.is_active = TRUE"}
	args := []interface{}{}

	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		clauses = append(clauses, `(m.title ILIKE ? ESCAPE '\' OR m.description ILIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if filter.GenreID > 0 {
		clauses = append(clauses, "m.id IN (SELECT movie_id FROM movie_genres WHERE genre_id = ?)")
		args = append(args, filter.GenreID)
	}
	if filter.PlatformID > 0 {
		clauses = append(clauses, "m.id IN (SELECT movie_id FROM movie_platforms WHERE platform_id = ?)")
		args = append(args, filter.PlatformID)
	}
	if filter.ReleaseYear > 0 {
		clauses = append(clauses, "year(m.release_date) = ?")
		args = append(args, filter.ReleaseYear)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// movieSortClause maps a validated sort parameter onto an ORDER BY. The ID
// tiebreaker keeps pagination stable across rows with equal sort keys.
func movieSortClause(sort string) string {
	direction := "ASC"
	if strings.HasPrefix(sort, "-") {
		direction = "DESC"
		sort = sort[1:]
	}

	column, ok := map[string]string{
		"created_at":   "m.created_at",
		"release_date": "m.release_date",
		"title":        "m.title",
	}[sort]
	if !ok {
		return "ORDER BY m.created_at DESC, m.id DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, m.id %s", column, direction, direction)
}

// escapeLike escapes LIKE wildcards in a user-supplied search term.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// dedupeIDs drops repeated IDs preserving first-seen order. Duplicate link
// IDs in a request would otherwise trip the join-table primary key.
func dedupeIDs(ids []int64) []int64 {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// verifyGenreIDs confirms every ID refers to an active genre.
func (db *DB) verifyGenreIDs(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if _, err := db.GetGenreByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// verifyPlatformIDs confirms every ID refers to an active platform.
func (db *DB) verifyPlatformIDs(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if _, err := db.GetPlatformByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// insertMovieLinks writes the movie_genres and movie_platforms rows for a
// movie inside the caller's transaction.
func insertMovieLinks(ctx context.Context, tx *sql.Tx, movieID int64, genreIDs, platformIDs []int64) error {
	for _, genreID := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`, movieID, genreID); err != nil {
			return err
		}
	}
	for _, platformID := range platformIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO movie_platforms (movie_id, platform_id) VALUES (?, ?)`, movieID, platformID); err != nil {
			return err
		}
	}
	return nil
}

// attachMovieLinks batch-loads genres and platforms for a set of movies,
// avoiding a per-movie query on list pages.
func (db *DB) attachMovieLinks(ctx context.Context, movies []*models.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	index := make(map[int64]*models.Movie, len(movies))
	args := make([]interface{}, 0, len(movies))
	placeholders := make([]string, 0, len(movies))
	for _, movie := range movies {
		movie.Genres = []models.Genre{}
		movie.Platforms = []models.StreamingPlatform{}
		index[movie.ID] = movie
		args = append(args, movie.ID)
		placeholders = append(placeholders, "?")
	}
	in := strings.Join(placeholders, ", ")

	if err := db.forEachRow(ctx,
		`SELECT mg.movie_id, g.id, g.name, g.created_at, g.updated_at, g.is_active, g.deleted_at
		 FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
		 WHERE g.is_active = TRUE AND mg.movie_id IN (`+in+`) ORDER BY g.name`,
		args, func(scanner rowScanner) error {
			var movieID int64
			var genre models.Genre
			var deletedAt sql.NullTime
			if err := scanner.Scan(&movieID, &genre.ID, &genre.Name,
				&genre.CreatedAt, &genre.UpdatedAt, &genre.IsActive, &deletedAt); err != nil {
				return err
			}
			genre.DeletedAt = nullableTime(deletedAt)
			if movie := index[movieID]; movie != nil {
				movie.Genres = append(movie.Genres, genre)
			}
			return nil
		}); err != nil {
		return fmt.Errorf("failed to load movie genres: %w", err)
	}

	if err := db.forEachRow(ctx,
		`SELECT mp.movie_id, p.id, p.name, p.website, p.description, p.created_at, p.updated_at, p.is_active, p.deleted_at
		 FROM movie_platforms mp JOIN streaming_platforms p ON p.id = mp.platform_id
		 WHERE p.is_active = TRUE AND mp.movie_id IN (`+in+`) ORDER BY p.name`,
		args, func(scanner rowScanner) error {
			var movieID int64
			var platform models.StreamingPlatform
			var website, description sql.NullString
			var deletedAt sql.NullTime
			if err := scanner.Scan(&movieID, &platform.ID, &platform.Name, &website, &description,
				&platform.CreatedAt, &platform.UpdatedAt, &platform.IsActive, &deletedAt); err != nil {
				return err
			}
			platform.Website = stringOrEmpty(website)
			platform.Description = stringOrEmpty(description)
			platform.DeletedAt = nullableTime(deletedAt)
			if movie := index[movieID]; movie != nil {
				movie.Platforms = append(movie.Platforms, platform)
			}
			return nil
		}); err != nil {
		return fmt.Errorf("failed to load movie platforms: %w", err)
	}

	return nil
}

// forEachRow runs a query and applies fn to every row.
func (db *DB) forEachRow(ctx context.Context, query string, args []interface{}, fn func(rowScanner) error) error {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer closeWithLog(rows, db.log, "query rows")

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// scanMovieRow scans one movieSelectWithRating row.
func scanMovieRow(scanner rowScanner) (*models.Movie, error) {
	var movie models.Movie
	var description, posterURL sql.NullString
	var releaseDate, deletedAt sql.NullTime
	var duration sql.NullInt64
	var avgRating sql.NullFloat64

	if err := scanner.Scan(
		&movie.ID, &movie.Title, &description, &releaseDate, &duration, &posterURL,
		&movie.CreatedAt, &movie.UpdatedAt, &movie.IsActive, &deletedAt,
		&avgRating, &movie.RatingCount,
	); err != nil {
		return nil, err
	}

	movie.Description = stringOrEmpty(description)
	movie.ReleaseDate = nullableTime(releaseDate)
	movie.Duration = nullableInt(duration)
	movie.PosterURL = nullableString(posterURL)
	movie.DeletedAt = nullableTime(deletedAt)
	movie.AverageRating = nullableFloat(avgRating)
	return &movie, nil
}
