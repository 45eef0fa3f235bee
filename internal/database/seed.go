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
	"time"

	"github.com/tomtom215/cinetrack/internal/models"
)

// Demo account usernames. Their password is whatever main hashed into
// SeedDemoData; by convention "cinetrack-demo".
const (
	SeedViewerUsername = "demo-viewer"
	SeedEditorUsername = "demo-editor"
)

type seedMovie struct {
	title       string
	description string
	releaseDate string
	duration    int
	genres      []string
	platforms   []string
}

var seedGenres = []string{"Animation", "Comedy", "Documentary", "Drama", "Horror", "Sci-Fi"}

var seedPlatforms = []struct {
	name    string
	website string
}{
	{"Criterion Channel", "https://www.criterionchannel.com"},
	{"Internet Archive", "https://archive.org"},
	{"Mubi", "https://mubi.com"},
}

// Silent-era catalog: long out of copyright, so a demo deployment ships
// nothing it cannot show.
var seedMovies = []seedMovie{
	{
		title:       "Metropolis",
		description: "A futuristic city sharply divided between the working class and the city planners.",
		releaseDate: "1927-01-10",
		duration:    153,
		genres:      []string{"Drama", "Sci-Fi"},
		platforms:   []string{"Internet Archive", "Mubi"},
	},
	{
		title:       "Sunrise: A Song of Two Humans",
		description: "A married farmer falls under the spell of a woman from the city.",
		releaseDate: "1927-09-23",
		duration:    94,
		genres:      []string{"Drama"},
		platforms:   []string{"Criterion Channel"},
	},
	{
		title:       "The General",
		description: "A Confederate engineer pursues his stolen locomotive and the spy who took it.",
		releaseDate: "1926-12-31",
		duration:    67,
		genres:      []string{"Comedy"},
		platforms:   []string{"Internet Archive"},
	},
	{
		title:       "Nosferatu",
		description: "Vampire Count Orlok expresses interest in a new residence and a real estate agent's wife.",
		releaseDate: "1922-03-04",
		duration:    94,
		genres:      []string{"Horror"},
		platforms:   []string{"Internet Archive", "Criterion Channel"},
	},
	{
		title:       "Sherlock Jr.",
		description: "A film projectionist dreams himself into the detective picture he is screening.",
		releaseDate: "1924-04-21",
		duration:    45,
		genres:      []string{"Comedy"},
		platforms:   []string{"Mubi"},
	},
	{
		title:       "Man with a Movie Camera",
		description: "A day in the life of a Soviet city, seen through the eye of a restless camera.",
		releaseDate: "1929-01-08",
		duration:    68,
		genres:      []string{"Documentary"},
		platforms:   []string{"Mubi", "Internet Archive"},
	},
}

// SeedDemoData populates demo accounts, a small public-domain movie
// catalog, and example watchlists, ratings and reviews. Idempotent: once
// the demo viewer account exists the seed is skipped, and individual
// duplicate rows are tolerated so a seed interrupted halfway finishes on
// the next run. demoPasswordHash is the bcrypt hash for both demo
// accounts; hashing stays with the auth package.
func (db *DB) SeedDemoData(ctx context.Context, demoPasswordHash string) error {
	if db.cfg.SeedReset {
		if err := db.resetDemoData(ctx); err != nil {
			return fmt.Errorf("failed to reset demo data: %w", err)
		}
	}

	if _, err := db.GetUserByUsername(ctx, SeedViewerUsername); err == nil {
		db.log.Info().Msg("Demo data already present, skipping seed")
		return nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	start := time.Now()

	genreIDs, err := db.seedGenres(ctx)
	if err != nil {
		return err
	}
	platformIDs, err := db.seedPlatforms(ctx)
	if err != nil {
		return err
	}
	movieIDs, err := db.seedMovies(ctx, genreIDs, platformIDs)
	if err != nil {
		return err
	}

	viewer := &models.User{Username: SeedViewerUsername, Email: "viewer@cinetrack.example", PasswordHash: demoPasswordHash, Role: models.RoleViewer}
	editor := &models.User{Username: SeedEditorUsername, Email: "editor@cinetrack.example", PasswordHash: demoPasswordHash, Role: models.RoleEditor}
	for _, user := range []*models.User{viewer, editor} {
		if err := db.CreateUser(ctx, user); err != nil && !errors.Is(err, ErrDuplicateUser) {
			return err
		}
	}

	if err := db.seedActivity(ctx, viewer, editor, movieIDs); err != nil {
		return err
	}

	db.log.Info().
		Int("movies", len(seedMovies)).
		Dur("elapsed", time.Since(start)).
		Msg("Demo data seeded")
	return nil
}

func (db *DB) seedGenres(ctx context.Context) (map[string]int64, error) {
	ids := make(map[string]int64, len(seedGenres))
	for _, name := range seedGenres {
		genre := &models.Genre{Name: name}
		err := db.CreateGenre(ctx, genre)
		switch {
		case err == nil:
			ids[name] = genre.ID
		case errors.Is(err, ErrDuplicateGenre):
			id, lookupErr := db.idByName(ctx, "genres", name)
			if lookupErr != nil {
				return nil, lookupErr
			}
			ids[name] = id
		default:
			return nil, err
		}
	}
	return ids, nil
}

func (db *DB) seedPlatforms(ctx context.Context) (map[string]int64, error) {
	ids := make(map[string]int64, len(seedPlatforms))
	for _, p := range seedPlatforms {
		platform := &models.StreamingPlatform{Name: p.name, Website: p.website}
		err := db.CreatePlatform(ctx, platform)
		switch {
		case err == nil:
			ids[p.name] = platform.ID
		case errors.Is(err, ErrDuplicatePlatform):
			id, lookupErr := db.idByName(ctx, "streaming_platforms", p.name)
			if lookupErr != nil {
				return nil, lookupErr
			}
			ids[p.name] = id
		default:
			return nil, err
		}
	}
	return ids, nil
}

func (db *DB) seedMovies(ctx context.Context, genreIDs, platformIDs map[string]int64) (map[string]int64, error) {
	ids := make(map[string]int64, len(seedMovies))
	for _, sm := range seedMovies {
		releaseDate, err := time.Parse("2006-01-02", sm.releaseDate)
		if err != nil {
			return nil, fmt.Errorf("bad seed release date %q: %w", sm.releaseDate, err)
		}
		duration := sm.duration

		movie := &models.Movie{
			Title:       sm.title,
			Description: sm.description,
			ReleaseDate: &releaseDate,
			Duration:    &duration,
		}
		err = db.CreateMovie(ctx, movie, lookupIDs(genreIDs, sm.genres), lookupIDs(platformIDs, sm.platforms))
		switch {
		case err == nil:
			ids[sm.title] = movie.ID
		case errors.Is(err, ErrDuplicateMovie):
			id, lookupErr := db.idByName(ctx, "movies", sm.title)
			if lookupErr != nil {
				return nil, lookupErr
			}
			ids[sm.title] = id
		default:
			return nil, err
		}
	}
	return ids, nil
}

// seedActivity gives the demo accounts something to show: items on the
// viewer's default watchlist, a few scores, and a review apiece.
func (db *DB) seedActivity(ctx context.Context, viewer, editor *models.User, movieIDs map[string]int64) error {
	lists, err := db.ListWatchlists(ctx, viewer.ID)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		return fmt.Errorf("demo viewer %d has no default watchlist", viewer.ID)
	}
	watchlistID := lists[0].ID

	for _, title := range []string{"Metropolis", "Nosferatu", "Sherlock Jr."} {
		if _, err := db.AddWatchlistItem(ctx, watchlistID, movieIDs[title]); err != nil && !errors.Is(err, ErrDuplicateItem) {
			return err
		}
	}

	scores := []struct {
		user  *models.User
		title string
		score int
	}{
		{viewer, "Metropolis", 5},
		{viewer, "The General", 4},
		{editor, "Metropolis", 4},
		{editor, "Man with a Movie Camera", 5},
	}
	for _, s := range scores {
		rating := &models.Rating{UserID: s.user.ID, MovieID: movieIDs[s.title], Score: s.score}
		if _, err := db.UpsertRating(ctx, rating); err != nil {
			return err
		}
	}

	reviews := []*models.Review{
		{UserID: viewer.ID, MovieID: movieIDs["Metropolis"], Title: "Still towering", Body: "Nearly a century on, the city sets have not been out-dreamed."},
		{UserID: editor.ID, MovieID: movieIDs["Sherlock Jr."], Title: "45 perfect minutes", Body: "The projection-booth dream sequence remains the best film-within-a-film gag ever staged."},
	}
	for _, review := range reviews {
		if err := db.CreateReview(ctx, review); err != nil && !errors.Is(err, ErrDuplicateReview) {
			return err
		}
	}
	return nil
}

// resetDemoData hard-deletes everything a previous seed created: the demo
// accounts with their watchlists, ratings and reviews, and the seeded
// movies with their link rows. Genres and platforms stay; they may be
// shared with real data and reseeding tolerates them.
func (db *DB) resetDemoData(ctx context.Context) error {
	userArgs := []interface{}{SeedViewerUsername, SeedEditorUsername}
	userSet := `(SELECT id FROM users WHERE username IN (?, ?))`

	titleArgs := make([]interface{}, 0, len(seedMovies))
	placeholders := ""
	for i, sm := range seedMovies {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		titleArgs = append(titleArgs, sm.title)
	}
	movieSet := `(SELECT id FROM movies WHERE title IN (` + placeholders + `))`

	statements := []struct {
		query string
		args  []interface{}
	}{
		{`DELETE FROM ratings WHERE user_id IN ` + userSet, userArgs},
		{`DELETE FROM reviews WHERE user_id IN ` + userSet, userArgs},
		{`DELETE FROM watchlist_items WHERE watchlist_id IN (SELECT id FROM watchlists WHERE user_id IN ` + userSet + `)`, userArgs},
		{`DELETE FROM watchlists WHERE user_id IN ` + userSet, userArgs},
		{`DELETE FROM users WHERE username IN (?, ?)`, userArgs},
		{`DELETE FROM ratings WHERE movie_id IN ` + movieSet, titleArgs},
		{`DELETE FROM reviews WHERE movie_id IN ` + movieSet, titleArgs},
		{`DELETE FROM watchlist_items WHERE movie_id IN ` + movieSet, titleArgs},
		{`DELETE FROM movie_genres WHERE movie_id IN ` + movieSet, titleArgs},
		{`DELETE FROM movie_platforms WHERE movie_id IN ` + movieSet, titleArgs},
		{`DELETE FROM movies WHERE title IN (` + placeholders + `)`, titleArgs},
	}

	for _, stmt := range statements {
		if err := execWithRetry(ctx, func() error {
			_, execErr := db.conn.ExecContext(ctx, stmt.query, stmt.args...)
			return execErr
		}); err != nil {
			return err
		}
	}

	db.log.Info().Msg("Demo data reset")
	return nil
}

// idByName resolves a unique name to its row ID in one of the
// name-keyed tables (genres, streaming_platforms, movies by title).
func (db *DB) idByName(ctx context.Context, table, name string) (int64, error) {
	column := "name"
	if table == "movies" {
		column = "title"
	}
	// table and column are compile-time constants here.
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = ? ORDER BY id LIMIT 1", table, column)

	var id int64
	err := db.conn.QueryRowContext(ctx, query, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("seed lookup: no row in %s named %q", table, name)
	}
	if err != nil {
		return 0, fmt.Errorf("seed lookup in %s: %w", table, err)
	}
	return id, nil
}

// lookupIDs maps names through a seeded name-to-ID index.
func lookupIDs(index map[string]int64, names []string) []int64 {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		if id, ok := index[name]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
