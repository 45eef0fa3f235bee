// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/cinetrack/internal/models"
)

func TestCreateMovie_WithLinks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	drama := createTestGenre(t, db, "Drama")
	scifi := createTestGenre(t, db, "Sci-Fi")
	platform := createTestPlatform(t, db, "Criterion Channel")

	movie := &models.Movie{
		Title:       "Linked Movie",
		Description: "a movie with taxonomy",
		ReleaseDate: timePtr(time.Date(1968, 4, 2, 0, 0, 0, 0, time.UTC)),
		Duration:    intPtr(142),
	}
	err := db.CreateMovie(ctx, movie, []int64{drama.ID, scifi.ID}, []int64{platform.ID})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if movie.ID == 0 {
		t.Fatal("ID not assigned")
	}
	if len(movie.Genres) != 2 || len(movie.Platforms) != 1 {
		t.Fatalf("links not attached: %d genres, %d platforms", len(movie.Genres), len(movie.Platforms))
	}
	// Attached links come back name ascending.
	if movie.Genres[0].Name != "Drama" || movie.Genres[1].Name != "Sci-Fi" {
		t.Errorf("genres = %q, %q", movie.Genres[0].Name, movie.Genres[1].Name)
	}
	if movie.Platforms[0].Name != "Criterion Channel" {
		t.Errorf("platform = %q", movie.Platforms[0].Name)
	}
}

func TestCreateMovie_UnknownGenre(t *testing.T) {
	db := setupTestDB(t)

	movie := &models.Movie{Title: "Bad Links"}
	err := db.CreateMovie(context.Background(), movie, []int64{9999}, nil)
	if !errors.Is(err, ErrGenreNotFound) {
		t.Errorf("expected ErrGenreNotFound, got %v", err)
	}

	// Nothing committed.
	counts, cErr := db.GetRecordCounts(context.Background())
	if cErr != nil {
		t.Fatalf("GetRecordCounts failed: %v", cErr)
	}
	if counts["movies"] != 0 {
		t.Errorf("movies rows = %d, want 0", counts["movies"])
	}
}

func TestCreateMovie_UnknownPlatform(t *testing.T) {
	db := setupTestDB(t)

	movie := &models.Movie{Title: "Bad Platform"}
	err := db.CreateMovie(context.Background(), movie, nil, []int64{9999})
	if !errors.Is(err, ErrPlatformNotFound) {
		t.Errorf("expected ErrPlatformNotFound, got %v", err)
	}
}

func TestCreateMovie_DuplicateTitleAndDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := time.Date(1954, 4, 26, 0, 0, 0, 0, time.UTC)

	first := &models.Movie{Title: "Seven Samurai", ReleaseDate: timePtr(date)}
	if err := db.CreateMovie(ctx, first, nil, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	dup := &models.Movie{Title: "Seven Samurai", ReleaseDate: timePtr(date)}
	if err := db.CreateMovie(ctx, dup, nil, nil); !errors.Is(err, ErrDuplicateMovie) {
		t.Errorf("expected ErrDuplicateMovie, got %v", err)
	}

	// A remake with the same title but a different date is a different movie.
	remake := &models.Movie{
		Title:       "Seven Samurai",
		ReleaseDate: timePtr(time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	if err := db.CreateMovie(ctx, remake, nil, nil); err != nil {
		t.Errorf("remake should be allowed: %v", err)
	}
}

func TestGetMovieByID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	created := createTestMovie(t, db, "Readable Movie")

	got, err := db.GetMovieByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Title != "Readable Movie" {
		t.Errorf("title = %q", got.Title)
	}
	if got.AverageRating != nil || got.RatingCount != 0 {
		t.Errorf("unrated movie should have nil average and zero count, got %+v", got)
	}
	if got.Genres == nil || got.Platforms == nil {
		t.Error("link slices should be initialized, not nil")
	}

	if _, err := db.GetMovieByID(ctx, 9999); !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("expected ErrMovieNotFound, got %v", err)
	}
}

func TestListMovies_SearchCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	createTestMovie(t, db, "The Long Goodbye")
	createTestMovie(t, db, "Goodbye, Dragon Inn")
	createTestMovie(t, db, "Unrelated Feature")

	movies, total, err := db.ListMovies(ctx, MovieFilter{Search: "goodbye", Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(movies) != 2 {
		t.Errorf("total/len = %d/%d, want 2/2", total, len(movies))
	}
}

func TestListMovies_SearchEscapesWildcards(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	createTestMovie(t, db, "100% Wool")
	createTestMovie(t, db, "100 Proof")

	// A literal percent must not act as a LIKE wildcard.
	movies, total, err := db.ListMovies(ctx, MovieFilter{Search: "100%", Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(movies) != 1 || movies[0].Title != "100% Wool" {
		t.Errorf("got total=%d len=%d, want only the literal match", total, len(movies))
	}
}

func TestListMovies_FilterByGenreAndPlatform(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	horror := createTestGenre(t, db, "Horror")
	comedy := createTestGenre(t, db, "Comedy")
	mubi := createTestPlatform(t, db, "Mubi")

	scary := &models.Movie{Title: "Scary Movie Night"}
	if err := db.CreateMovie(ctx, scary, []int64{horror.ID}, []int64{mubi.ID}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	funny := &models.Movie{Title: "Funny Movie Night"}
	if err := db.CreateMovie(ctx, funny, []int64{comedy.ID}, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byGenre, total, err := db.ListMovies(ctx, MovieFilter{GenreID: horror.ID, Limit: 10})
	if err != nil {
		t.Fatalf("list by genre failed: %v", err)
	}
	if total != 1 || byGenre[0].ID != scary.ID {
		t.Errorf("genre filter: total=%d, want the horror movie only", total)
	}

	byPlatform, total, err := db.ListMovies(ctx, MovieFilter{PlatformID: mubi.ID, Limit: 10})
	if err != nil {
		t.Fatalf("list by platform failed: %v", err)
	}
	if total != 1 || byPlatform[0].ID != scary.ID {
		t.Errorf("platform filter: total=%d, want the mubi movie only", total)
	}
}

func TestListMovies_FilterByReleaseYear(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	old := &models.Movie{Title: "From 1927", ReleaseDate: timePtr(time.Date(1927, 1, 10, 0, 0, 0, 0, time.UTC))}
	if err := db.CreateMovie(ctx, old, nil, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	newer := &models.Movie{Title: "From 1954", ReleaseDate: timePtr(time.Date(1954, 4, 26, 0, 0, 0, 0, time.UTC))}
	if err := db.CreateMovie(ctx, newer, nil, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	movies, total, err := db.ListMovies(ctx, MovieFilter{ReleaseYear: 1927, Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || movies[0].ID != old.ID {
		t.Errorf("year filter: total=%d, want the 1927 movie only", total)
	}
}

func TestListMovies_Sorting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	dates := map[string]time.Time{
		"Banshee":  time.Date(2022, 10, 21, 0, 0, 0, 0, time.UTC),
		"Aftersun": time.Date(2022, 11, 18, 0, 0, 0, 0, time.UTC),
		"Corsage":  time.Date(2022, 7, 7, 0, 0, 0, 0, time.UTC),
	}
	for title, date := range dates {
		movie := &models.Movie{Title: title, ReleaseDate: timePtr(date)}
		if err := db.CreateMovie(ctx, movie, nil, nil); err != nil {
			t.Fatalf("create %s failed: %v", title, err)
		}
	}

	byTitle, _, err := db.ListMovies(ctx, MovieFilter{Sort: "title", Limit: 10})
	if err != nil {
		t.Fatalf("sort by title failed: %v", err)
	}
	want := []string{"Aftersun", "Banshee", "Corsage"}
	for i, title := range want {
		if byTitle[i].Title != title {
			t.Errorf("title asc [%d] = %q, want %q", i, byTitle[i].Title, title)
		}
	}

	byDate, _, err := db.ListMovies(ctx, MovieFilter{Sort: "-release_date", Limit: 10})
	if err != nil {
		t.Fatalf("sort by -release_date failed: %v", err)
	}
	wantDesc := []string{"Aftersun", "Banshee", "Corsage"}
	for i, title := range wantDesc {
		if byDate[i].Title != title {
			t.Errorf("release_date desc [%d] = %q, want %q", i, byDate[i].Title, title)
		}
	}
}

func TestListMovies_DefaultSortNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	first := createTestMovie(t, db, "Added First")
	second := createTestMovie(t, db, "Added Second")

	movies, _, err := db.ListMovies(ctx, MovieFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if movies[0].ID != second.ID || movies[1].ID != first.ID {
		t.Errorf("default order should be newest first, got %q then %q", movies[0].Title, movies[1].Title)
	}
}

func TestListMovies_PaginationTotals(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	for _, title := range []string{"Page A", "Page B", "Page C", "Page D", "Page E"} {
		createTestMovie(t, db, title)
	}

	page, total, err := db.ListMovies(ctx, MovieFilter{Sort: "title", Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 || page[0].Title != "Page C" || page[1].Title != "Page D" {
		t.Errorf("unexpected page contents: %+v", page)
	}
}

func TestUpdateMovie_ReplacesLinksWholesale(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	drama := createTestGenre(t, db, "Drama")
	horror := createTestGenre(t, db, "Horror")

	movie := &models.Movie{Title: "Relinked"}
	if err := db.CreateMovie(ctx, movie, []int64{drama.ID}, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	movie.Description = "now a horror"
	if err := db.UpdateMovie(ctx, movie, []int64{horror.ID}, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := db.GetMovieByID(ctx, movie.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Description != "now a horror" {
		t.Errorf("description = %q", got.Description)
	}
	if len(got.Genres) != 1 || got.Genres[0].Name != "Horror" {
		t.Errorf("links not replaced: %+v", got.Genres)
	}
}

func TestUpdateMovie_DuplicateAndNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	date := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	createTestMovie(t, db, "Occupied Slot")
	victim := createTestMovie(t, db, "Renamable")

	victim.Title = "Occupied Slot"
	victim.ReleaseDate = timePtr(date)
	if err := db.UpdateMovie(ctx, victim, nil, nil); !errors.Is(err, ErrDuplicateMovie) {
		t.Errorf("expected ErrDuplicateMovie, got %v", err)
	}

	ghost := &models.Movie{ID: 424242, Title: "Ghost"}
	if err := db.UpdateMovie(ctx, ghost, nil, nil); !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("expected ErrMovieNotFound, got %v", err)
	}
}

func TestDeleteMovie_VanishesFromReads(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	keep := createTestMovie(t, db, "Survivor")
	doomed := createTestMovie(t, db, "Doomed")

	if err := db.DeleteMovie(ctx, doomed.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := db.GetMovieByID(ctx, doomed.ID); !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("deleted movie still readable: %v", err)
	}

	movies, total, err := db.ListMovies(ctx, MovieFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(movies) != 1 || movies[0].ID != keep.ID {
		t.Errorf("deleted movie still listed: total=%d len=%d", total, len(movies))
	}

	// Soft delete keeps the row.
	counts, err := db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts failed: %v", err)
	}
	if counts["movies"] != 2 {
		t.Errorf("movies rows = %d, want 2", counts["movies"])
	}

	if err := db.DeleteMovie(ctx, doomed.ID); !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("double delete should report not found, got %v", err)
	}
}

func TestCreateMovie_DedupesLinkIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	drama := createTestGenre(t, db, "Drama")

	movie := &models.Movie{Title: "Doubly Dramatic"}
	if err := db.CreateMovie(ctx, movie, []int64{drama.ID, drama.ID}, nil); err != nil {
		t.Fatalf("create with repeated genre id failed: %v", err)
	}
	if len(movie.Genres) != 1 {
		t.Errorf("got %d genres, want 1", len(movie.Genres))
	}
}
