// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// testJSONRoundTrip is a generic helper that tests JSON marshal/unmarshal for any type.
// It marshals the input, unmarshals it back, and calls the verification function.
func testJSONRoundTrip[T any](t *testing.T, name string, input T, verify func(t *testing.T, decoded T)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		data, err := json.Marshal(input)
		if err != nil {
			t.Fatalf("Failed to marshal %s: %v", name, err)
		}

		var decoded T
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Failed to unmarshal %s: %v", name, err)
		}

		if verify != nil {
			verify(t, decoded)
		}
	})
}

var testTime = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func createTestMovie() Movie {
	release := time.Date(2016, 11, 11, 0, 0, 0, 0, time.UTC)
	duration := 116
	poster := "https://example.com/arrival.jpg"
	avg := 4.5
	return Movie{
		ID:            7,
		Title:         "Arrival",
		Description:   "A linguist decodes an alien language.",
		ReleaseDate:   &release,
		Duration:      &duration,
		PosterURL:     &poster,
		CreatedAt:     testTime,
		UpdatedAt:     testTime,
		IsActive:      true,
		Genres:        []Genre{{ID: 1, Name: "Sci-Fi", IsActive: true}},
		AverageRating: &avg,
		RatingCount:   2,
	}
}

func TestJSONMarshaling(t *testing.T) {
	t.Parallel()

	testJSONRoundTrip(t, "Movie", createTestMovie(), func(t *testing.T, decoded Movie) {
		if decoded.ID != 7 {
			t.Errorf("Expected ID 7, got %d", decoded.ID)
		}
		if decoded.Title != "Arrival" {
			t.Errorf("Expected title 'Arrival', got %q", decoded.Title)
		}
		if decoded.Duration == nil || *decoded.Duration != 116 {
			t.Error("Duration not properly marshaled/unmarshaled")
		}
		if decoded.AverageRating == nil || *decoded.AverageRating != 4.5 {
			t.Error("AverageRating not properly marshaled/unmarshaled")
		}
		if len(decoded.Genres) != 1 || decoded.Genres[0].Name != "Sci-Fi" {
			t.Error("Genres not properly marshaled/unmarshaled")
		}
	})

	testJSONRoundTrip(t, "Watchlist", Watchlist{
		ID: 3, UserID: 9, Name: "Favorites", IsActive: true, ItemCount: 4,
		CreatedAt: testTime, UpdatedAt: testTime,
	}, func(t *testing.T, decoded Watchlist) {
		if decoded.UserID != 9 {
			t.Errorf("Expected UserID 9, got %d", decoded.UserID)
		}
		if decoded.ItemCount != 4 {
			t.Errorf("Expected ItemCount 4, got %d", decoded.ItemCount)
		}
	})

	testJSONRoundTrip(t, "Rating", Rating{
		ID: 1, UserID: 9, MovieID: 7, Score: 5, IsActive: true,
		CreatedAt: testTime, UpdatedAt: testTime,
	}, func(t *testing.T, decoded Rating) {
		if decoded.Score != 5 {
			t.Errorf("Expected score 5, got %d", decoded.Score)
		}
	})

	testJSONRoundTrip(t, "APIError", APIError{
		Code:    "DUPLICATE_ITEM",
		Message: "Movie is already on this watchlist",
		Details: map[string]interface{}{"movie_id": float64(7)},
	}, func(t *testing.T, decoded APIError) {
		if decoded.Code != "DUPLICATE_ITEM" {
			t.Errorf("Expected code DUPLICATE_ITEM, got %q", decoded.Code)
		}
	})

	testJSONRoundTrip(t, "BulkAddResult", BulkAddResult{
		WatchlistID: 3,
		Requested:   3,
		Added:       2,
		Outcomes: []BulkAddOutcome{
			{MovieID: 1, Status: BulkOutcomeAdded},
			{MovieID: 999, Status: BulkOutcomeMovieNotFound},
			{MovieID: 2, Status: BulkOutcomeAdded},
		},
	}, func(t *testing.T, decoded BulkAddResult) {
		if len(decoded.Outcomes) != 3 {
			t.Fatalf("Expected 3 outcomes, got %d", len(decoded.Outcomes))
		}
		if decoded.Outcomes[1].Status != BulkOutcomeMovieNotFound {
			t.Errorf("Expected movie_not_found, got %q", decoded.Outcomes[1].Status)
		}
	})
}

// TestUserPasswordHashNeverSerialized guards the json:"-" tag on the hash.
func TestUserPasswordHashNeverSerialized(t *testing.T) {
	t.Parallel()

	u := User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$secret",
		Role:         RoleViewer,
		IsActive:     true,
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Failed to marshal user: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal raw map: %v", err)
	}
	for key := range raw {
		if key == "password_hash" || key == "PasswordHash" {
			t.Errorf("password hash leaked into JSON under key %q", key)
		}
	}
}

// TestRatingSummaryNilAverage verifies the unrated sentinel survives JSON:
// an unrated movie must serialize average as null, never 0.
func TestRatingSummaryNilAverage(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(RatingSummary{MovieID: 7, Average: nil, Count: 0})
	if err != nil {
		t.Fatalf("Failed to marshal summary: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal raw map: %v", err)
	}
	val, present := raw["average"]
	if !present {
		t.Fatal("average field missing; nil must serialize as explicit null")
	}
	if val != nil {
		t.Errorf("average = %v, want null", val)
	}
}

// TestMovieNilAverageRating mirrors the sentinel check on Movie itself.
func TestMovieNilAverageRating(t *testing.T) {
	t.Parallel()

	m := Movie{ID: 1, Title: "Unrated", IsActive: true}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Failed to marshal movie: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal raw map: %v", err)
	}
	val, present := raw["average_rating"]
	if !present {
		t.Fatal("average_rating field missing; nil must serialize as explicit null")
	}
	if val != nil {
		t.Errorf("average_rating = %v, want null", val)
	}
}

func TestOwnedImplementations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		owned Owned
		want  int64
	}{
		{"Watchlist", &Watchlist{UserID: 11}, 11},
		{"Review", &Review{UserID: 22}, 22},
		{"Rating", &Rating{UserID: 33}, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.owned.OwnerID(); got != tt.want {
				t.Errorf("OwnerID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role string
		want bool
	}{
		{RoleViewer, true},
		{RoleEditor, true},
		{RoleAdmin, true},
		{"superuser", false},
		{"", false},
		{"Admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			t.Parallel()
			if got := IsValidRole(tt.role); got != tt.want {
				t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestIsStaffRole(t *testing.T) {
	t.Parallel()

	if IsStaffRole(RoleViewer) {
		t.Error("viewer must not be staff")
	}
	if !IsStaffRole(RoleEditor) {
		t.Error("editor must be staff")
	}
	if !IsStaffRole(RoleAdmin) {
		t.Error("admin must be staff")
	}
}
