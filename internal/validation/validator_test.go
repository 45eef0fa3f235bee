// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package validation

import (
	"strings"
	"testing"
)

// rateRequest mirrors the API rating body shape.
type rateRequest struct {
	Score int `validate:"required,min=1,max=5"`
}

// signupRequest mirrors the auth signup body shape.
type signupRequest struct {
	Username string `validate:"required,username,min=3,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=128"`
}

// movieRequest mirrors the movie create body shape.
type movieRequest struct {
	Title       string `validate:"required,min=1,max=255"`
	ReleaseDate string `validate:"omitempty,datetime=2006-01-02"`
	PosterURL   string `validate:"omitempty,url"`
	Duration    int    `validate:"omitempty,gt=0"`
}

func TestValidateStruct_RatingScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		score   int
		wantErr bool
	}{
		{"minimum score", 1, false},
		{"maximum score", 5, false},
		{"middle score", 3, false},
		{"zero score", 0, true},
		{"score too high", 6, true},
		{"negative score", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&rateRequest{Score: tt.score})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct(score=%d) error = %v, wantErr %v", tt.score, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStruct_Username(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple", "alice", false},
		{"with digits", "alice42", false},
		{"with underscore", "movie_buff", false},
		{"with hyphen", "film-fan", false},
		{"too short", "ab", true},
		{"spaces", "alice smith", true},
		{"punctuation", "alice!", true},
		{"email-like", "alice@example.com", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := &signupRequest{
				Username: tt.username,
				Email:    "alice@example.com",
				Password: "correct-horse-battery",
			}
			err := ValidateStruct(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct(username=%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStruct_MovieFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     movieRequest
		wantErr bool
	}{
		{
			name:    "title only",
			req:     movieRequest{Title: "Arrival"},
			wantErr: false,
		},
		{
			name: "all fields valid",
			req: movieRequest{
				Title:       "Arrival",
				ReleaseDate: "2016-11-11",
				PosterURL:   "https://example.com/arrival.jpg",
				Duration:    116,
			},
			wantErr: false,
		},
		{
			name:    "missing title",
			req:     movieRequest{ReleaseDate: "2016-11-11"},
			wantErr: true,
		},
		{
			name:    "bad release date format",
			req:     movieRequest{Title: "Arrival", ReleaseDate: "11/11/2016"},
			wantErr: true,
		},
		{
			name:    "bad poster URL",
			req:     movieRequest{Title: "Arrival", PosterURL: "not a url"},
			wantErr: true,
		},
		{
			name:    "negative duration",
			req:     movieRequest{Title: "Arrival", Duration: -5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&rateRequest{Score: 6})
	if err == nil {
		t.Fatal("expected validation error for score 6")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Score") {
		t.Errorf("Message %q should name the Score field", apiErr.Message)
	}
	if apiErr.Details["field"] != "Score" {
		t.Errorf("Details[field] = %v, want Score", apiErr.Details["field"])
	}
	if apiErr.Details["tag"] != "max" {
		t.Errorf("Details[tag] = %v, want max", apiErr.Details["tag"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&signupRequest{
		Username: "a!",
		Email:    "not-an-email",
		Password: "short",
	})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if len(err.Errors()) < 2 {
		t.Fatalf("expected multiple errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has type %T, want []map[string]interface{}", apiErr.Details["fields"])
	}
	if len(fields) != len(err.Errors()) {
		t.Errorf("fields length = %d, want %d", len(fields), len(err.Errors()))
	}
}

func TestTranslateError_Messages(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&rateRequest{})
	if err == nil {
		t.Fatal("expected required error for zero score")
	}
	if got := err.Error(); !strings.Contains(got, "Score is required") {
		t.Errorf("Error() = %q, want it to contain %q", got, "Score is required")
	}

	err = ValidateStruct(&signupRequest{
		Username: "looks_fine",
		Email:    "alice@example.com",
		Password: "short",
	})
	if err == nil {
		t.Fatal("expected min-length error for short password")
	}
	if got := err.Error(); !strings.Contains(got, "at least 8 characters") {
		t.Errorf("Error() = %q, want string min message", got)
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(&signupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse-battery",
	}); err != nil {
		t.Errorf("ValidateStruct() unexpected error: %v", err)
	}
}
