// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a
// thread-safe singleton validator instance with custom validators and
// user-friendly error messages. It integrates with the application's API
// error format for consistent error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Custom username validator for account names
//   - Error translation to human-readable messages
//   - APIError conversion matching the application's error format
//
// # Quick Start
//
//	type SignupRequest struct {
//	    Username string `validate:"required,username,min=3,max=50"`
//	    Email    string `validate:"required,email"`
//	    Password string `validate:"required,min=8,max=128"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req SignupRequest
//	    if err := json.Decode(r.Body, &req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - email: Valid email format
//   - url: Valid URL format
//   - datetime=2006-01-02: Valid calendar date
//   - username: Letters, digits, underscores and hyphens only
//
// Numeric validations:
//   - min=n / max=n: Value bounds (rating scores use min=1,max=5)
//   - gt=n / gte=n / lt=n / lte=n: Comparisons
//
// Enum validations:
//   - oneof=viewer editor admin: Must be one of the specified values
//
// # Error Types
//
// ValidationError represents a single field validation failure.
// RequestValidationError aggregates multiple field errors and converts to
// the API error format via ToAPIError:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Score must be at most 5",
//	    "details": {"field": "Score", "tag": "max", "value": 6}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Username: must be at least 3 characters; Email: required",
//	    "details": {
//	        "fields": [
//	            {"field": "Username", "tag": "min", "message": "..."},
//	            {"field": "Email", "tag": "required", "message": "..."}
//	        ]
//	    }
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # See Also
//
//   - internal/api: Request handlers using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
