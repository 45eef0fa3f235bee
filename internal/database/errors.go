// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package database

import (
	"errors"
	"io"

	"github.com/rs/zerolog"
)

// domainErrors are the errors.Is-matchable sentinels the stores return for
// expected outcomes. The HTTP layer maps them onto the API error taxonomy;
// the metrics layer excludes them from query error counts. Each sentinel is
// declared next to the store that owns it.
var domainErrors = []error{
	ErrUserNotFound,
	ErrDuplicateUser,
	ErrGenreNotFound,
	ErrDuplicateGenre,
	ErrPlatformNotFound,
	ErrDuplicatePlatform,
	ErrMovieNotFound,
	ErrDuplicateMovie,
	ErrWatchlistNotFound,
	ErrDuplicateWatchlist,
	ErrItemNotFound,
	ErrDuplicateItem,
	ErrRatingNotFound,
	ErrReviewNotFound,
	ErrDuplicateReview,
}

// isDomainError reports whether err is an expected domain outcome rather
// than a storage failure.
func isDomainError(err error) bool {
	for _, sentinel := range domainErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// closeWithLog closes a resource and logs any failure. Use for cleanup
// paths where the error cannot change the outcome but should not vanish.
func closeWithLog(closer io.Closer, log zerolog.Logger, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		log.Warn().Err(err).Str("resource", resourceType).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource discarding the error. Only for paths that
// are already failing and about to return a more useful error.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
