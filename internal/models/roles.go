// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package models

// Role constants define the standard roles in the system.
// These align with the Casbin policy definitions in internal/authz/policy.csv.
const (
	// RoleViewer is the default role: read catalog data, manage only
	// their own watchlists, reviews and ratings.
	RoleViewer = "viewer"

	// RoleEditor curates the catalog (movies, genres, platforms) and may
	// moderate any user's watchlists, reviews and ratings. Inherits viewer.
	RoleEditor = "editor"

	// RoleAdmin has full access including user and role management.
	// Inherits editor.
	RoleAdmin = "admin"
)

// ValidRoles contains all valid role names for validation.
var ValidRoles = []string{RoleViewer, RoleEditor, RoleAdmin}

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaffRole reports whether the role moderates other users' resources.
// Editors and admins are staff; viewers are not.
func IsStaffRole(role string) bool {
	return role == RoleEditor || role == RoleAdmin
}
