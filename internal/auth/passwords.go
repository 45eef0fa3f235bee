// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for password hashing. Cost 12 lands
// around 250ms per hash on current hardware, slow enough to blunt
// offline brute force without making login feel broken.
const bcryptCost = 12

// bcrypt silently truncates input past 72 bytes; reject instead.
const maxPasswordBytes = 72

// DummyHash is a structurally valid bcrypt hash (cost 12) matching no
// password. Login compares against it when the username is unknown, so
// response timing does not reveal whether an account exists.
const DummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// HashPassword hashes a plaintext password with bcrypt. The salt is
// embedded in the returned hash, so equal passwords produce distinct
// hashes.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("password exceeds %d bytes", maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt
// hash. bcrypt.CompareHashAndPassword is timing-safe by design.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
