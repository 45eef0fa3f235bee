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

	"github.com/tomtom215/cinetrack/internal/models"
)

// DefaultWatchlistName is the watchlist every account starts with.
const DefaultWatchlistName = "My Watchlist"

var (
	// ErrUserNotFound is returned when a user does not exist or is inactive.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned when a username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")
)

// usersMutex serializes user ID allocation and the signup transaction.
// Lock ordering: usersMutex before watchlistsMutex (CreateUser is the only
// method that holds both).
var usersMutex sync.Mutex

const userColumns = "id, username, email, password_hash, role, created_at, updated_at, is_active, deleted_at"

// CreateUser inserts a new account and its default watchlist in one
// transaction, so a half-created account can never exist. Fills in ID,
// timestamps and the viewer role if unset. Duplicate username or email
// returns ErrDuplicateUser.
func (db *DB) CreateUser(ctx context.Context, user *models.User) (err error) {
	defer db.observe(time.Now(), "insert", "users")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	usersMutex.Lock()
	defer usersMutex.Unlock()
	watchlistsMutex.Lock()
	defer watchlistsMutex.Unlock()

	userID, err := db.nextIDLocked(ctx, "users")
	if err != nil {
		return err
	}
	watchlistID, err := db.nextIDLocked(ctx, "watchlists")
	if err != nil {
		return err
	}

	if user.Role == "" {
		user.Role = models.RoleViewer
	}
	now := time.Now().UTC()

	err = execWithRetry(ctx, func() error {
		tx, txErr := db.conn.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}
		defer func() { _ = tx.Rollback() }()

		if _, txErr = tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, TRUE)`,
			userID, user.Username, user.Email, user.PasswordHash, user.Role, now, now,
		); txErr != nil {
			return txErr
		}

		if _, txErr = tx.ExecContext(ctx,
			`INSERT INTO watchlists (id, user_id, name, description, created_at, updated_at, is_active)
			 VALUES (?, ?, ?, '', ?, ?, TRUE)`,
			watchlistID, userID, DefaultWatchlistName, now, now,
		); txErr != nil {
			return txErr
		}

		return tx.Commit()
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", user.Username, ErrDuplicateUser)
		}
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}

	user.ID = userID
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	user.DeletedAt = nil
	return nil
}

// GetUserByID returns an active user by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (user *models.User, err error) {
	defer db.observe(time.Now(), "select", "users")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND is_active = TRUE`, id)

	user, err = scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername returns a user by username regardless of active state.
// Login needs the row either way: a disabled account is reported
// differently from bad credentials. Callers must check IsActive.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (user *models.User, err error) {
	defer db.observe(time.Now(), "select", "users")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	user, err = scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return user, nil
}

// ListUsers returns a page of active users ordered by ID, plus the total
// active count. Admin surface.
func (db *DB) ListUsers(ctx context.Context, limit, offset int) (users []models.User, total int, err error) {
	defer db.observe(time.Now(), "select", "users")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_active = TRUE`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE is_active = TRUE ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer closeWithLog(rows, db.log, "users rows")

	users = make([]models.User, 0, limit)
	for rows.Next() {
		user, scanErr := scanUserRow(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", scanErr)
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, total, nil
}

// UpdateUserRole changes a user's role. The new role must already be
// validated against models.ValidRoles.
func (db *DB) UpdateUserRole(ctx context.Context, userID int64, role string) (err error) {
	defer db.observe(time.Now(), "update", "users")(&err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var result sql.Result
	err = execWithRetry(ctx, func() error {
		var execErr error
		result, execErr = db.conn.ExecContext(ctx,
			`UPDATE users SET role = ?, updated_at = ? WHERE id = ? AND is_active = TRUE`,
			role, time.Now().UTC(), userID)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to update role for user %d: %w", userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	return nil
}

// EnsureAdminUser creates the bootstrap admin account if no user with that
// username exists. An existing user is left untouched, including its role
// and password, so a normal account cannot be hijacked via configuration.
func (db *DB) EnsureAdminUser(ctx context.Context, username, email, passwordHash string) error {
	_, err := db.GetUserByUsername(ctx, username)
	if err == nil {
		db.log.Debug().Str("username", username).Msg("Admin bootstrap user already exists")
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	admin := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}
	if err := db.CreateUser(ctx, admin); err != nil {
		// Lost a race against a concurrent signup with the same name.
		if errors.Is(err, ErrDuplicateUser) {
			return nil
		}
		return err
	}

	db.log.Info().Str("username", username).Int64("user_id", admin.ID).Msg("Admin bootstrap user created")
	return nil
}

// scanUserRow scans one users row in userColumns order.
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var deletedAt sql.NullTime

	if err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.CreatedAt, &user.UpdatedAt, &user.IsActive, &deletedAt,
	); err != nil {
		return nil, err
	}

	user.DeletedAt = nullableTime(deletedAt)
	return &user, nil
}
