// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinetrack/internal/auth"
	"github.com/tomtom215/cinetrack/internal/database"
	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/metrics"
	"github.com/tomtom215/cinetrack/internal/models"
)

// Signup handles account registration
//
// @Summary Register a new account
// @Description Creates a user with the viewer role and a default watchlist, then returns a token pair (signup doubles as first login)
// @Tags Auth
// @Accept json
// @Produce json
// @Param account body models.SignupRequest true "Account details"
// @Success 201 {object} models.APIResponse{data=models.TokenResponse} "Account created"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 409 {object} models.APIResponse "Username or email already taken"
// @Router /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	var req models.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR", "Failed to process password", err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleViewer,
	}

	// CreateUser also creates the account's default watchlist in the
	// same transaction.
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, database.ErrDuplicateUser) {
			respondError(w, http.StatusConflict, models.ErrCodeDuplicateItem, "Username or email is already taken", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to create account", err)
		return
	}

	metrics.AuthSignupsTotal.Inc()
	logging.Info().Int64("user_id", user.ID).Str("username", sanitizeLogValue(user.Username)).Msg("Account created")

	tokens, err := h.auth.IssuePair(r.Context(), user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR", "Account created but token issuance failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   tokens,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// Login handles credential authentication
//
// @Summary Authenticate with username and password
// @Description Verifies credentials and returns an access + refresh token pair. Repeated failures lock the account temporarily.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.APIResponse{data=models.TokenResponse} "Authentication successful"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 401 {object} models.APIResponse "Invalid credentials"
// @Failure 429 {object} models.APIResponse "Account temporarily locked"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx := r.Context()

	if h.lockout != nil {
		locked, remaining, err := h.lockout.CheckLocked(ctx, req.Username)
		if err != nil {
			logging.Warn().Err(err).Msg("Lockout check failed, continuing")
		} else if locked {
			metrics.RecordAuthAttempt("locked")
			respondLocked(w, remaining)
			return
		}
	}

	user, err := h.db.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			// Burn a comparable amount of work so absent usernames are
			// not distinguishable by timing, then record the failure.
			auth.VerifyPassword(auth.DummyHash, req.Password)
			h.failLogin(ctx, w, r, req.Username)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to look up account", err)
		return
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		h.failLogin(ctx, w, r, req.Username)
		return
	}

	if !user.IsActive {
		metrics.RecordAuthAttempt("inactive")
		respondError(w, http.StatusUnauthorized, models.ErrCodeAuthRequired, "Account is deactivated", nil)
		return
	}

	if h.lockout != nil {
		if err := h.lockout.RecordSuccessfulLogin(ctx, req.Username); err != nil {
			logging.Warn().Err(err).Msg("Failed to clear lockout state")
		}
	}

	tokens, err := h.auth.IssuePair(ctx, user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR", "Token issuance failed", err)
		return
	}

	metrics.RecordAuthAttempt("success")
	logging.Info().Int64("user_id", user.ID).Str("username", sanitizeLogValue(user.Username)).Msg("Login succeeded")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   tokens,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// failLogin records a failed attempt and answers with a uniform
// invalid-credentials response so usernames cannot be probed.
func (h *Handler) failLogin(ctx context.Context, w http.ResponseWriter, r *http.Request, username string) {
	metrics.RecordAuthAttempt("failure")
	logging.Warn().Str("username", sanitizeLogValue(username)).Str("remote_addr", clientIP(r)).Msg("Login failed")

	if h.lockout != nil {
		locked, remaining, err := h.lockout.RecordFailedAttempt(ctx, username, clientIP(r))
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to record login failure")
		} else if locked {
			respondLocked(w, remaining)
			return
		}
	}

	respondError(w, http.StatusUnauthorized, models.ErrCodeAuthRequired, "Invalid username or password", nil)
}

// respondLocked answers a locked-out subject with a Retry-After hint.
func respondLocked(w http.ResponseWriter, remaining time.Duration) {
	seconds := int(remaining.Seconds()) + 1
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	respondErrorDetails(w, http.StatusTooManyRequests, &models.APIError{
		Code:    models.ErrCodeRateLimited,
		Message: "Too many failed attempts, account temporarily locked",
		Details: map[string]interface{}{"retry_after_seconds": seconds},
	})
}

// clientIP returns the request's client address without the port. Chi's
// RealIP middleware has already resolved X-Forwarded-For upstream.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Refresh handles refresh token rotation
//
// @Summary Rotate a refresh token
// @Description Exchanges a single-use refresh token for a new token pair. The presented token is spent even when rotation fails.
// @Tags Auth
// @Accept json
// @Produce json
// @Param token body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.APIResponse{data=models.TokenResponse} "New token pair"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 401 {object} models.APIResponse "Unknown, expired, or already-used token"
// @Router /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	var req models.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx := r.Context()

	record, err := h.auth.Rotate(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshNotFound) || errors.Is(err, auth.ErrRefreshExpired) {
			respondError(w, http.StatusUnauthorized, models.ErrCodeAuthRequired, "Refresh token is invalid or expired", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR", "Token rotation failed", err)
		return
	}

	// Reload the user: role or active state may have changed since the
	// refresh token was issued.
	user, err := h.db.GetUserByID(ctx, record.UserID)
	if err != nil || !user.IsActive {
		respondError(w, http.StatusUnauthorized, models.ErrCodeAuthRequired, "Account is no longer active", nil)
		return
	}

	tokens, err := h.auth.IssuePair(ctx, user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR", "Token issuance failed", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   tokens,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// Verify reports the validity and claims of the presented access token
//
// @Summary Verify an access token
// @Description Returns the claims of the bearer token when it is valid; the auth middleware rejects invalid tokens with 401
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse "Token claims"
// @Failure 401 {object} models.APIResponse "Missing or invalid token"
// @Router /auth/verify [post]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	hctx := GetHandlerContext(r)
	if err := hctx.RequireAuthenticated(); err != nil {
		RespondAuthError(w, err)
		return
	}

	data := map[string]interface{}{
		"valid":    true,
		"user_id":  hctx.UserID,
		"username": hctx.Username,
		"role":     hctx.Role,
	}
	if hctx.Claims.ExpiresAt != nil {
		data["expires_at"] = hctx.Claims.ExpiresAt.Time
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Logout revokes refresh tokens
//
// @Summary Log out
// @Description Revokes the presented refresh token, or every token of the subject when the body is empty. Idempotent.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param token body models.RefreshRequest false "Refresh token to revoke"
// @Success 200 {object} models.APIResponse "Tokens revoked"
// @Failure 401 {object} models.APIResponse "Missing or invalid access token"
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	hctx := GetHandlerContext(r)
	if err := hctx.RequireAuthenticated(); err != nil {
		RespondAuthError(w, err)
		return
	}

	ctx := r.Context()
	revoked := 0

	// Body is optional: a specific refresh token revokes one session,
	// no body revokes them all.
	var req models.RefreshRequest
	if err := decodeOptionalJSON(r, &req); err == nil && req.RefreshToken != "" {
		if err := h.auth.RevokeToken(ctx, req.RefreshToken); err != nil {
			logging.Warn().Err(err).Msg("Refresh token revocation failed")
		} else {
			revoked = 1
		}
	} else {
		count, err := h.auth.RevokeUserTokens(ctx, hctx.UserID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "SERVICE_ERROR", "Failed to revoke tokens", err)
			return
		}
		revoked = count
	}

	logging.Info().Int64("user_id", hctx.UserID).Int("revoked", revoked).Msg("Logout")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"revoked": revoked,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// decodeOptionalJSON decodes a body that may legitimately be absent.
func decodeOptionalJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return errors.New("empty body")
	}
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(dst)
}

// Me returns the authenticated user's profile
//
// @Summary Current user profile
// @Description Returns the stored profile of the token's subject
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.User} "User profile"
// @Failure 401 {object} models.APIResponse "Missing or invalid token"
// @Failure 404 {object} models.APIResponse "Account no longer exists"
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !h.requireDB(w) {
		return
	}
	start := time.Now()

	hctx := GetHandlerContext(r)
	if err := hctx.RequireAuthenticated(); err != nil {
		RespondAuthError(w, err)
		return
	}

	user, err := h.db.GetUserByID(r.Context(), hctx.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Account not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load profile", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   user,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
