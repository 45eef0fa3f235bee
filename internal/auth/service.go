// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinetrack/internal/config"
	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/metrics"
	"github.com/tomtom215/cinetrack/internal/models"
)

// Service issues and rotates token pairs. It owns no user data: the
// caller authenticates the user (password check, activity check) and
// the service turns the authenticated user into tokens.
type Service struct {
	tokens     *TokenManager
	refresh    RefreshStore
	refreshTTL time.Duration
	log        zerolog.Logger
}

// NewService wires a token manager and refresh store into a service.
func NewService(tokens *TokenManager, refresh RefreshStore, cfg *config.SecurityConfig) *Service {
	return &Service{
		tokens:     tokens,
		refresh:    refresh,
		refreshTTL: cfg.RefreshTokenTTL,
		log:        logging.With().Str("component", "auth").Logger(),
	}
}

// IssuePair mints an access token and a fresh refresh token for user.
func (s *Service) IssuePair(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	access, expiresAt, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := NewRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &RefreshRecord{
		UserID:    user.ID,
		Username:  user.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.refresh.Save(ctx, refreshToken, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	metrics.RecordTokenIssued("access")
	metrics.RecordTokenIssued("refresh")

	return &models.TokenResponse{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
		Username:     user.Username,
		Role:         user.Role,
		UserID:       user.ID,
	}, nil
}

// Rotate consumes a presented refresh token and returns whose it was.
// The caller reloads the user (role and active flag may have changed
// since issue) and calls IssuePair for the replacement pair. The
// presented token is spent even when rotation ultimately fails.
func (s *Service) Rotate(ctx context.Context, presented string) (*RefreshRecord, error) {
	record, err := s.refresh.Redeem(ctx, presented)
	switch {
	case err == nil:
		metrics.RecordTokenRefresh("rotated")
		return record, nil
	case errors.Is(err, ErrRefreshExpired):
		metrics.RecordTokenRefresh("expired")
		return nil, err
	case errors.Is(err, ErrRefreshNotFound):
		metrics.RecordTokenRefresh("invalid")
		return nil, err
	default:
		metrics.RecordTokenRefresh("error")
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
}

// RevokeToken discards a refresh token on logout. Unknown tokens are
// ignored so logout stays idempotent.
func (s *Service) RevokeToken(ctx context.Context, token string) error {
	return s.refresh.Revoke(ctx, token)
}

// RevokeUserTokens discards every refresh token a user holds. Called
// when an account's role changes or it is deactivated, so stale
// sessions cannot re-mint tokens with the old privileges.
func (s *Service) RevokeUserTokens(ctx context.Context, userID int64) (int, error) {
	count, err := s.refresh.RevokeUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info().Int64("user_id", userID).Int("count", count).Msg("Revoked refresh tokens")
	}
	return count, nil
}

// ValidateAccess verifies an access token and returns its claims.
func (s *Service) ValidateAccess(token string) (*Claims, error) {
	return s.tokens.ValidateToken(token)
}

// TokenManager exposes the underlying manager for middleware wiring.
func (s *Service) TokenManager() *TokenManager {
	return s.tokens
}
