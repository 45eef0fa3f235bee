// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for operator errors. Messages name the
// environment variable that fixes the problem.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Database.validate(); err != nil {
		return err
	}
	if err := c.API.validate(); err != nil {
		return err
	}
	if err := c.Security.validate(c.Server.Environment); err != nil {
		return err
	}
	if err := c.TokenStore.validate(); err != nil {
		return err
	}
	if err := c.Events.validate(); err != nil {
		return err
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	return nil
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("server port must be 1-65535, got %d (HTTP_PORT)", c.Port)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %s (HTTP_TIMEOUT)", c.Timeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s (SHUTDOWN_TIMEOUT)", c.ShutdownTimeout)
	}
	switch c.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("environment must be development or production, got %q (ENVIRONMENT)", c.Environment)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path must not be empty (DUCKDB_PATH)")
	}
	if c.Threads < 0 {
		return fmt.Errorf("database threads must be >= 0, got %d (DUCKDB_THREADS)", c.Threads)
	}
	if c.MaxMemory != "" && !validMemorySize(c.MaxMemory) {
		return fmt.Errorf("database max memory must look like 512MB or 2GB, got %q (DUCKDB_MAX_MEMORY)", c.MaxMemory)
	}
	return nil
}

// validMemorySize accepts DuckDB memory limits of the form <digits><unit>
// where unit is KB, MB, GB or TB.
func validMemorySize(s string) bool {
	upper := strings.ToUpper(strings.TrimSpace(s))
	var unit string
	for _, u := range []string{"KB", "MB", "GB", "TB"} {
		if strings.HasSuffix(upper, u) {
			unit = u
			break
		}
	}
	if unit == "" {
		return false
	}
	digits := strings.TrimSuffix(upper, unit)
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c *APIConfig) validate() error {
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("default page size must be >= 1, got %d (API_DEFAULT_PAGE_SIZE)", c.DefaultPageSize)
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("max page size %d must be >= default page size %d (API_MAX_PAGE_SIZE)", c.MaxPageSize, c.DefaultPageSize)
	}
	return nil
}

func (c *SecurityConfig) validate(environment string) error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (JWT_SECRET)")
	}
	if environment == "production" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters in production, got %d (JWT_SECRET)", len(c.JWTSecret))
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("access token TTL must be positive, got %s (ACCESS_TOKEN_TTL)", c.AccessTokenTTL)
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("refresh token TTL %s must exceed access token TTL %s (REFRESH_TOKEN_TTL)", c.RefreshTokenTTL, c.AccessTokenTTL)
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return fmt.Errorf("admin username and password must be set together (ADMIN_USERNAME, ADMIN_PASSWORD)")
	}
	if c.AdminPassword != "" && len(c.AdminPassword) < 8 {
		return fmt.Errorf("admin password must be at least 8 characters (ADMIN_PASSWORD)")
	}
	if !c.RateLimitDisabled {
		if c.RateLimitReqs < 1 {
			return fmt.Errorf("rate limit requests must be >= 1, got %d (RATE_LIMIT_REQS)", c.RateLimitReqs)
		}
		if c.RateLimitWindow <= 0 {
			return fmt.Errorf("rate limit window must be positive, got %s (RATE_LIMIT_WINDOW)", c.RateLimitWindow)
		}
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin is required, use * to allow any (CORS_ORIGINS)")
	}
	return c.Casbin.validate()
}

func (c *CasbinConfig) validate() error {
	switch c.DefaultRole {
	case "viewer", "editor", "admin":
	default:
		return fmt.Errorf("casbin default role must be viewer, editor or admin, got %q (CASBIN_DEFAULT_ROLE)", c.DefaultRole)
	}
	// Model and policy overrides travel together; the embedded pair is
	// internally consistent but a custom model rarely matches the stock
	// policy shape.
	if (c.ModelPath == "") != (c.PolicyPath == "") {
		return fmt.Errorf("casbin model and policy paths must be set together (CASBIN_MODEL_PATH, CASBIN_POLICY_PATH)")
	}
	if c.AutoReload && c.PolicyPath == "" {
		return fmt.Errorf("casbin auto reload requires a file-based policy (CASBIN_POLICY_PATH)")
	}
	if c.AutoReload && c.ReloadInterval <= 0 {
		return fmt.Errorf("casbin reload interval must be positive, got %s (CASBIN_RELOAD_INTERVAL)", c.ReloadInterval)
	}
	if c.CacheEnabled && c.CacheTTL <= 0 {
		return fmt.Errorf("casbin cache TTL must be positive, got %s (CASBIN_CACHE_TTL)", c.CacheTTL)
	}
	return nil
}

func (c *TokenStoreConfig) validate() error {
	switch c.Backend {
	case "badger":
		if c.Path == "" {
			return fmt.Errorf("token store path is required for the badger backend (TOKEN_STORE_PATH)")
		}
	case "memory":
	default:
		return fmt.Errorf("token store backend must be badger or memory, got %q (TOKEN_STORE_BACKEND)", c.Backend)
	}
	if c.GCInterval <= 0 {
		return fmt.Errorf("token store GC interval must be positive, got %s (TOKEN_STORE_GC_INTERVAL)", c.GCInterval)
	}
	return nil
}

func (c *EventsConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if !c.EmbeddedServer && c.URL == "" {
		return fmt.Errorf("events URL is required when no embedded server runs (NATS_URL)")
	}
	if c.EmbeddedServer && c.StoreDir == "" {
		return fmt.Errorf("embedded NATS store directory is required (NATS_STORE_DIR)")
	}
	if c.StreamRetentionDays < 1 {
		return fmt.Errorf("event retention must be >= 1 day, got %d (EVENTS_RETENTION_DAYS)", c.StreamRetentionDays)
	}
	if c.BreakerFailureThreshold < 1 {
		return fmt.Errorf("breaker failure threshold must be >= 1, got %d (EVENTS_BREAKER_THRESHOLD)", c.BreakerFailureThreshold)
	}
	if c.BreakerOpenTimeout <= 0 {
		return fmt.Errorf("breaker open timeout must be positive, got %s (EVENTS_BREAKER_OPEN_AFTER)", c.BreakerOpenTimeout)
	}
	return nil
}

func (c *LoggingConfig) validate() error {
	switch strings.ToLower(c.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be trace, debug, info, warn or error, got %q (LOG_LEVEL)", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q (LOG_FORMAT)", c.Format)
	}
	return nil
}
