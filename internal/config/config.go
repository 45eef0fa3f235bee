// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

// Package config loads and validates CineTrack configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables (highest priority).
package config

import "time"

// Config is the root configuration for the CineTrack service.
type Config struct {
	// Server holds HTTP server settings.
	Server ServerConfig `koanf:"server"`

	// Database holds DuckDB storage settings.
	Database DatabaseConfig `koanf:"database"`

	// API holds request handling defaults (pagination bounds).
	API APIConfig `koanf:"api"`

	// Security holds authentication, authorization and rate limit settings.
	Security SecurityConfig `koanf:"security"`

	// TokenStore holds refresh-token persistence settings.
	TokenStore TokenStoreConfig `koanf:"token_store"`

	// Events holds domain event publishing settings (NATS JetStream).
	Events EventsConfig `koanf:"events"`

	// Logging holds log output settings.
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the TCP port the HTTP server listens on.
	// Default: 1895, the year of the first public film screening.
	Port int `koanf:"port"`

	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Timeout bounds read/write on each request. Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is "development" or "production". Production enforces
	// stricter secret requirements at validation time.
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds DuckDB storage settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file path, or ":memory:" for ephemeral
	// storage (tests). Default: /data/cinetrack.duckdb
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage (e.g. "2GB"). Default: 2GB
	MaxMemory string `koanf:"max_memory"`

	// Threads sets DuckDB worker threads; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`

	// PreserveInsertionOrder keeps DuckDB's default result ordering
	// behavior. Disable to reduce memory on large scans.
	PreserveInsertionOrder bool `koanf:"preserve_insertion_order"`

	// SeedDemoData populates demo users, movies and watchlists at startup.
	// Idempotent; intended for demos and screenshot environments.
	SeedDemoData bool `koanf:"seed_demo_data"`

	// SeedReset drops previously seeded demo rows before reseeding.
	SeedReset bool `koanf:"seed_reset"`
}

// APIConfig holds request handling defaults.
type APIConfig struct {
	// DefaultPageSize is the page size applied when the client omits
	// a limit parameter. Default: 20
	DefaultPageSize int `koanf:"default_page_size"`

	// MaxPageSize is the largest accepted limit parameter. Default: 100
	MaxPageSize int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	// JWTSecret signs access tokens (HS256). Required; must be at least
	// 32 characters in production.
	JWTSecret string `koanf:"jwt_secret"`

	// AccessTokenTTL bounds access token lifetime. Default: 15m
	AccessTokenTTL time.Duration `koanf:"access_token_ttl"`

	// RefreshTokenTTL bounds refresh token lifetime. Default: 168h (7d)
	RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl"`

	// AdminUsername/AdminPassword bootstrap the initial admin account on
	// first startup when both are set. The password is bcrypt-hashed
	// before storage and never persisted in plain text.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	// RateLimitReqs is the number of requests allowed per window per
	// client. Default: 100
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window. Default: 1m
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns off request throttling entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`

	// CORSOrigins lists allowed origins; ["*"] allows any. Default: ["*"]
	CORSOrigins []string `koanf:"cors_origins"`

	// TrustedProxies lists upstream proxies whose X-Forwarded-For is
	// honored for client IP resolution.
	TrustedProxies []string `koanf:"trusted_proxies"`

	// Casbin configures the route-level RBAC enforcer.
	Casbin CasbinConfig `koanf:"casbin"`
}

// CasbinConfig configures the route-level RBAC enforcer.
type CasbinConfig struct {
	// ModelPath overrides the embedded Casbin model file.
	ModelPath string `koanf:"model_path"`

	// PolicyPath overrides the embedded policy CSV.
	PolicyPath string `koanf:"policy_path"`

	// DefaultRole is assigned to authenticated users without an explicit
	// role. Default: viewer
	DefaultRole string `koanf:"default_role"`

	// AutoReload re-reads a file-based policy on an interval.
	AutoReload bool `koanf:"auto_reload"`

	// ReloadInterval is the policy reload cadence. Default: 30s
	ReloadInterval time.Duration `koanf:"reload_interval"`

	// CacheEnabled caches enforcement decisions.
	CacheEnabled bool `koanf:"cache_enabled"`

	// CacheTTL bounds cached decision lifetime. Default: 5m
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// TokenStoreConfig holds refresh-token persistence settings.
type TokenStoreConfig struct {
	// Backend selects the store implementation: "badger" (persistent,
	// default) or "memory" (tests, single-run demos).
	Backend string `koanf:"backend"`

	// Path is the BadgerDB directory for the badger backend.
	// Default: /data/tokens
	Path string `koanf:"path"`

	// GCInterval is how often expired tokens are swept. Default: 1h
	GCInterval time.Duration `koanf:"gc_interval"`
}

// EventsConfig holds domain event publishing settings.
type EventsConfig struct {
	// Enabled turns on mutation event publishing to NATS JetStream.
	// Default: false (the API is fully functional without a broker).
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server address. Ignored when EmbeddedServer is set.
	URL string `koanf:"url"`

	// EmbeddedServer runs an in-process NATS JetStream server, for
	// self-contained single-instance deployments.
	EmbeddedServer bool `koanf:"embedded_server"`

	// EmbeddedPort is the embedded server's client port. 0 picks a random
	// free port, which keeps the default from colliding with a standalone
	// NATS on 4222.
	EmbeddedPort int `koanf:"embedded_port"`

	// StoreDir is the JetStream storage directory for the embedded server.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory/MaxStore cap embedded JetStream resources (bytes).
	MaxMemory int64 `koanf:"max_memory"`
	MaxStore  int64 `koanf:"max_store"`

	// StreamRetentionDays bounds event stream retention. Default: 7
	StreamRetentionDays int `koanf:"stream_retention_days"`

	// MaxReconnects and ReconnectWait tune client reconnection.
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`

	// BreakerFailureThreshold is the consecutive publish failure count
	// that opens the circuit breaker. Default: 5
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold"`

	// BreakerOpenTimeout is how long the breaker stays open before a
	// half-open probe. Default: 30s
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" (production) or "console" (development).
	Format string `koanf:"format"`

	// Caller includes file:line in log output.
	Caller bool `koanf:"caller"`
}
