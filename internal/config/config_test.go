// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaults verifies the built-in configuration values.
func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 1895 {
		t.Errorf("Server.Port = %d, want 1895", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Server.Environment = %q, want development", cfg.Server.Environment)
	}

	if cfg.Database.Path != "/data/cinetrack.duckdb" {
		t.Errorf("Database.Path = %q, want /data/cinetrack.duckdb", cfg.Database.Path)
	}
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want 2GB", cfg.Database.MaxMemory)
	}
	if !cfg.Database.PreserveInsertionOrder {
		t.Error("Database.PreserveInsertionOrder should default to true")
	}

	if cfg.API.DefaultPageSize != 20 {
		t.Errorf("API.DefaultPageSize = %d, want 20", cfg.API.DefaultPageSize)
	}
	if cfg.API.MaxPageSize != 100 {
		t.Errorf("API.MaxPageSize = %d, want 100", cfg.API.MaxPageSize)
	}

	if cfg.Security.AccessTokenTTL != 15*time.Minute {
		t.Errorf("Security.AccessTokenTTL = %v, want 15m", cfg.Security.AccessTokenTTL)
	}
	if cfg.Security.RefreshTokenTTL != 168*time.Hour {
		t.Errorf("Security.RefreshTokenTTL = %v, want 168h", cfg.Security.RefreshTokenTTL)
	}
	if cfg.Security.RateLimitReqs != 100 {
		t.Errorf("Security.RateLimitReqs = %d, want 100", cfg.Security.RateLimitReqs)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Security.Casbin.DefaultRole != "viewer" {
		t.Errorf("Casbin.DefaultRole = %q, want viewer", cfg.Security.Casbin.DefaultRole)
	}

	if cfg.TokenStore.Backend != "badger" {
		t.Errorf("TokenStore.Backend = %q, want badger", cfg.TokenStore.Backend)
	}
	if cfg.TokenStore.GCInterval != time.Hour {
		t.Errorf("TokenStore.GCInterval = %v, want 1h", cfg.TokenStore.GCInterval)
	}

	if cfg.Events.Enabled {
		t.Error("Events.Enabled should default to false")
	}
	if cfg.Events.URL != "nats://127.0.0.1:4222" {
		t.Errorf("Events.URL = %q, want nats://127.0.0.1:4222", cfg.Events.URL)
	}
	if cfg.Events.StreamRetentionDays != 7 {
		t.Errorf("Events.StreamRetentionDays = %d, want 7", cfg.Events.StreamRetentionDays)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations.
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Server
		{"HTTP_PORT", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"HTTP_TIMEOUT", "server.timeout"},
		{"ENVIRONMENT", "server.environment"},

		// Database
		{"DUCKDB_PATH", "database.path"},
		{"DUCKDB_MAX_MEMORY", "database.max_memory"},
		{"SEED_DEMO_DATA", "database.seed_demo_data"},

		// API
		{"API_DEFAULT_PAGE_SIZE", "api.default_page_size"},
		{"API_MAX_PAGE_SIZE", "api.max_page_size"},

		// Security
		{"JWT_SECRET", "security.jwt_secret"},
		{"ACCESS_TOKEN_TTL", "security.access_token_ttl"},
		{"REFRESH_TOKEN_TTL", "security.refresh_token_ttl"},
		{"ADMIN_USERNAME", "security.admin_username"},
		{"RATE_LIMIT_REQS", "security.rate_limit_reqs"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"CASBIN_DEFAULT_ROLE", "security.casbin.default_role"},

		// Token store
		{"TOKEN_STORE_BACKEND", "token_store.backend"},
		{"TOKEN_STORE_PATH", "token_store.path"},

		// Events
		{"EVENTS_ENABLED", "events.enabled"},
		{"NATS_URL", "events.url"},
		{"NATS_EMBEDDED", "events.embedded_server"},
		{"EVENTS_RETENTION_DAYS", "events.stream_retention_days"},

		// Logging
		{"LOG_LEVEL", "logging.level"},
		{"LOG_FORMAT", "logging.format"},

		// Case insensitivity
		{"http_port", "server.port"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery.
func TestFindConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	}()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Run("no config file exists", func(t *testing.T) {
		os.Unsetenv(ConfigPathEnvVar)
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("server:\n  port: 1895\n"), 0644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		os.Unsetenv(ConfigPathEnvVar)
		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("server:\n  port: 9000\n"), 0644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)

		os.Setenv(ConfigPathEnvVar, customPath)
		defer os.Unsetenv(ConfigPathEnvVar)

		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH with non-existent file falls back", func(t *testing.T) {
		os.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		defer os.Unsetenv(ConfigPathEnvVar)

		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadEnvVars tests loading configuration from environment variables.
func TestLoadEnvVars(t *testing.T) {
	os.Clearenv()

	os.Setenv("JWT_SECRET", "test-secret-for-unit-tests-only-0123456789")
	os.Setenv("HTTP_PORT", "9000")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("DUCKDB_PATH", ":memory:")
	os.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	os.Setenv("TOKEN_STORE_BACKEND", "memory")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("Database.Path = %q, want :memory:", cfg.Database.Path)
	}
	if cfg.TokenStore.Backend != "memory" {
		t.Errorf("TokenStore.Backend = %q, want memory", cfg.TokenStore.Backend)
	}

	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i, origin := range want {
		if cfg.Security.CORSOrigins[i] != origin {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], origin)
		}
	}
}

// TestLoadConfigFile tests YAML file layering under env overrides.
func TestLoadConfigFile(t *testing.T) {
	os.Clearenv()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	yaml := `
server:
  port: 8080
  environment: development
database:
  path: ":memory:"
security:
  jwt_secret: "yaml-secret-for-unit-tests-only-0123456789"
token_store:
  backend: memory
logging:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(yaml), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	os.Setenv(ConfigPathEnvVar, configPath)
	os.Setenv("LOG_LEVEL", "error") // env must beat file
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 from file", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error from env override", cfg.Logging.Level)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
}

// TestValidate exercises the per-section validators.
func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Defaults()
		cfg.Security.JWTSecret = "test-secret-for-unit-tests-only-0123456789"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults with secret",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing JWT secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "" },
			wantErr: true,
		},
		{
			name: "short secret rejected in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.JWTSecret = "short"
			},
			wantErr: true,
		},
		{
			name: "short secret allowed in development",
			mutate: func(c *Config) {
				c.Security.JWTSecret = "short"
			},
			wantErr: false,
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "bad environment",
			mutate:  func(c *Config) { c.Server.Environment = "staging" },
			wantErr: true,
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "bad max memory",
			mutate:  func(c *Config) { c.Database.MaxMemory = "lots" },
			wantErr: true,
		},
		{
			name:    "memory path allowed",
			mutate:  func(c *Config) { c.Database.Path = ":memory:" },
			wantErr: false,
		},
		{
			name:    "max page below default",
			mutate:  func(c *Config) { c.API.MaxPageSize = 5 },
			wantErr: true,
		},
		{
			name: "refresh TTL must exceed access TTL",
			mutate: func(c *Config) {
				c.Security.AccessTokenTTL = time.Hour
				c.Security.RefreshTokenTTL = time.Minute
			},
			wantErr: true,
		},
		{
			name:    "admin username without password",
			mutate:  func(c *Config) { c.Security.AdminUsername = "admin" },
			wantErr: true,
		},
		{
			name: "admin password too short",
			mutate: func(c *Config) {
				c.Security.AdminUsername = "admin"
				c.Security.AdminPassword = "short"
			},
			wantErr: true,
		},
		{
			name: "admin credentials accepted",
			mutate: func(c *Config) {
				c.Security.AdminUsername = "admin"
				c.Security.AdminPassword = "correct-horse-battery"
			},
			wantErr: false,
		},
		{
			name:    "zero rate limit rejected when enabled",
			mutate:  func(c *Config) { c.Security.RateLimitReqs = 0 },
			wantErr: true,
		},
		{
			name: "zero rate limit fine when disabled",
			mutate: func(c *Config) {
				c.Security.RateLimitReqs = 0
				c.Security.RateLimitDisabled = true
			},
			wantErr: false,
		},
		{
			name:    "no CORS origins",
			mutate:  func(c *Config) { c.Security.CORSOrigins = nil },
			wantErr: true,
		},
		{
			name:    "bad default role",
			mutate:  func(c *Config) { c.Security.Casbin.DefaultRole = "superuser" },
			wantErr: true,
		},
		{
			name:    "model path without policy path",
			mutate:  func(c *Config) { c.Security.Casbin.ModelPath = "/etc/model.conf" },
			wantErr: true,
		},
		{
			name:    "auto reload without file policy",
			mutate:  func(c *Config) { c.Security.Casbin.AutoReload = true },
			wantErr: true,
		},
		{
			name:    "unknown token store backend",
			mutate:  func(c *Config) { c.TokenStore.Backend = "redis" },
			wantErr: true,
		},
		{
			name: "badger backend needs path",
			mutate: func(c *Config) {
				c.TokenStore.Backend = "badger"
				c.TokenStore.Path = ""
			},
			wantErr: true,
		},
		{
			name: "events enabled without URL or embedded server",
			mutate: func(c *Config) {
				c.Events.Enabled = true
				c.Events.URL = ""
			},
			wantErr: true,
		},
		{
			name: "events embedded server needs store dir",
			mutate: func(c *Config) {
				c.Events.Enabled = true
				c.Events.EmbeddedServer = true
				c.Events.StoreDir = ""
			},
			wantErr: true,
		},
		{
			name: "events valid embedded",
			mutate: func(c *Config) {
				c.Events.Enabled = true
				c.Events.EmbeddedServer = true
			},
			wantErr: false,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidMemorySize exercises the DuckDB memory limit parser.
func TestValidMemorySize(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2GB", true},
		{"512MB", true},
		{"1024KB", true},
		{"1TB", true},
		{"2gb", true},
		{" 2GB ", true},
		{"GB", false},
		{"2", false},
		{"2.5GB", false},
		{"lots", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := validMemorySize(tt.input); got != tt.want {
				t.Errorf("validMemorySize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
