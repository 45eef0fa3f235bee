// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides config file discovery when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are checked in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinetrack/config.yaml",
	"/etc/cinetrack/config.yml",
}

// sliceConfigPaths are koanf keys whose env values are comma-separated
// lists. Env providers deliver them as single strings; Load re-splits them
// before unmarshaling.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// Defaults returns the built-in configuration. Every field has a workable
// value except Security.JWTSecret, which validation requires.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            1895,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/cinetrack.duckdb",
			MaxMemory:              "2GB",
			Threads:                0,
			PreserveInsertionOrder: true,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
			TrustedProxies:  []string{},
			Casbin: CasbinConfig{
				DefaultRole:    "viewer",
				ReloadInterval: 30 * time.Second,
				CacheEnabled:   true,
				CacheTTL:       5 * time.Minute,
			},
		},
		TokenStore: TokenStoreConfig{
			Backend:    "badger",
			Path:       "/data/tokens",
			GCInterval: time.Hour,
		},
		Events: EventsConfig{
			Enabled:                 false,
			URL:                     "nats://127.0.0.1:4222",
			StoreDir:                "/data/nats/jetstream",
			MaxMemory:               256 * 1024 * 1024,
			MaxStore:                1024 * 1024 * 1024,
			StreamRetentionDays:     7,
			MaxReconnects:           5,
			ReconnectWait:           2 * time.Second,
			BreakerFailureThreshold: 5,
			BreakerOpenTimeout:      30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the effective configuration from three layers, later layers
// overriding earlier ones:
//
//  1. built-in defaults
//  2. YAML config file (CONFIG_PATH or the first DefaultConfigPaths hit)
//  3. environment variables
//
// The result is validated before return.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	processSliceFields(k)

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the config file to load, or "" when none exists.
// CONFIG_PATH wins when it points at an existing file; otherwise the
// default paths are searched in order.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps flat environment variable names onto koanf paths.
// Unmapped variables return "" and are ignored, so unrelated environment
// noise (PATH, HOME, ...) never leaks into the config tree.
func envTransformFunc(s string) string {
	mappings := map[string]string{
		"HTTP_PORT":                 "server.port",
		"HTTP_HOST":                 "server.host",
		"HTTP_TIMEOUT":              "server.timeout",
		"SHUTDOWN_TIMEOUT":          "server.shutdown_timeout",
		"ENVIRONMENT":               "server.environment",
		"DUCKDB_PATH":               "database.path",
		"DUCKDB_MAX_MEMORY":         "database.max_memory",
		"DUCKDB_THREADS":            "database.threads",
		"SEED_DEMO_DATA":            "database.seed_demo_data",
		"SEED_RESET":                "database.seed_reset",
		"API_DEFAULT_PAGE_SIZE":     "api.default_page_size",
		"API_MAX_PAGE_SIZE":         "api.max_page_size",
		"JWT_SECRET":                "security.jwt_secret",
		"ACCESS_TOKEN_TTL":          "security.access_token_ttl",
		"REFRESH_TOKEN_TTL":         "security.refresh_token_ttl",
		"ADMIN_USERNAME":            "security.admin_username",
		"ADMIN_PASSWORD":            "security.admin_password",
		"RATE_LIMIT_REQS":           "security.rate_limit_reqs",
		"RATE_LIMIT_WINDOW":         "security.rate_limit_window",
		"DISABLE_RATE_LIMIT":        "security.rate_limit_disabled",
		"CORS_ORIGINS":              "security.cors_origins",
		"TRUSTED_PROXIES":           "security.trusted_proxies",
		"CASBIN_MODEL_PATH":         "security.casbin.model_path",
		"CASBIN_POLICY_PATH":        "security.casbin.policy_path",
		"CASBIN_DEFAULT_ROLE":       "security.casbin.default_role",
		"CASBIN_AUTO_RELOAD":        "security.casbin.auto_reload",
		"CASBIN_RELOAD_INTERVAL":    "security.casbin.reload_interval",
		"CASBIN_CACHE_ENABLED":      "security.casbin.cache_enabled",
		"CASBIN_CACHE_TTL":          "security.casbin.cache_ttl",
		"TOKEN_STORE_BACKEND":       "token_store.backend",
		"TOKEN_STORE_PATH":          "token_store.path",
		"TOKEN_STORE_GC_INTERVAL":   "token_store.gc_interval",
		"EVENTS_ENABLED":            "events.enabled",
		"NATS_URL":                  "events.url",
		"NATS_EMBEDDED":             "events.embedded_server",
		"NATS_EMBEDDED_PORT":        "events.embedded_port",
		"NATS_STORE_DIR":            "events.store_dir",
		"NATS_MAX_MEMORY":           "events.max_memory",
		"NATS_MAX_STORE":            "events.max_store",
		"EVENTS_RETENTION_DAYS":     "events.stream_retention_days",
		"NATS_MAX_RECONNECTS":       "events.max_reconnects",
		"NATS_RECONNECT_WAIT":       "events.reconnect_wait",
		"EVENTS_BREAKER_THRESHOLD":  "events.breaker_failure_threshold",
		"EVENTS_BREAKER_OPEN_AFTER": "events.breaker_open_timeout",
		"LOG_LEVEL":                 "logging.level",
		"LOG_FORMAT":                "logging.format",
		"LOG_CALLER":                "logging.caller",
	}
	if path, ok := mappings[strings.ToUpper(s)]; ok {
		return path
	}
	return ""
}

// processSliceFields re-splits comma-separated env values for keys that
// unmarshal into []string.
func processSliceFields(k *koanf.Koanf) {
	for _, path := range sliceConfigPaths {
		raw := k.Get(path)
		s, ok := raw.(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		_ = k.Set(path, out)
	}
}
