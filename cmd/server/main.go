// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/cinetrack/docs" // Import generated swagger docs
	"github.com/tomtom215/cinetrack/internal/api"
	"github.com/tomtom215/cinetrack/internal/auth"
	"github.com/tomtom215/cinetrack/internal/authz"
	"github.com/tomtom215/cinetrack/internal/config"
	"github.com/tomtom215/cinetrack/internal/database"
	"github.com/tomtom215/cinetrack/internal/events"
	"github.com/tomtom215/cinetrack/internal/logging"
	"github.com/tomtom215/cinetrack/internal/supervisor"
	"github.com/tomtom215/cinetrack/internal/supervisor/services"
	ws "github.com/tomtom215/cinetrack/internal/websocket"
)

// demoPassword is the shared password for the seeded demo accounts.
// Only hashed and written when DATABASE_SEED_DEMO_DATA=true.
const demoPassword = "cinetrack-demo"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting CineTrack with supervisor tree")

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("token_store", cfg.TokenStore.Backend).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Configuration loaded")

	// Initialize database (runs embedded schema migrations)
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap the admin account when configured. An existing user with
	// that name is never modified.
	if cfg.Security.AdminUsername != "" {
		adminHash, err := auth.HashPassword(cfg.Security.AdminPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to hash admin password")
		}
		adminEmail := cfg.Security.AdminUsername + "@cinetrack.example"
		if err := db.EnsureAdminUser(ctx, cfg.Security.AdminUsername, adminEmail, adminHash); err != nil {
			logging.Fatal().Err(err).Msg("Failed to bootstrap admin user")
		}
	} else {
		logging.Warn().Msg("No admin account configured (ADMIN_USERNAME/ADMIN_PASSWORD) - role changes require an existing admin")
	}

	// Seed demo data if enabled (demo accounts, public-domain catalog)
	if cfg.Database.SeedDemoData {
		logging.Info().Msg("Demo data seeding enabled (SEED_DEMO_DATA=true)")
		demoHash, err := auth.HashPassword(demoPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to hash demo password")
		}
		if err := db.SeedDemoData(ctx, demoHash); err != nil {
			// Close database before fatal exit to ensure defer runs
			if closeErr := db.Close(); closeErr != nil {
				logging.Error().Err(closeErr).Msg("Error closing database")
			}
			logging.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	// Token manager signs and validates JWTs
	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token manager")
	}

	// Refresh store persists refresh tokens across restarts (badger) or
	// in memory (development)
	storeFactory, err := auth.NewRefreshStoreFactory(&cfg.TokenStore)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize refresh token store")
	}
	defer func() {
		if err := storeFactory.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing refresh token store")
		}
	}()
	refreshStore := storeFactory.CreateStore()
	if cfg.TokenStore.Backend == "memory" {
		logging.Warn().Msg("Refresh tokens are stored in memory and will not survive restarts (TOKEN_STORE_BACKEND=memory)")
	}

	authSvc := auth.NewService(tokens, refreshStore, &cfg.Security)
	logging.Info().Msg("JWT authentication enabled")

	// Failed-login lockout. Lockout state is advisory, so the in-memory
	// store is used unconditionally.
	lockoutCfg := auth.DefaultLockoutConfig()
	lockoutStore := auth.NewMemoryLockoutStore()
	lockout := auth.NewLockoutManager(lockoutStore, lockoutCfg)

	// Casbin RBAC enforcer; with no paths configured it runs from the
	// embedded model and policy
	enforcer, err := authz.NewEnforcer(ctx, &authz.EnforcerConfig{
		ModelPath:      cfg.Security.Casbin.ModelPath,
		PolicyPath:     cfg.Security.Casbin.PolicyPath,
		AutoReload:     cfg.Security.Casbin.AutoReload,
		ReloadInterval: cfg.Security.Casbin.ReloadInterval,
		DefaultRole:    cfg.Security.Casbin.DefaultRole,
		CacheEnabled:   cfg.Security.Casbin.CacheEnabled,
		CacheTTL:       cfg.Security.Casbin.CacheTTL,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	authzSvc, err := authz.NewService(enforcer)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization service")
	}
	logging.Info().Msg("Role-based authorization enabled")

	// Event bus for the activity feed: in-process by default, NATS
	// JetStream when enabled
	bus, err := events.NewBus(ctx, &cfg.Events)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}
	logging.Info().Str("mode", bus.Mode()).Msg("Event bus initialized")

	// WebSocket hub and the bridge that feeds it from the bus
	wsHub := ws.NewHub()
	bridge, err := ws.NewActivityBridge(wsHub, bus)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize activity bridge")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
		logging.Warn().Msg("This should only be used for test environments!")
	}

	// Warn about wildcard CORS: with Bearer auth it mostly enables
	// credential-less reads, but locking it down is still the right call
	// in production.
	if cfg.Server.Environment == "production" {
		for _, origin := range cfg.Security.CORSOrigins {
			if origin == "*" {
				logging.Warn().Msg("============================================================")
				logging.Warn().Msg("  SECURITY WARNING: CORS is configured with wildcard origin (CORS_ORIGINS=*)")
				logging.Warn().Msg("  ")
				logging.Warn().Msg("  This allows ANY website to make cross-origin requests to your API.")
				logging.Warn().Msg("  RECOMMENDED: Set specific origins in production:")
				logging.Warn().Msg("    CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com")
				logging.Warn().Msg("============================================================")
				break
			}
		}
	}

	handler := api.NewHandler(db, cfg, authSvc, authzSvc, lockout, bus, wsHub)

	chiMW := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, authSvc.TokenManager(), authz.NewMiddleware(authzSvc), chiMW)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	// Create supervisor tree
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer: store sweepers
	tree.AddDataService(services.NewCleanupService("token-store-gc", refreshStore, cfg.TokenStore.GCInterval))
	tree.AddDataService(services.NewCleanupService("lockout-sweep", lockoutStore, lockoutCfg.CleanupInterval))

	// Messaging layer: hub, bridge, and bus lifecycle
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(services.NewActivityBridgeService(bridge))
	tree.AddMessagingService(services.NewEventBusService(bus))
	logging.Info().Msg("WebSocket hub and activity bridge added to supervisor tree")

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
