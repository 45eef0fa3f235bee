// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

/*
Package main is the entry point for the CineTrack server application.

CineTrack is a self-hosted movie watchlist and ratings service. It keeps
a catalog of movies, genres, and streaming platforms, and lets each user
maintain named watchlists, star ratings, and written reviews, with a
live WebSocket feed of watchlist and rating activity.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("cinetrack")
	├── DataSupervisor ("data-layer")
	│   ├── token-store-gc (refresh token sweeper)
	│   └── lockout-sweep (failed-login entry sweeper)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (live activity feed)
	│   ├── Activity Bridge (event bus -> hub)
	│   └── Event Bus (in-process or NATS JetStream)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (Chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB with embedded schema migrations
 4. Admin bootstrap and optional demo-data seeding
 5. Authentication: JWT token manager, refresh store, lockout manager
 6. Authorization: Casbin RBAC enforcer (embedded model and policy)
 7. Event bus: in-process by default, NATS JetStream when enabled
 8. WebSocket Hub and activity bridge
 9. Supervisor Tree: Suture v4 process supervision
 10. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	SERVER_PORT=1895             # HTTP server port
	LOGGING_LEVEL=info           # trace, debug, info, warn, error
	LOGGING_FORMAT=json          # json or console

	# Security
	SECURITY_JWT_SECRET=<32+ chars>
	SECURITY_ADMIN_USERNAME=admin
	SECURITY_ADMIN_PASSWORD=<password>

	# Database
	DATABASE_PATH=/data/cinetrack.duckdb
	DATABASE_SEED_DEMO_DATA=false

	# Refresh token persistence
	TOKEN_STORE_BACKEND=badger   # badger or memory
	TOKEN_STORE_PATH=/data/tokens

	# Events (optional NATS JetStream)
	EVENTS_ENABLED=false
	EVENTS_URL=nats://127.0.0.1:4222
	EVENTS_EMBEDDED_SERVER=false

# Event Bus Modes

By default activity events flow through an in-process bus, which serves a
single instance with zero external dependencies. For multi-instance
deployments, enable NATS JetStream:

	# External NATS server
	export EVENTS_ENABLED=true EVENTS_URL=nats://nats:4222
	./cinetrack

	# Embedded NATS server (single binary, persistent stream)
	export EVENTS_ENABLED=true EVENTS_EMBEDDED_SERVER=true
	./cinetrack

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Broadcasts shutdown to WebSocket clients
 3. Waits for in-flight requests (10s timeout)
 4. Drains the event bus publishers
 5. Flushes pending writes and closes database
 6. Reports any services that failed to stop

# Usage Examples

Development:

	export SECURITY_JWT_SECRET=$(openssl rand -base64 32)
	export SECURITY_ADMIN_USERNAME=admin SECURITY_ADMIN_PASSWORD=dev-password-1
	export DATABASE_PATH=./cinetrack.duckdb TOKEN_STORE_BACKEND=memory
	go run ./cmd/server

Production:

	export SECURITY_JWT_SECRET=$(openssl rand -base64 32)
	export SECURITY_ADMIN_USERNAME=admin SECURITY_ADMIN_PASSWORD=secure-password
	export SECURITY_CORS_ORIGINS=https://cinetrack.example.com
	./cinetrack

Docker:

	docker run -d \
	  -e SECURITY_JWT_SECRET=xxx \
	  -e SECURITY_ADMIN_USERNAME=admin \
	  -e SECURITY_ADMIN_PASSWORD=xxx \
	  -v cinetrack-data:/data \
	  -p 1895:1895 \
	  ghcr.io/tomtom215/cinetrack

# API Documentation

Swagger documentation is available at /swagger/index.html when the server
is running. The API is organized into categories:

  - Core: Health and readiness probes
  - Auth: Signup, login, refresh, logout, session introspection
  - Catalog: Movies, genres, streaming platforms
  - Watchlists: Named lists, item add/remove, bulk add
  - Ratings and Reviews: Stars, aggregates, written reviews
  - Admin: User listing and role management
  - Realtime: WebSocket activity feed

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/events: Activity event bus
*/
package main
