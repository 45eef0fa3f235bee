// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

// Package main provides the CineTrack HTTP server
//
// CineTrack is a movie watchlist and ratings service: a catalog of
// movies, genres, and streaming platforms with per-user watchlists,
// ratings, and reviews.
//
// @title CineTrack API
// @version 1.0
// @description Movie watchlist and ratings service
// @description
// @description ## Features
// @description
// @description - **Movie Catalog**: Movies with genres and streaming platform availability
// @description - **Watchlists**: Per-user named watchlists with bulk add and duplicate protection
// @description - **Ratings**: 1-5 star ratings with live per-movie aggregates
// @description - **Reviews**: Titled reviews, one title per user per movie
// @description - **Live Activity Feed**: WebSocket stream of watchlist and rating activity
// @description - **Role-Based Access**: viewer, editor, and admin roles enforced per route
// @description
// @description ## Authentication
// @description
// @description Most write endpoints require a JWT access token in the Authorization header.
// @description Use `/api/v1/auth/login` to obtain a token pair, then send
// @description `Authorization: Bearer <access_token>` on subsequent requests.
// @description Refresh tokens are single-use; rotate them via `/api/v1/auth/refresh`.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address.
// @description Login and signup are limited more tightly; exceeded limits return
// @description HTTP 429 with error code `RATE_LIMIT_EXCEEDED`.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-08-26T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/cinetrack/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:1895
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token prefixed with "Bearer ". Obtain via /api/v1/auth/login.
//
// @tag.name Core
// @tag.description Health and readiness probes
//
// @tag.name Auth
// @tag.description Signup, login, token refresh, and session introspection
//
// @tag.name Catalog
// @tag.description Movies, genres, and streaming platforms
//
// @tag.name Watchlists
// @tag.description Per-user watchlists and their items
//
// @tag.name Ratings
// @tag.description Star ratings and per-movie aggregates
//
// @tag.name Reviews
// @tag.description Written reviews
//
// @tag.name Admin
// @tag.description User management, admin role required
//
// @tag.name Realtime
// @tag.description WebSocket activity feed
package main
