// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

// Package authz provides authorization functionality using Casbin.
//
// This package implements Role-Based Access Control (RBAC) for CineTrack,
// enforcing the route policy on API endpoints with the Casbin authorization
// library. Three roles form a strict hierarchy: viewer (browse the catalog,
// manage own watchlists, ratings, and reviews), editor (viewer plus catalog
// maintenance), and admin (editor plus user administration).
//
// # Architecture
//
// Authorization runs after authentication:
//
//	Request -> auth.RequireAuth -> authz.Middleware.Authorize -> Handler
//	                |                        |
//	           Authenticate            Authorize (Casbin)
//	          (internal/auth)           (this package)
//
// On public route groups the middleware runs without RequireAuth in front
// of it; requests carrying no claims are evaluated as the default role,
// which is how anonymous catalog reads pass through the same policy.
//
// # Two Authorization Questions
//
// Route policy answers "may this role touch this surface" and is enforced
// by the middleware. Record ownership answers "may this user touch this
// record" and is checked in handlers via Service.CanModify: owners modify
// their own watchlists, ratings, and reviews; editors and admins may
// modify anyone's.
//
// # RBAC Model
//
// The embedded model uses role inheritance, keyMatch2 path patterns, and
// regexMatch actions:
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
//
// Policies are defined in CSV:
//
//	g, editor, viewer
//	g, admin, editor
//	p, viewer, /api/v1/movies, read
//	p, editor, /api/v1/movies/:id, (write|delete)
//	p, admin, /api/v1/admin/*, (read|write|delete)
//
// # Role Storage
//
// Roles live in the users table and travel inside the access token, so
// enforcement never looks up the database: the token's role is the Casbin
// subject. A role change takes effect when the user next obtains a token;
// the admin role-update handler revokes the target's refresh tokens so
// that happens within the access token TTL.
//
// # Usage
//
//	enforcer, err := authz.NewEnforcer(ctx, authz.DefaultEnforcerConfig())
//	if err != nil {
//	    return err
//	}
//	defer enforcer.Close()
//
//	service, err := authz.NewService(enforcer)
//	if err != nil {
//	    return err
//	}
//
//	r.Use(authz.NewMiddleware(service).Authorize)
//
// # HTTP Method Mapping
//
// The middleware maps HTTP methods to policy actions:
//   - GET, HEAD, OPTIONS -> "read"
//   - POST, PUT, PATCH -> "write"
//   - DELETE -> "delete"
//
// # Caching
//
// Decisions are cached per (role, path, action) with a configurable TTL.
// Subjects are roles rather than users, so the cache stays tiny and hot.
// The cache is cleared when the policy reloads.
//
// # See Also
//
//   - internal/auth: Authentication (runs before authorization)
//   - github.com/casbin/casbin/v2: Underlying authorization library
package authz
