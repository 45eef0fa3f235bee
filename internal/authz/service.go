// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package authz

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/cinetrack/internal/auth"
	"github.com/tomtom215/cinetrack/internal/models"
)

// Service errors
var (
	// ErrNotAuthorized is returned when an action is denied.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrAdminRequired is returned when an admin-only action is attempted by non-admin.
	ErrAdminRequired = errors.New("admin role required")

	// ErrSelfRoleChange is returned when a user tries to change their own role.
	ErrSelfRoleChange = errors.New("cannot modify own role")

	// ErrNilSubject is returned when the request carries no claims.
	ErrNilSubject = errors.New("auth subject is nil")

	// ErrInvalidRole is returned when an invalid role is specified.
	ErrInvalidRole = errors.New("invalid role")
)

// Service answers the two authorization questions CineTrack has: may
// this ROLE touch this route (the Casbin policy), and may this USER
// touch this record (ownership with staff bypass). Roles travel inside
// the access token, so there is no per-request role lookup; a role
// change takes effect when the user next obtains a token.
type Service struct {
	enforcer *Enforcer
}

// NewService creates a new authorization service.
func NewService(enforcer *Enforcer) (*Service, error) {
	if enforcer == nil {
		return nil, errors.New("enforcer is required")
	}
	return &Service{enforcer: enforcer}, nil
}

// CanAccess checks whether the request's role may perform the method on
// the path. Requests without claims are evaluated as the default role,
// which is how public catalog reads pass through the same policy.
func (s *Service) CanAccess(claims *auth.Claims, path, method string) (bool, error) {
	role := s.enforcer.DefaultRole()
	if claims != nil && claims.Role != "" {
		role = claims.Role
	}
	action := methodToAction(method)

	start := time.Now()
	allowed, cacheHit, err := s.enforcer.enforce(role, path, action)
	if err != nil {
		RecordAuthzError("enforcer_error")
		return false, err
	}

	RecordAuthzDecision(role, path, action, allowed, time.Since(start), cacheHit)

	return allowed, nil
}

// CanModify reports whether the user may modify a record owned by
// ownerID. Owners modify their own watchlists, ratings, and reviews;
// editors and admins may modify anyone's.
func (s *Service) CanModify(claims *auth.Claims, ownerID int64) bool {
	if claims == nil {
		RecordOwnershipDecision("denied")
		return false
	}
	if claims.UserID == ownerID {
		RecordOwnershipDecision("owner")
		return true
	}
	if models.IsStaffRole(claims.Role) {
		RecordOwnershipDecision("staff_bypass")
		return true
	}
	RecordOwnershipDecision("denied")
	return false
}

// ValidateRoleChange checks that the actor may assign newRole to the
// target user. Only admins change roles, never their own: demoting
// yourself mid-session would strand the deployment without an admin.
func (s *Service) ValidateRoleChange(actor *auth.Claims, targetUserID int64, newRole string) error {
	if actor == nil {
		return ErrNilSubject
	}
	if !models.IsValidRole(newRole) {
		return ErrInvalidRole
	}
	if actor.UserID == targetUserID {
		return ErrSelfRoleChange
	}
	if actor.Role != models.RoleAdmin {
		return ErrAdminRequired
	}
	return nil
}

// Enforcer returns the underlying Casbin enforcer for advanced use cases.
// This should be used sparingly; prefer the service methods.
func (s *Service) Enforcer() *Enforcer {
	return s.enforcer
}

// methodToAction maps HTTP methods to policy actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
