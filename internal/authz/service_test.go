// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package authz

import (
	"errors"
	"net/http"
	"testing"

	"github.com/tomtom215/cinetrack/internal/auth"
	"github.com/tomtom215/cinetrack/internal/models"
)

// newTestService builds a service on the embedded policy.
func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(setupEnforcer(t))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return service
}

func claimsFor(role string) *auth.Claims {
	return &auth.Claims{UserID: 7, Username: "alice", Role: role}
}

func TestNewService_RequiresEnforcer(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Error("NewService(nil) did not fail")
	}
}

func TestService_CanAccess_AnonymousDefaultsToViewer(t *testing.T) {
	service := newTestService(t)

	allowed, err := service.CanAccess(nil, "/api/v1/movies", http.MethodGet)
	if err != nil {
		t.Fatalf("CanAccess() error = %v", err)
	}
	if !allowed {
		t.Error("anonymous catalog read denied; default role should grant it")
	}

	allowed, err = service.CanAccess(nil, "/api/v1/movies", http.MethodPost)
	if err != nil {
		t.Fatalf("CanAccess() error = %v", err)
	}
	if allowed {
		t.Error("anonymous catalog write allowed")
	}
}

func TestService_CanAccess_RoleLadder(t *testing.T) {
	service := newTestService(t)

	tests := []struct {
		name   string
		role   string
		method string
		path   string
		want   bool
	}{
		{"viewer browses movies", models.RoleViewer, http.MethodGet, "/api/v1/movies", true},
		{"viewer rates", models.RoleViewer, http.MethodPost, "/api/v1/movies/42/rate", true},
		{"viewer cannot add movies", models.RoleViewer, http.MethodPost, "/api/v1/movies", false},
		{"viewer cannot reach admin", models.RoleViewer, http.MethodGet, "/api/v1/admin/users", false},
		{"editor adds movies", models.RoleEditor, http.MethodPost, "/api/v1/movies", true},
		{"editor updates genre", models.RoleEditor, http.MethodPut, "/api/v1/genres/5", true},
		{"editor cannot reach admin", models.RoleEditor, http.MethodPut, "/api/v1/admin/users/3/role", false},
		{"admin changes roles", models.RoleAdmin, http.MethodPut, "/api/v1/admin/users/3/role", true},
		{"admin inherits catalog writes", models.RoleAdmin, http.MethodDelete, "/api/v1/movies/42", true},
		{"unknown role denied everywhere", "superuser", http.MethodGet, "/api/v1/movies", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := service.CanAccess(claimsFor(tt.role), tt.path, tt.method)
			if err != nil {
				t.Fatalf("CanAccess() error = %v", err)
			}
			if allowed != tt.want {
				t.Errorf("CanAccess(%s, %s %s) = %v, want %v",
					tt.role, tt.method, tt.path, allowed, tt.want)
			}
		})
	}
}

func TestService_CanModify(t *testing.T) {
	service := newTestService(t)
	const ownerID = int64(7)

	tests := []struct {
		name   string
		claims *auth.Claims
		want   bool
	}{
		{"owner", &auth.Claims{UserID: 7, Username: "alice", Role: models.RoleViewer}, true},
		{"other viewer", &auth.Claims{UserID: 8, Username: "bob", Role: models.RoleViewer}, false},
		{"editor bypass", &auth.Claims{UserID: 8, Username: "bob", Role: models.RoleEditor}, true},
		{"admin bypass", &auth.Claims{UserID: 9, Username: "carol", Role: models.RoleAdmin}, true},
		{"nil claims", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.CanModify(tt.claims, ownerID); got != tt.want {
				t.Errorf("CanModify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestService_ValidateRoleChange(t *testing.T) {
	service := newTestService(t)
	admin := &auth.Claims{UserID: 1, Username: "root", Role: models.RoleAdmin}

	tests := []struct {
		name    string
		actor   *auth.Claims
		target  int64
		newRole string
		wantErr error
	}{
		{"nil actor", nil, 2, models.RoleEditor, ErrNilSubject},
		{"invalid role", admin, 2, "overlord", ErrInvalidRole},
		{"self change", admin, 1, models.RoleViewer, ErrSelfRoleChange},
		{"viewer actor", claimsFor(models.RoleViewer), 2, models.RoleEditor, ErrAdminRequired},
		{"editor actor", claimsFor(models.RoleEditor), 2, models.RoleEditor, ErrAdminRequired},
		{"admin promotes", admin, 2, models.RoleEditor, nil},
		{"admin demotes", admin, 2, models.RoleViewer, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateRoleChange(tt.actor, tt.target, tt.newRole)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRoleChange() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
