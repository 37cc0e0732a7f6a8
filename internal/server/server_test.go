package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsin/project-nourish/internal/model"
)

// Every protected route the router mounts must resolve to an entry in the
// route table with the access level the API documents.
func TestRouteTableCoversMountedRoutes(t *testing.T) {
	table := routeTable()

	anyAuthenticated := []string{
		"/api/me",
		"/api/certificates",
		"/api/certificates/abc123/print",
	}
	for _, path := range anyAuthenticated {
		route, ok := table.Lookup(path)
		require.True(t, ok, "no table entry covers %s", path)
		assert.True(t, route.Authenticated, "%s must require a session", path)
		assert.True(t, route.RequiredRole == "" || route.RequiredRole == model.RoleNone,
			"%s must not require a specific role", path)
	}

	roleBound := []struct {
		path     string
		wantRole model.Role
	}{
		{"/api/certificates/self", model.RoleDonor},
		{"/api/donations", model.RoleDonor},
		{"/api/donor/dashboard", model.RoleDonor},
		{"/api/admin/dashboard", model.RoleAdmin},
		{"/api/donors", model.RoleAdmin},
		{"/api/donors/abc123", model.RoleAdmin},
		{"/api/food-items/abc123", model.RoleAdmin},
		{"/api/storage/abc123", model.RoleAdmin},
		{"/api/distribution-events/abc123", model.RoleAdmin},
		{"/api/distribution-details/abc123", model.RoleAdmin},
	}
	for _, tt := range roleBound {
		route, ok := table.Lookup(tt.path)
		require.True(t, ok, "no table entry covers %s", tt.path)
		assert.True(t, route.Protected(), "%s must be protected", tt.path)
		assert.Equal(t, tt.wantRole, route.RequiredRole, "role for %s", tt.path)
	}
}

func TestRouteTablePublicPaths(t *testing.T) {
	table := routeTable()

	for _, path := range []string{"/healthz", "/metrics", "/auth/register", "/auth/login"} {
		route, ok := table.Lookup(path)
		assert.False(t, ok, "public path %s must not appear in the table", path)
		assert.False(t, route.Protected())
	}
}
