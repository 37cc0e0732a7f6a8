package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsin/project-nourish/internal/access"
	"github.com/tahsin/project-nourish/internal/auth"
	"github.com/tahsin/project-nourish/internal/metrics"
	"github.com/tahsin/project-nourish/internal/model"
)

type stubRoles struct {
	roles map[string]model.Role
	err   error
}

func (s stubRoles) RoleFor(_ context.Context, identity *model.Identity) (model.Role, error) {
	if s.err != nil {
		return model.RoleNone, s.err
	}
	if identity == nil {
		return model.RoleNone, nil
	}
	return s.roles[identity.Subject], nil
}

func guardTestRouter(t *testing.T, roles access.RoleSource) (http.Handler, *auth.TokenService) {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)

	table := access.Table{
		{Path: "/api/admin/*", Authenticated: true, RequiredRole: model.RoleAdmin},
		{Path: "/api/me", Authenticated: true},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Resolved-Role", string(RoleFromContext(r.Context())))
		w.WriteHeader(http.StatusOK)
	})

	chain := auth.OptionalAuth(tokens)(Guard(table, roles, metrics.NewCollector(), logger)(final))
	return chain, tokens
}

func sessionRequest(t *testing.T, tokens *auth.TokenService, method, path, subject string) *http.Request {
	t.Helper()

	r := httptest.NewRequest(method, path, nil)
	if subject != "" {
		token, err := tokens.Generate(subject)
		require.NoError(t, err)
		r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	return r
}

func TestGuardAnonymousRedirectsToAuth(t *testing.T) {
	chain, tokens := guardTestRouter(t, stubRoles{})

	w := httptest.NewRecorder()
	chain.ServeHTTP(w, sessionRequest(t, tokens, http.MethodGet, "/api/admin/dashboard", ""))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, access.AuthRedirectTarget, w.Header().Get("Location"))
}

func TestGuardWrongRoleRedirectsToOwnHome(t *testing.T) {
	chain, tokens := guardTestRouter(t, stubRoles{roles: map[string]model.Role{"u1": model.RoleDonor}})

	w := httptest.NewRecorder()
	chain.ServeHTTP(w, sessionRequest(t, tokens, http.MethodGet, "/api/admin/dashboard", "u1"))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, model.RoleDonor.HomePage(), w.Header().Get("Location"))
}

func TestGuardMatchingRolePassesWithRoleInContext(t *testing.T) {
	chain, tokens := guardTestRouter(t, stubRoles{roles: map[string]model.Role{"u1": model.RoleAdmin}})

	w := httptest.NewRecorder()
	chain.ServeHTTP(w, sessionRequest(t, tokens, http.MethodGet, "/api/admin/dashboard", "u1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Header().Get("X-Resolved-Role"))
}

func TestGuardAnyAuthenticatedRoute(t *testing.T) {
	chain, tokens := guardTestRouter(t, stubRoles{roles: map[string]model.Role{"u1": model.RoleDonor}})

	w := httptest.NewRecorder()
	chain.ServeHTTP(w, sessionRequest(t, tokens, http.MethodGet, "/api/me", "u1"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardUnlistedPathIsPublic(t *testing.T) {
	chain, tokens := guardTestRouter(t, stubRoles{})

	w := httptest.NewRecorder()
	chain.ServeHTTP(w, sessionRequest(t, tokens, http.MethodGet, "/api/open", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(model.RoleNone), w.Header().Get("X-Resolved-Role"))
}

func TestGuardRoleLookupFailureFailsClosed(t *testing.T) {
	chain, tokens := guardTestRouter(t, stubRoles{err: errors.New("store down")})

	w := httptest.NewRecorder()
	chain.ServeHTTP(w, sessionRequest(t, tokens, http.MethodGet, "/api/admin/dashboard", "u1"))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, model.RoleNone.HomePage(), w.Header().Get("Location"),
		"a backend failure must never grant the wider role")
}

func TestRoleFromContextDefaultsToNone(t *testing.T) {
	assert.Equal(t, model.RoleNone, RoleFromContext(context.Background()))
}
