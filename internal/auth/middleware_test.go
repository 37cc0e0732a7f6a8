package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiddlewareTokens(t *testing.T) *TokenService {
	t.Helper()
	tokens, err := NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	return tokens
}

// echoSubject reports the identity RequireAuth/OptionalAuth stored.
func echoSubject(w http.ResponseWriter, r *http.Request) {
	if identity, ok := IdentityFromContext(r.Context()); ok {
		w.Header().Set("X-Subject", identity.Subject)
	}
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuthMissingCookie(t *testing.T) {
	tokens := newMiddlewareTokens(t)
	h := RequireAuth(tokens)(http.HandlerFunc(echoSubject))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("X-Subject"))
}

func TestRequireAuthInvalidToken(t *testing.T) {
	tokens := newMiddlewareTokens(t)
	h := RequireAuth(tokens)(http.HandlerFunc(echoSubject))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-jwt"})
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthValidSession(t *testing.T) {
	tokens := newMiddlewareTokens(t)
	h := RequireAuth(tokens)(http.HandlerFunc(echoSubject))

	token, err := tokens.Generate("u1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Header().Get("X-Subject"))
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	tokens := newMiddlewareTokens(t)
	h := OptionalAuth(tokens)(http.HandlerFunc(echoSubject))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Subject"))
}
