package auth

import (
	"context"
	"net/http"

	"github.com/tahsin/project-nourish/internal/model"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the identity value.
type contextKey string

const identityKey contextKey = "identity"

// SessionCookieName is the HttpOnly cookie carrying the session JWT.
const SessionCookieName = "session"

// RequireAuth enforces authentication on protected routes. It reads the
// session cookie, validates the JWT, and stores the resolved identity in
// the request context. Missing or invalid tokens end the chain with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := extractIdentity(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthenticated","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the identity when a valid token is present but
// never blocks the request. Handlers on public routes check
// IdentityFromContext to distinguish anonymous callers.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, err := extractIdentity(r, tokens); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext retrieves the authenticated identity from the
// request context. Returns (nil, false) for anonymous requests.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*model.Identity)
	return id, ok && id != nil && id.Subject != ""
}

// extractIdentity reads the session cookie and validates the JWT it holds.
func extractIdentity(r *http.Request, tokens *TokenService) (*model.Identity, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		// http.ErrNoCookie — no session, just anonymous
		return nil, err
	}

	subject, err := tokens.Validate(cookie.Value)
	if err != nil {
		return nil, err
	}

	return &model.Identity{Subject: subject}, nil
}
