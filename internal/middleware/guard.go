package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tahsin/project-nourish/internal/access"
	"github.com/tahsin/project-nourish/internal/auth"
	"github.com/tahsin/project-nourish/internal/metrics"
	"github.com/tahsin/project-nourish/internal/model"
)

// requestSession adapts the identity already extracted from the session
// cookie into an access.SessionSource for one request.
type requestSession struct {
	identity *model.Identity
}

func (s requestSession) CurrentIdentity(_ context.Context) (*model.Identity, error) {
	return s.identity, nil
}

type roleContextKey struct{}

// RoleFromContext returns the role the guard resolved for this request.
func RoleFromContext(ctx context.Context) model.Role {
	if role, ok := ctx.Value(roleContextKey{}).(model.Role); ok {
		return role
	}
	return model.RoleNone
}

// Guard enforces the route table. Each request is one resolution pass:
// the resolver composes the session identity with a fresh role lookup
// (failing closed on backend errors), the guard evaluates the route, and
// a DeniedRedirect decision becomes an HTTP redirect. Allowed requests
// continue with the resolved role stored in the context.
func Guard(table access.Table, roles access.RoleSource, collector *metrics.Collector, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := auth.IdentityFromContext(r.Context())

			resolver := access.NewResolver(requestSession{identity: identity}, roles, logger)
			snap := resolver.Refresh(r.Context())

			route, _ := table.Lookup(r.URL.Path)
			decision := access.Evaluate(route, snap.Identity, snap.Role)

			switch decision.State {
			case access.StateAllowed:
				ctx := context.WithValue(r.Context(), roleContextKey{}, snap.Role)
				next.ServeHTTP(w, r.WithContext(ctx))
			case access.StateDeniedRedirect:
				if collector != nil {
					collector.RecordDenied()
				}
				logger.Info("access denied",
					slog.String("path", r.URL.Path),
					slog.String("role", string(snap.Role)),
					slog.String("target", decision.Target),
				)
				http.Redirect(w, r, decision.Target, http.StatusFound)
			default:
				// Pending never escapes Evaluate; treat it as a fault.
				http.Error(w, "access evaluation incomplete", http.StatusInternalServerError)
			}
		})
	}
}
