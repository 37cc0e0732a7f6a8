// Package access decides, per route and per identity, whether to render,
// redirect, or keep waiting. It also owns the auth-event plumbing that
// re-resolves the session and role whenever the auth state changes.
//
// The guard itself is pure: Evaluate computes a (state, target) pair and
// performs no navigation. HTTP middleware in internal/server turns a
// DeniedRedirect decision into an actual redirect.
package access

import (
	"strings"

	"github.com/tahsin/project-nourish/internal/model"
)

// State is the guard's position for one render pass.
type State int

const (
	// StatePending means identity or role resolution has not completed.
	StatePending State = iota
	// StateAllowed means the route may render.
	StateAllowed
	// StateDeniedRedirect means the caller must be sent to Decision.Target.
	StateDeniedRedirect
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAllowed:
		return "allowed"
	case StateDeniedRedirect:
		return "denied-redirect"
	default:
		return "invalid"
	}
}

// AuthRedirectTarget is where unauthenticated callers are sent.
const AuthRedirectTarget = "/auth"

// Route is one entry in the static route table.
//
// Three access levels exist:
//   - public: Authenticated is false (RequiredRole must be RoleNone)
//   - any authenticated role: Authenticated true, RequiredRole RoleNone
//   - one specific role: RequiredRole set (implies Authenticated)
type Route struct {
	Path          string
	Authenticated bool
	RequiredRole  model.Role
}

// Protected reports whether the route needs a session at all.
func (r Route) Protected() bool {
	return r.Authenticated || (r.RequiredRole != model.RoleNone && r.RequiredRole != "")
}

// Decision is the guard's output for one render pass. Target is set only
// when State is StateDeniedRedirect.
type Decision struct {
	State  State
	Target string
}

// Evaluate runs the guard state machine for one render pass.
//
// Transitions out of the initial pending state:
//   - public route → allowed, whoever is asking
//   - no identity → denied, redirect to /auth
//   - identity present, route needs no specific role → allowed
//   - identity present, role matches → allowed
//   - identity present, role differs (including unknown roles from a
//     corrupt store — the guard fails closed) → denied, redirect to the
//     home page for the role the caller actually holds
//
// Allowed and denied are terminal for this pass; a new pass starts whenever
// the resolver reports a changed identity or role.
func Evaluate(route Route, identity *model.Identity, role model.Role) Decision {
	if !route.Protected() {
		return Decision{State: StateAllowed}
	}

	if identity == nil {
		return Decision{State: StateDeniedRedirect, Target: AuthRedirectTarget}
	}

	required := route.RequiredRole
	if required == "" || required == model.RoleNone {
		return Decision{State: StateAllowed}
	}

	if role == required {
		return Decision{State: StateAllowed}
	}

	return Decision{State: StateDeniedRedirect, Target: role.HomePage()}
}

// Table is the application's static route table. Requirements are declared
// here once and consumed uniformly by the guard, instead of being inferred
// ad hoc at each call site.
type Table []Route

// Lookup returns the table entry for path. An entry whose Path ends in
// "/*" covers the subtree under it ("/api/donors/*" matches both
// "/api/donors" and "/api/donors/abc"); an exact entry wins over a
// wildcard, and the longest wildcard wins otherwise. Paths absent from
// the table are treated as public.
func (t Table) Lookup(path string) (Route, bool) {
	var (
		best    Route
		bestLen = -1
	)
	for _, r := range t {
		if r.Path == path {
			return r, true
		}
		if base, ok := strings.CutSuffix(r.Path, "/*"); ok {
			if (path == base || strings.HasPrefix(path, base+"/")) && len(base) > bestLen {
				best = r
				bestLen = len(base)
			}
		}
	}
	if bestLen >= 0 {
		return best, true
	}
	return Route{Path: path}, false
}
