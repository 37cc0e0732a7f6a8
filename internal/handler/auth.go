package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/auth"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/service"
)

const stateCookieName = "oauth_state"

// AuthHandler serves registration, login/logout, the GitHub OAuth flow
// and the current-profile endpoint.
type AuthHandler struct {
	svc    *service.AuthService
	roles  *service.RoleService
	github *auth.GitHubProvider
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, roles *service.RoleService, github *auth.GitHubProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, roles: roles, github: github, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Profile *model.Profile `json:"profile"`
	Role    model.Role     `json:"role"`
}

// HandleRegister creates an email/password account.
//
// HTTP: POST /auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, token, err := h.svc.Register(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, sessionResponse{Profile: profile, Role: model.RoleDonor})
}

// HandleLogin verifies credentials and issues the session cookie.
//
// HTTP: POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	role, err := h.roles.RoleFor(r.Context(), &model.Identity{Subject: profile.ID})
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse{Profile: profile, Role: role})
}

// HandleLogout clears the session cookie. The route is mounted behind
// RequireAuth, so anonymous callers are rejected with 401 before this
// runs.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		h.logger.Info("logout", slog.String("profileID", identity.Subject))
	}
	h.svc.Logout()
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// HandleMe returns the authenticated caller's profile and role.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("no active session"))
		return
	}

	profile, err := h.svc.Profile(r.Context(), identity.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	role, err := h.roles.RoleFor(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Profile: profile, Role: role})
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
// A random state nonce goes into a short-lived cookie and is checked on
// callback, so a forged callback cannot start a session.
//
// HTTP: GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback finishes the OAuth flow: verifies the state,
// exchanges the code, upserts the profile and issues the session cookie.
//
// HTTP: GET /auth/github/callback
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		writeError(w, apperror.Unauthenticated("OAuth state mismatch"))
		return
	}

	// One-shot nonce: clear it whether or not the exchange succeeds.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "missing authorization code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github exchange failed", slog.String("error", err.Error()))
		writeError(w, apperror.Unauthenticated("GitHub sign-in failed"))
		return
	}

	profile, token, err := h.svc.LoginGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, token)

	role, err := h.roles.RoleFor(r.Context(), &model.Identity{Subject: profile.ID})
	if err != nil {
		role = model.RoleNone
	}
	http.Redirect(w, r, role.HomePage(), http.StatusFound)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
