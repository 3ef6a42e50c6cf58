package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rs/xid"

	"github.com/burakyalinat/portfolio/internal/apperror"
	"github.com/burakyalinat/portfolio/internal/auth"
	"github.com/burakyalinat/portfolio/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthHandler manages sign-in and sign-out.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLoginPage      → render the username/password form
//   - HandleLogin          → check the credential, set the session cookie
//   - HandleLogout         → clear the session cookie
//   - HandleGitHubLogin    → redirect the browser to GitHub (optional)
//   - HandleGitHubCallback → finish GitHub sign-in (optional)
//
// DEPENDENCY CHAIN:
//   - auth   *service.AuthService   → credential rules, token issuing
//   - github *auth.GitHubProvider   → OAuth code exchange; nil disables it
type AuthHandler struct {
	auth   *service.AuthService
	github *auth.GitHubProvider
	render *Renderer
	cookie auth.CookieOptions
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil.
func NewAuthHandler(
	authService *service.AuthService,
	github *auth.GitHubProvider,
	render *Renderer,
	cookie auth.CookieOptions,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		github: github,
		render: render,
		cookie: cookie,
		logger: logger,
	}
}

// HandleLoginPage serves GET /login.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := auth.SafeRedirect(r.URL.Query().Get("next"), "")

	if _, ok := auth.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, auth.SafeRedirect(next, adminPath), http.StatusSeeOther)
		return
	}

	h.render.Render(w, r, http.StatusOK, "login", viewData{
		Title: "Giriş",
		Next:  next,
	})
}

// HandleLogin serves POST /login.
//
// ENUMERATION SAFETY:
// An unknown username and a wrong password produce the same response: the
// same notice, the same 303, the same Location. Only the log line differs.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	parseErr := r.ParseForm()

	// A malformed body still leaves r.Form with the pairs parsed before the
	// bad one, so "next" usually survives and both failure paths agree.
	next := auth.SafeRedirect(r.Form.Get("next"), "")
	if parseErr != nil {
		setFlash(w, flashError, apperror.Unauthorized().Message)
		http.Redirect(w, r, loginURL(next), http.StatusSeeOther)
		return
	}

	result, err := h.auth.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		msg := apperror.Unauthorized().Message
		if !errors.Is(err, apperror.ErrUnauthorized) {
			h.logger.Error("login error", slog.String("error", err.Error()))
			msg = "Something went wrong, please try again"
		}
		setFlash(w, flashError, msg)
		http.Redirect(w, r, loginURL(next), http.StatusSeeOther)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.cookie)
	setFlash(w, flashSuccess, "Signed in successfully")
	http.Redirect(w, r, auth.SafeRedirect(next, adminPath), http.StatusSeeOther)
}

// HandleLogout serves POST /logout.
//
// WHY POST AND NOT GET?
// Logout changes state. A GET could be triggered by a prefetch or an <img>
// tag on another site.
//
// Sessions are stateless, so "logout" means deleting the cookie. The token
// stays valid until it expires, but the browser no longer has it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookie)
	setFlash(w, flashSuccess, "Signed out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state goes into a short-lived cookie and into the GitHub URL.
// The callback only proceeds when both match, which proves this server
// started the flow.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		h.render.NotFound(w, r)
		return
	}

	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes GitHub sign-in.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub profile
//  3. Ask the service whether that account may administer the site
//  4. Set the session cookie and go to /admin
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		h.render.NotFound(w, r)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		h.loginFailed(w, r, apperror.Unauthorized().Message)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		h.loginFailed(w, r, "GitHub sign-in failed, please try again")
		return
	}

	result, err := h.auth.LoginGitHub(r.Context(), ghUser)
	if err != nil {
		h.loginFailed(w, r, apperror.Unauthorized().Message)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.cookie)
	setFlash(w, flashSuccess, "Signed in successfully")
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, msg string) {
	setFlash(w, flashError, msg)
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

func loginURL(next string) string {
	if next == "" {
		return auth.LoginPath
	}
	return auth.LoginPath + "?next=" + url.QueryEscape(next)
}
