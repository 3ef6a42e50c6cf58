package auth

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// SessionCookie is the name of the cookie holding the session token.
const SessionCookie = "session"

// LoginPath is where anonymous requests to gated routes are sent.
const LoginPath = "/login"

// contextKey is unexported so no other package can read or overwrite the
// principal stored in a request context.
type contextKey string

const principalKey contextKey = "principal"

// CookieOptions controls the attributes of the session cookie.
type CookieOptions struct {
	// Secure should be true whenever the site is served over HTTPS.
	Secure bool
	MaxAge time.Duration
}

// SetSessionCookie stores token in an HttpOnly cookie.
//
// HttpOnly keeps the token away from JavaScript (XSS). SameSite=Lax stops
// the browser from attaching it to cross-site form posts (CSRF on the admin
// forms).
func SetSessionCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie deletes the session cookie. The token itself stays
// valid until it expires, but the browser no longer has it.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth gates a route group behind a valid session.
//
// Anonymous requests never reach the handler. They are redirected to the
// login page with 303 See Other; GET requests carry their path in "next" so
// the login form can send the admin back afterwards.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := extractPrincipal(r, tokens)
			if err != nil {
				target := LoginPath
				if r.Method == http.MethodGet {
					target += "?next=" + url.QueryEscape(r.URL.RequestURI())
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth records the principal when a valid session is present but
// never blocks. Public pages use it to show the admin links.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principal, err := extractPrincipal(r, tokens); err == nil {
				r = r.WithContext(WithPrincipal(r.Context(), principal))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal returns a copy of ctx carrying principal.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromContext returns ("", false) for anonymous requests.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(principalKey).(string)
	return p, ok && p != ""
}

func extractPrincipal(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}

// SafeRedirect returns next if it is a local path, otherwise fallback.
// It stops the login form's "next" parameter from being used as an open
// redirect to another site.
//
// Browsers drop tabs and newlines from a Location before resolving it, so
// "/\t/evil.example" would act like "//evil.example". Any control character
// is therefore rejected outright.
func SafeRedirect(next, fallback string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return fallback
	}
	for i := 0; i < len(next); i++ {
		if next[i] < 0x20 || next[i] == 0x7f {
			return fallback
		}
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
