package handler

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// FLASH NOTICES:
// A form post ends in a redirect (post/redirect/get), so the outcome of the
// post has to survive one extra request. It rides in a short-lived cookie
// that the next rendered page reads and deletes.

const flashCookie = "flash"

// Flash kinds, used as CSS class suffixes by the templates.
const (
	flashSuccess = "success"
	flashError   = "error"
)

// Flash is a one-time notice shown on the next page.
type Flash struct {
	Kind    string
	Message string
}

func setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name: flashCookie,
		// Cookie values cannot hold spaces, commas or non-ASCII text.
		Value:    kind + "." + base64.RawURLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending notice, if any, and deletes it.
// It must run before the response status is written.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	kind, encoded, ok := strings.Cut(c.Value, ".")
	if !ok || (kind != flashSuccess && kind != flashError) {
		return nil
	}
	msg, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(msg) == 0 {
		return nil
	}
	return &Flash{Kind: kind, Message: string(msg)}
}
