// internal/session/session.go
//
// Session cookie helpers.
//
// Context
//   The auth proxy owns authentication; this cookie only persists the
//   resolved username between requests so the settings UI can greet the
//   user without a store round-trip.  It is deliberately thin—the proxy
//   headers remain the source of truth on every request.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"
	"time"
)

const cookieName = "folio_session"

// Populate sets the session cookie for username.
//
// The gate invokes this after the identity headers are resolved to a user
// row.
func Populate(w http.ResponseWriter, r *http.Request, username string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    username,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// Clear removes the session cookie.
func Clear(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// CurrentUsername returns the username stored in the session, if any.
//
// ok == false when the cookie is missing or empty.
func CurrentUsername(r *http.Request) (username string, ok bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
