// internal/middleware/https.go
//
// HTTPS upgrade redirect.
//
// Folio terminates TLS at the edge proxy, so the scheme of the original
// request arrives in X-Forwarded-Proto.  When force_https is enabled the
// wrapper 308-redirects plain-HTTP requests to the HTTPS version of the
// same URL.  Localhost is exempt so dev loops keep working.
package middleware

import (
	"net/http"
	"strings"
)

// ForceHTTPS wraps h with the upgrade redirect.
func ForceHTTPS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isHTTPS(r) || stripPort(r.Host) == "localhost" {
			h.ServeHTTP(w, r)
			return
		}

		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

// isHTTPS reports whether the original request used TLS, directly or at
// the proxy.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
