// internal/gate/gate.go
//
// Access-control decision, one per inbound request.
//
// Context
// -------
// The gate sits in front of everything and decides, from headers and the
// tenant resolver alone, which of five outcomes a request gets:
//
//   - logout path           → pass through untouched (proxy owns it).
//   - identity headers set  → upsert user + profile, populate the session,
//     allow into the authenticated app.
//   - tenant match          → allow, render context attached to the request.
//   - reserved name         → 404.  "Exists but is not public" must never
//     turn into a login redirect.
//   - no match              → redirect to the auth-proxy logout URL, except
//     on the bare root path, which serves the public landing page.
//
// Failure semantics
// -----------------
// Fail closed.  Any unexpected error during upsert or resolution becomes
// the logout redirect; an error can never expose an authenticated view or
// a half-assembled tenant site.
package gate

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/folioworks/folio/internal/auth"
	"github.com/folioworks/folio/internal/metrics"
	"github.com/folioworks/folio/internal/profile"
	"github.com/folioworks/folio/internal/session"
	"github.com/folioworks/folio/internal/tenant"
	"github.com/folioworks/folio/internal/user"
)

// Identity headers injected by the upstream auth proxy.  Their values are
// trusted verbatim; token validation happened before they were set.
const (
	HeaderUsername = "x-username"
	HeaderEmail    = "x-authentik-email"
	HeaderName     = "x-authentik-name"
)

// Resolver is the slice of the tenant resolver the gate consumes.
type Resolver interface {
	Resolve(ctx context.Context, hostHeader string) (*tenant.Resolution, error)
}

// UserStore upserts platform users from proxy identity.
type UserStore interface {
	FirstOrCreate(ctx context.Context, username, email, name string) (*user.Record, error)
}

// ProfileStore upserts the profile row backing an authenticated user.
type ProfileStore interface {
	Ensure(ctx context.Context, userID int64, name string) (*profile.Record, error)
}

// Gate is the access-control middleware.
type Gate struct {
	resolver   Resolver
	users      UserStore
	profiles   ProfileStore
	logoutPath string
	logoutURL  string
}

// New wires a Gate from its collaborators and the platform logout config.
func New(r Resolver, u UserStore, p ProfileStore, logoutPath, logoutURL string) *Gate {
	return &Gate{resolver: r, users: u, profiles: p, logoutPath: logoutPath, logoutURL: logoutURL}
}

// resolutionKey carries the tenant resolution for public-site handlers.
type resolutionKey struct{}

// ResolutionFrom returns the tenant resolution attached by the gate, if
// the request was a public-site match.
func ResolutionFrom(ctx context.Context) (*tenant.Resolution, bool) {
	res, ok := ctx.Value(resolutionKey{}).(*tenant.Resolution)
	return res, ok
}

// Middleware returns the chi-compatible decision wrapper.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == g.logoutPath {
			next.ServeHTTP(w, r)
			return
		}

		if username := r.Header.Get(HeaderUsername); username != "" && r.Header.Get(HeaderEmail) != "" {
			g.authenticated(w, r, next, username)
			return
		}

		g.public(w, r, next)
	})
}

// authenticated handles requests carrying proxy identity headers.
func (g *Gate) authenticated(w http.ResponseWriter, r *http.Request, next http.Handler, username string) {
	email := r.Header.Get(HeaderEmail)
	name := r.Header.Get(HeaderName)

	u, err := g.users.FirstOrCreate(r.Context(), username, email, name)
	if err != nil {
		g.failClosed(w, r, "user upsert", err)
		return
	}
	if _, err := g.profiles.Ensure(r.Context(), u.ID, name); err != nil {
		g.failClosed(w, r, "profile upsert", err)
		return
	}

	session.Populate(w, r, username)
	metrics.GateDecisionsTotal.WithLabelValues("allow").Inc()

	ctx := auth.WithIdentity(r.Context(), auth.Identity{
		UserID:   u.ID,
		Username: username,
		Email:    email,
		Name:     name,
	})
	next.ServeHTTP(w, r.WithContext(ctx))
}

// public handles anonymous requests through the tenant resolver.
func (g *Gate) public(w http.ResponseWriter, r *http.Request, next http.Handler) {
	res, err := g.resolver.Resolve(r.Context(), r.Host)
	if err != nil {
		g.failClosed(w, r, "tenant resolution", err)
		return
	}

	switch {
	case res.Category.Matched():
		metrics.GateDecisionsTotal.WithLabelValues("public").Inc()
		ctx := context.WithValue(r.Context(), resolutionKey{}, res)
		next.ServeHTTP(w, r.WithContext(ctx))

	case res.Category == tenant.Reserved:
		metrics.GateDecisionsTotal.WithLabelValues("not_found").Inc()
		http.NotFound(w, r)

	case r.URL.Path == "/":
		// Root of an unmatched host serves the landing page; forcing
		// login here would hide the marketing site.
		metrics.GateDecisionsTotal.WithLabelValues("landing").Inc()
		next.ServeHTTP(w, r)

	default:
		metrics.GateDecisionsTotal.WithLabelValues("logout").Inc()
		http.Redirect(w, r, g.logoutURL, http.StatusFound)
	}
}

// failClosed logs the failure and redirects to the logout URL.
func (g *Gate) failClosed(w http.ResponseWriter, r *http.Request, stage string, err error) {
	zap.S().Errorw("gate fail-closed", "stage", stage, "host", r.Host, "err", err)
	metrics.GateDecisionsTotal.WithLabelValues("logout").Inc()
	http.Redirect(w, r, g.logoutURL, http.StatusFound)
}
