// internal/auth/context.go
//
// Request-scoped identity.
//
// Context
// -------
// The access gate resolves proxy identity headers into a user row once per
// request and stashes the result here; settings handlers read it back
// instead of re-parsing headers.  Absence of an Identity means the request
// is an unauthenticated public-site visit.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package auth

import "context"

// Identity is the authenticated platform user attached to a request.
type Identity struct {
	UserID   int64
	Username string
	Email    string
	Name     string
}

// identityKey is unexported to avoid context-key collisions.
type identityKey struct{}

// WithIdentity returns a new context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// From extracts the Identity from ctx.  ok is false on public requests.
func From(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// UserID is a convenience accessor for handlers that only need the ID.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := From(ctx)
	return id.UserID, ok
}
