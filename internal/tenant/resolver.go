// internal/tenant/resolver.go
//
// Host → tenant resolution.
//
// Context
// -------
// Every unauthenticated request lands here with nothing but a Host header.
// The resolver answers "whose site is this?" by asking the profile store
// an ordered series of questions, first match wins:
//
//  1. Verified custom domain (pro plan, sharing on, ownership proven).
//  2. Shared subdomain (left-most host label against website_url).
//  3. Access token (same label against access_token, legacy entry path).
//  4. A row exists for the name but is not public → reserved.
//  5. Nothing → no-match.
//
// website_url is checked before access_token deliberately; when one string
// happens to match both columns the named subdomain wins and the token
// path never runs.
//
// Categories are the whole contract with the gate: reserved yields 404,
// no-match yields the logout redirect, a match carries a fully assembled
// render context.  Store errors propagate to the caller, which fails
// closed; they never turn into a silent no-match.
//
// Notes
// -----
//   - No caching here.  The store is the single authority; the only cache
//     in the pipeline is the verifier's canonical-address TTL.
package tenant

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/folioworks/folio/internal/content"
	"github.com/folioworks/folio/internal/metrics"
	"github.com/folioworks/folio/internal/plan"
	"github.com/folioworks/folio/internal/prefs"
	"github.com/folioworks/folio/internal/profile"
	"github.com/folioworks/folio/internal/verify"
)

// Category classifies a resolution outcome.
type Category int

const (
	NoMatch Category = iota
	CustomDomain
	Subdomain
	Token
	Reserved
)

// String returns the metric/log label for the category.
func (c Category) String() string {
	switch c {
	case CustomDomain:
		return "custom_domain"
	case Subdomain:
		return "subdomain"
	case Token:
		return "token"
	case Reserved:
		return "reserved"
	default:
		return "no_match"
	}
}

// Matched reports whether the category carries a tenant site.
func (c Category) Matched() bool {
	return c == CustomDomain || c == Subdomain || c == Token
}

// RenderContext is everything a downstream renderer needs for a public
// site: identity, active template and palette, visible content, and the
// plan tier (templates expose premium features conditionally).
type RenderContext struct {
	Name    string          `json:"name"`
	Prefs   *prefs.Active   `json:"prefs,omitempty"`
	Content *content.Public `json:"content"`
	Tier    plan.Tier       `json:"-"`
	Premium bool            `json:"premium"`
}

// Resolution is the resolver's verdict for one Host header.
type Resolution struct {
	Category Category
	Profile  *profile.Record
	Render   *RenderContext
}

// Directory is the slice of the profile store the resolver consumes.
type Directory interface {
	ByHostURL(ctx context.Context, host string) (*profile.Record, error)
	ByWebsiteURL(ctx context.Context, slug string) (*profile.Record, error)
	ByAccessToken(ctx context.Context, token string) (*profile.Record, error)
	PersonalDomainExists(ctx context.Context, host string) (bool, error)
	SubdomainExists(ctx context.Context, slug string) (bool, error)
	AccessTokenExists(ctx context.Context, token string) (bool, error)
}

// Verifier proves custom-domain ownership.
type Verifier interface {
	Verify(ctx context.Context, baseDomain string, rec *profile.Record) verify.Result
}

// PrefsStore fetches the active rendering selection.
type PrefsStore interface {
	ActiveByUserID(ctx context.Context, userID int64) (*prefs.Active, error)
}

// ContentStore fetches visibility-filtered portfolio content.
type ContentStore interface {
	PublicByUserID(ctx context.Context, userID int64) (*content.Public, error)
}

// TierFunc reports a user's plan tier.
type TierFunc func(ctx context.Context, userID int64) (plan.Tier, error)

// Resolver runs the ordered host-matching algorithm.
type Resolver struct {
	dir      Directory
	verifier Verifier
	prefs    PrefsStore
	content  ContentStore
	tier     TierFunc
}

// New wires a Resolver from its collaborators.
func New(dir Directory, v Verifier, p PrefsStore, c ContentStore, tier TierFunc) *Resolver {
	return &Resolver{dir: dir, verifier: v, prefs: p, content: c, tier: tier}
}

// Resolve classifies hostHeader and, on a match, assembles the render
// context.  Errors are store/plumbing failures only; "not a tenant" is a
// category, not an error.
func (r *Resolver) Resolve(ctx context.Context, hostHeader string) (*Resolution, error) {
	base, sub := SplitHost(hostHeader)

	res, err := r.resolve(ctx, base, sub)
	if err != nil {
		return nil, err
	}
	metrics.TenantResolutionsTotal.WithLabelValues(res.Category.String()).Inc()
	if res.Category.Matched() {
		zap.S().Debugw("tenant resolved",
			"host", base, "category", res.Category.String(), "user_id", res.Profile.UserID)
	}
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, base, sub string) (*Resolution, error) {
	// 1. Custom domain.  A row that exists but fails plan, sharing, or
	// verification checks is reserved, not a fall-through: the name is
	// spoken for.
	rec, err := r.dir.ByHostURL(ctx, base)
	switch {
	case err == nil:
		if v := r.verifier.Verify(ctx, base, rec); v.Verified {
			return r.matched(ctx, CustomDomain, rec)
		}
		return &Resolution{Category: Reserved, Profile: rec}, nil
	case !errors.Is(err, profile.ErrNotFound):
		return nil, err
	}
	if taken, err := r.dir.PersonalDomainExists(ctx, base); err != nil {
		return nil, err
	} else if taken {
		return &Resolution{Category: Reserved}, nil
	}

	if sub == "" {
		return &Resolution{Category: NoMatch}, nil
	}

	// 2. Shared subdomain.
	rec, err = r.dir.ByWebsiteURL(ctx, sub)
	switch {
	case err == nil:
		return r.matched(ctx, Subdomain, rec)
	case !errors.Is(err, profile.ErrNotFound):
		return nil, err
	}

	// 3. Access token.
	rec, err = r.dir.ByAccessToken(ctx, sub)
	switch {
	case err == nil:
		return r.matched(ctx, Token, rec)
	case !errors.Is(err, profile.ErrNotFound):
		return nil, err
	}

	// 4. Claimed but not public.
	for _, probe := range []func(context.Context, string) (bool, error){
		r.dir.SubdomainExists, r.dir.AccessTokenExists,
	} {
		taken, err := probe(ctx, sub)
		if err != nil {
			return nil, err
		}
		if taken {
			return &Resolution{Category: Reserved}, nil
		}
	}

	return &Resolution{Category: NoMatch}, nil
}

// matched assembles the public render context for rec.
func (r *Resolver) matched(ctx context.Context, cat Category, rec *profile.Record) (*Resolution, error) {
	rc := &RenderContext{Name: rec.Name}

	sel, err := r.prefs.ActiveByUserID(ctx, rec.UserID)
	switch {
	case err == nil:
		rc.Prefs = sel
	case !errors.Is(err, prefs.ErrNotFound):
		// Missing prefs render with defaults; a failing store does not.
		return nil, err
	}

	if rc.Content, err = r.content.PublicByUserID(ctx, rec.UserID); err != nil {
		return nil, err
	}

	if rc.Tier, err = r.tier(ctx, rec.UserID); err != nil {
		return nil, err
	}
	rc.Premium = rc.Tier > plan.Basic

	return &Resolution{Category: cat, Profile: rec, Render: rc}, nil
}
