// internal/tenant/resolver_test.go
//
// Ordered host-matching scenarios with faked collaborators.
//
// Run: go test ./internal/tenant -v

package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/folioworks/folio/internal/content"
	"github.com/folioworks/folio/internal/plan"
	"github.com/folioworks/folio/internal/prefs"
	"github.com/folioworks/folio/internal/profile"
	"github.com/folioworks/folio/internal/verify"
)

// fakeDir answers directory lookups from in-memory maps.
type fakeDir struct {
	hosts       map[string]*profile.Record
	slugs       map[string]*profile.Record
	tokens      map[string]*profile.Record
	hostsTaken  map[string]bool
	slugsTaken  map[string]bool
	tokensTaken map[string]bool
	tokenCalls  int
}

func lookup(m map[string]*profile.Record, k string) (*profile.Record, error) {
	if rec, ok := m[k]; ok {
		return rec, nil
	}
	return nil, profile.ErrNotFound
}

func (f *fakeDir) ByHostURL(_ context.Context, h string) (*profile.Record, error) {
	return lookup(f.hosts, h)
}

func (f *fakeDir) ByWebsiteURL(_ context.Context, s string) (*profile.Record, error) {
	return lookup(f.slugs, s)
}

func (f *fakeDir) ByAccessToken(_ context.Context, tok string) (*profile.Record, error) {
	f.tokenCalls++
	return lookup(f.tokens, tok)
}

func (f *fakeDir) PersonalDomainExists(_ context.Context, h string) (bool, error) {
	return f.hostsTaken[h], nil
}

func (f *fakeDir) SubdomainExists(_ context.Context, s string) (bool, error) {
	return f.slugsTaken[s], nil
}

func (f *fakeDir) AccessTokenExists(_ context.Context, tok string) (bool, error) {
	return f.tokensTaken[tok], nil
}

// fakeVerifier approves the domains in ok.
type fakeVerifier struct{ ok map[string]bool }

func (f *fakeVerifier) Verify(_ context.Context, base string, _ *profile.Record) verify.Result {
	if f.ok[base] {
		return verify.Result{Verified: true, IPCorrect: true}
	}
	return verify.Result{}
}

type fakePrefs struct{ active *prefs.Active }

func (f *fakePrefs) ActiveByUserID(_ context.Context, _ int64) (*prefs.Active, error) {
	if f.active == nil {
		return nil, prefs.ErrNotFound
	}
	return f.active, nil
}

type fakeContent struct{}

func (fakeContent) PublicByUserID(_ context.Context, _ int64) (*content.Public, error) {
	return &content.Public{Skills: []content.Skill{{ID: 1, Name: "Go"}}}, nil
}

func tierOf(t plan.Tier) TierFunc {
	return func(context.Context, int64) (plan.Tier, error) { return t, nil }
}

func newResolver(dir *fakeDir, v *fakeVerifier, tier plan.Tier) *Resolver {
	return New(dir, v, &fakePrefs{active: &prefs.Active{TemplateIdentifier: "minimal"}},
		fakeContent{}, tierOf(tier))
}

func TestResolveSubdomainMatch(t *testing.T) {
	dir := &fakeDir{slugs: map[string]*profile.Record{
		"alice": {UserID: 1, Name: "Alice"},
	}}
	r := newResolver(dir, &fakeVerifier{}, plan.Basic)

	res, err := r.Resolve(context.Background(), "alice.example.com")
	require.NoError(t, err)
	require.Equal(t, Subdomain, res.Category)
	require.Equal(t, "Alice", res.Render.Name)
	require.Equal(t, "minimal", res.Render.Prefs.TemplateIdentifier)
	require.False(t, res.Render.Premium)
	require.Len(t, res.Render.Content.Skills, 1)
}

func TestResolveReservedSubdomainIs404NotRedirect(t *testing.T) {
	// bob claimed the slug but sharing is off.
	dir := &fakeDir{slugsTaken: map[string]bool{"bob": true}}
	r := newResolver(dir, &fakeVerifier{}, plan.Basic)

	res, err := r.Resolve(context.Background(), "bob.example.com")
	require.NoError(t, err)
	require.Equal(t, Reserved, res.Category)
	require.Nil(t, res.Render)
}

func TestResolveVerifiedCustomDomain(t *testing.T) {
	dir := &fakeDir{hosts: map[string]*profile.Record{
		"carol.dev": {UserID: 3, Name: "Carol"},
	}}
	r := newResolver(dir, &fakeVerifier{ok: map[string]bool{"carol.dev": true}}, plan.Pro)

	res, err := r.Resolve(context.Background(), "https://www.carol.dev/")
	require.NoError(t, err)
	require.Equal(t, CustomDomain, res.Category)
	require.True(t, res.Render.Premium)
	require.Equal(t, plan.Pro, res.Render.Tier)
}

func TestResolveUnverifiedCustomDomainIsReserved(t *testing.T) {
	dir := &fakeDir{hosts: map[string]*profile.Record{
		"carol.dev": {UserID: 3, Name: "Carol"},
	}}
	r := newResolver(dir, &fakeVerifier{}, plan.Pro)

	res, err := r.Resolve(context.Background(), "carol.dev")
	require.NoError(t, err)
	require.Equal(t, Reserved, res.Category)
}

func TestResolveClaimedDomainWithoutProPlanIsReserved(t *testing.T) {
	// The sharing/plan join misses, but the row exists.
	dir := &fakeDir{hostsTaken: map[string]bool{"carol.dev": true}}
	r := newResolver(dir, &fakeVerifier{}, plan.Basic)

	res, err := r.Resolve(context.Background(), "carol.dev")
	require.NoError(t, err)
	require.Equal(t, Reserved, res.Category)
}

func TestResolveTokenMatch(t *testing.T) {
	dir := &fakeDir{tokens: map[string]*profile.Record{
		"a1b2c3": {UserID: 4, Name: "Dan"},
	}}
	r := newResolver(dir, &fakeVerifier{}, plan.Pro)

	res, err := r.Resolve(context.Background(), "a1b2c3.example.com")
	require.NoError(t, err)
	require.Equal(t, Token, res.Category)
}

func TestResolveWebsiteURLBeatsAccessToken(t *testing.T) {
	// One label matching both columns resolves as the named subdomain;
	// the token lookup must not run at all.
	dir := &fakeDir{
		slugs:  map[string]*profile.Record{"alice": {UserID: 1, Name: "Alice"}},
		tokens: map[string]*profile.Record{"alice": {UserID: 9, Name: "Imposter"}},
	}
	r := newResolver(dir, &fakeVerifier{}, plan.Basic)

	res, err := r.Resolve(context.Background(), "alice.example.com")
	require.NoError(t, err)
	require.Equal(t, Subdomain, res.Category)
	require.Equal(t, int64(1), res.Profile.UserID)
	require.Zero(t, dir.tokenCalls)
}

func TestResolveBareHostNoMatch(t *testing.T) {
	r := newResolver(&fakeDir{}, &fakeVerifier{}, plan.Basic)

	res, err := r.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, NoMatch, res.Category)
}

func TestSplitHost(t *testing.T) {
	cases := []struct {
		in, base, sub string
	}{
		{"alice.example.com", "alice.example.com", "alice"},
		{"example.com", "example.com", ""},
		{"alice.example.com:8080", "alice.example.com", "alice"},
		{"https://www.carol.dev/", "carol.dev", ""},
	}
	for _, c := range cases {
		base, sub := SplitHost(c.in)
		require.Equal(t, c.base, base, "base of %q", c.in)
		require.Equal(t, c.sub, sub, "sub of %q", c.in)
	}
}
