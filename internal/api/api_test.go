// internal/api/api_test.go
//
// Handler tests: status mapping, reserved-name screening, and the
// pro-tier guard, with faked services behind the router.
//
// Run: go test ./internal/api -v

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/folioworks/folio/internal/auth"
	"github.com/folioworks/folio/internal/plan"
	"github.com/folioworks/folio/internal/prefs"
	"github.com/folioworks/folio/internal/profile"
	"github.com/folioworks/folio/internal/reserved"
	"github.com/folioworks/folio/internal/verify"
)

// fakeProfiles implements ProfileService with scripted answers.
type fakeProfiles struct {
	rec      *profile.Record
	saveErr  error
	tokenErr error
	saved    []string
}

func (f *fakeProfiles) ByUserID(context.Context, int64) (*profile.Record, error) {
	if f.rec == nil {
		return nil, profile.ErrNotFound
	}
	return f.rec, nil
}

func (f *fakeProfiles) SaveWebsiteURL(_ context.Context, _ int64, slug string) (*profile.PublishState, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, slug)
	return &profile.PublishState{WebsiteURL: &slug, ShareWebsite: true}, nil
}

func (f *fakeProfiles) DeleteWebsiteURL(context.Context, int64) (*profile.PublishState, error) {
	return &profile.PublishState{}, nil
}

func (f *fakeProfiles) ToggleShareWebsite(_ context.Context, _ int64, share bool) (*profile.PublishState, error) {
	return &profile.PublishState{ShareWebsite: share}, nil
}

func (f *fakeProfiles) SavePersonalWebsiteURL(_ context.Context, _ int64, domain string) (*profile.PublishState, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &profile.PublishState{PersonalWebsiteURL: &domain, SharePersonalWebsite: true}, nil
}

func (f *fakeProfiles) DeletePersonalWebsiteURL(context.Context, int64) (*profile.PublishState, error) {
	return &profile.PublishState{}, nil
}

func (f *fakeProfiles) ToggleSharePersonalWebsite(_ context.Context, _ int64, share bool) (*profile.PublishState, error) {
	return &profile.PublishState{SharePersonalWebsite: share}, nil
}

func (f *fakeProfiles) DomainStateByUserID(context.Context, int64) (*profile.DomainState, error) {
	if f.rec == nil {
		return nil, profile.ErrNotFound
	}
	return &profile.DomainState{
		PersonalWebsiteURL: f.rec.PersonalWebsiteURL,
		DomainKey:          f.rec.DomainKey,
		DomainValue:        f.rec.DomainValue,
		DomainVerified:     f.rec.DomainVerified,
	}, nil
}

func (f *fakeProfiles) ClaimDomainKey(_ context.Context, _ int64, key, value string) (bool, error) {
	f.rec.DomainKey, f.rec.DomainValue = &key, &value
	return true, nil
}

func (f *fakeProfiles) GetAccessToken(context.Context, int64) (*string, error) {
	return f.rec.AccessToken, nil
}

func (f *fakeProfiles) EnsureAccessToken(context.Context, int64) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "cafebabe", nil
}

type fakePrefsSvc struct{ active *prefs.Active }

func (f *fakePrefsSvc) Save(context.Context, int64, int64, int64) error { return nil }

func (f *fakePrefsSvc) ActiveByUserID(context.Context, int64) (*prefs.Active, error) {
	if f.active == nil {
		return nil, prefs.ErrNotFound
	}
	return f.active, nil
}

type fakeVerifier struct{ result verify.Result }

func (f *fakeVerifier) Verify(context.Context, string, *profile.Record) verify.Result {
	return f.result
}

func allowAllTiers(context.Context, int64, plan.Tier) error { return nil }

func denyPro(_ context.Context, _ int64, min plan.Tier) error {
	if min >= plan.Pro {
		return plan.ErrTierRequired
	}
	return nil
}

// do routes a request through the API with user 7 authenticated.
func do(t *testing.T, a *API, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: 7, Username: "alice"}))
	rr := httptest.NewRecorder()
	a.Routes().ServeHTTP(rr, req)
	return rr
}

func newAPI(p *fakeProfiles, tier TierCheck) *API {
	return New(p, &fakePrefsSvc{}, &fakeVerifier{}, tier,
		reserved.NewSet([]string{"admin", "prod", "stripe", "www"}))
}

func TestSaveWebsiteURLNormalizesSlug(t *testing.T) {
	p := &fakeProfiles{}
	rr := do(t, newAPI(p, allowAllTiers), http.MethodPost, "/website-url",
		`{"website_url":"Alice Dev!"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, []string{"alice-dev"}, p.saved)
}

func TestSaveWebsiteURLReservedNameConflicts(t *testing.T) {
	p := &fakeProfiles{}
	rr := do(t, newAPI(p, allowAllTiers), http.MethodPost, "/website-url",
		`{"website_url":"admin"}`)

	require.Equal(t, http.StatusConflict, rr.Code)
	require.Empty(t, p.saved)
}

func TestSaveWebsiteURLDuplicateIs409(t *testing.T) {
	p := &fakeProfiles{saveErr: profile.ErrSlugTaken}
	rr := do(t, newAPI(p, allowAllTiers), http.MethodPost, "/website-url",
		`{"website_url":"alice"}`)

	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestPersonalWebsiteURLRequiresPro(t *testing.T) {
	p := &fakeProfiles{}
	rr := do(t, newAPI(p, denyPro), http.MethodPost, "/personal-website-url",
		`{"personal_website_url":"carol.dev"}`)

	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestVerifyDomainReportsResult(t *testing.T) {
	domain := "carol.dev"
	p := &fakeProfiles{rec: &profile.Record{UserID: 7, PersonalWebsiteURL: &domain}}
	a := New(p, &fakePrefsSvc{}, &fakeVerifier{result: verify.Result{
		Verified: false, IPCorrect: true, Error: "TXT record at _x.carol.dev: not-found",
	}}, allowAllTiers, reserved.NewSet(nil))

	rr := do(t, a, http.MethodPost, "/verify-domain", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var res verify.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.False(t, res.Verified)
	require.True(t, res.IPCorrect)
	require.Contains(t, res.Error, "not-found")
}

func TestAccessTokenRegenerationRefused(t *testing.T) {
	p := &fakeProfiles{rec: &profile.Record{UserID: 7}, tokenErr: profile.ErrTokenExists}
	rr := do(t, newAPI(p, allowAllTiers), http.MethodPost, "/access-token", "")

	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetPreferencesMissingIs404(t *testing.T) {
	rr := do(t, newAPI(&fakeProfiles{}, allowAllTiers), http.MethodGet, "/preferences", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnauthenticatedIs401(t *testing.T) {
	a := newAPI(&fakeProfiles{}, allowAllTiers)
	req := httptest.NewRequest(http.MethodGet, "/website-url", nil)
	rr := httptest.NewRecorder()
	a.Routes().ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestNormalizeSlug(t *testing.T) {
	got, err := NormalizeSlug("  Héllo,  World!! ")
	require.NoError(t, err)
	require.Equal(t, "h-llo-world", got)

	_, err = NormalizeSlug("!!!")
	require.ErrorIs(t, err, ErrInvalidSlug)
}
