// internal/api/api.go
//
// Authenticated settings endpoints.
//
// Context
// -------
// Everything under /api/settings runs behind the access gate, so every
// handler can assume an auth.Identity is present; a missing identity is a
// wiring bug answered with 401.  Handlers are thin translations between
// JSON and the stores—the interesting rules (mutual exclusion, latch
// resets, issue-once) live in SQL and the domain packages.
//
// Error mapping
// -------------
//   - conflict sentinels (slug taken, token exists, URL unchanged) → 409
//   - missing rows                                                → 404
//   - plan tier too low                                           → 403
//   - anything else                                               → 500
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/folioworks/folio/internal/auth"
	"github.com/folioworks/folio/internal/plan"
	"github.com/folioworks/folio/internal/prefs"
	"github.com/folioworks/folio/internal/profile"
	"github.com/folioworks/folio/internal/reserved"
	"github.com/folioworks/folio/internal/verify"
)

// ProfileService is the slice of the profile store the handlers consume.
type ProfileService interface {
	ByUserID(ctx context.Context, userID int64) (*profile.Record, error)
	SaveWebsiteURL(ctx context.Context, userID int64, slug string) (*profile.PublishState, error)
	DeleteWebsiteURL(ctx context.Context, userID int64) (*profile.PublishState, error)
	ToggleShareWebsite(ctx context.Context, userID int64, share bool) (*profile.PublishState, error)
	SavePersonalWebsiteURL(ctx context.Context, userID int64, domain string) (*profile.PublishState, error)
	DeletePersonalWebsiteURL(ctx context.Context, userID int64) (*profile.PublishState, error)
	ToggleSharePersonalWebsite(ctx context.Context, userID int64, share bool) (*profile.PublishState, error)
	DomainStateByUserID(ctx context.Context, userID int64) (*profile.DomainState, error)
	ClaimDomainKey(ctx context.Context, userID int64, key, value string) (bool, error)
	GetAccessToken(ctx context.Context, userID int64) (*string, error)
	EnsureAccessToken(ctx context.Context, userID int64) (string, error)
}

// PrefsService persists and resolves rendering preferences.
type PrefsService interface {
	Save(ctx context.Context, userID, templateID, colorID int64) error
	ActiveByUserID(ctx context.Context, userID int64) (*prefs.Active, error)
}

// Verifier proves custom-domain ownership on demand.
type Verifier interface {
	Verify(ctx context.Context, baseDomain string, rec *profile.Record) verify.Result
}

// TierCheck enforces a minimum plan tier for a user.
type TierCheck func(ctx context.Context, userID int64, min plan.Tier) error

// API bundles the settings handlers.
type API struct {
	profiles    ProfileService
	prefs       PrefsService
	verifier    Verifier
	requireTier TierCheck
	reserved    *reserved.Set
	validate    *validator.Validate
}

// New wires the settings API from its collaborators.
func New(p ProfileService, pr PrefsService, v Verifier, tier TierCheck, rs *reserved.Set) *API {
	return &API{
		profiles:    p,
		prefs:       pr,
		verifier:    v,
		requireTier: tier,
		reserved:    rs,
		validate:    validator.New(),
	}
}

// Routes mounts every settings endpoint on a fresh sub-router.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/website-url", a.getWebsiteURL)
	r.Post("/website-url", a.saveWebsiteURL)
	r.Delete("/website-url", a.deleteWebsiteURL)
	r.Post("/share-website", a.toggleShareWebsite)
	r.Post("/share-personal-website", a.toggleSharePersonalWebsite)

	r.Post("/personal-website-url", a.savePersonalWebsiteURL)
	r.Delete("/personal-website-url", a.deletePersonalWebsiteURL)
	r.Post("/generate-domain-key", a.generateDomainKey)
	r.Post("/verify-domain", a.verifyDomain)

	r.Get("/access-token", a.getAccessToken)
	r.Post("/access-token", a.createAccessToken)

	r.Get("/preferences", a.getPreferences)
	r.Post("/preferences", a.savePreferences)

	return r
}

/*──────────────────────────── plumbing ────────────────────────────────────*/

// userID pulls the authenticated user from the request context.  The bool
// is false only when the gate was bypassed.
func (a *API) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

// decode unmarshals and validates a JSON request body.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "malformed JSON body", http.StatusBadRequest)
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return false
	}
	return true
}

// respond writes v as JSON.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("api response encode failed", "err", err)
	}
}

// fail maps store and plan errors onto HTTP statuses.
func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrSlugTaken),
		errors.Is(err, profile.ErrSameURL),
		errors.Is(err, profile.ErrTokenExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, profile.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, plan.ErrTierRequired):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		zap.S().Errorw("api internal error", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
