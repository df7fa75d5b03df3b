// internal/api/domain.go
//
// Custom-domain endpoints: claim, release, challenge issuance, and
// on-demand verification.  Everything here is pro-tier only.
package api

import (
	"net/http"

	"github.com/folioworks/folio/internal/domainkey"
	"github.com/folioworks/folio/internal/plan"
	"github.com/folioworks/folio/internal/verify"
)

type personalWebsiteURLRequest struct {
	PersonalWebsiteURL string `json:"personal_website_url" validate:"required,fqdn"`
}

// savePersonalWebsiteURL claims a custom domain.  The store resets the
// verification latch and challenge pair as part of the same UPDATE, and
// refuses a same-URL resubmission so an existing proof survives
// double-clicks.
func (a *API) savePersonalWebsiteURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	if err := a.requireTier(r.Context(), userID, plan.Pro); err != nil {
		fail(w, err)
		return
	}

	var req personalWebsiteURLRequest
	if !a.decode(w, r, &req) {
		return
	}

	st, err := a.profiles.SavePersonalWebsiteURL(r.Context(), userID,
		verify.BaseDomain(req.PersonalWebsiteURL))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

// deletePersonalWebsiteURL releases the custom domain and its proof.
func (a *API) deletePersonalWebsiteURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	if err := a.requireTier(r.Context(), userID, plan.Pro); err != nil {
		fail(w, err)
		return
	}
	st, err := a.profiles.DeletePersonalWebsiteURL(r.Context(), userID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

// generateDomainKey returns the caller's challenge pair, issuing it on
// first call.  Repeat calls return the stored pair unchanged.
func (a *API) generateDomainKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	if err := a.requireTier(r.Context(), userID, plan.Pro); err != nil {
		fail(w, err)
		return
	}

	pair, err := domainkey.Ensure(r.Context(), a.profiles, userID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, pair)
}

// verifyDomain runs the ownership check now and reports the proof state.
// A failed check is a 200 with verified=false; the error field carries
// the DNS classification the settings page turns into guidance.
func (a *API) verifyDomain(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	if err := a.requireTier(r.Context(), userID, plan.Pro); err != nil {
		fail(w, err)
		return
	}

	rec, err := a.profiles.ByUserID(r.Context(), userID)
	if err != nil {
		fail(w, err)
		return
	}
	if rec.PersonalWebsiteURL == nil || *rec.PersonalWebsiteURL == "" {
		http.Error(w, "no personal website url on record", http.StatusUnprocessableEntity)
		return
	}

	result := a.verifier.Verify(r.Context(), verify.BaseDomain(*rec.PersonalWebsiteURL), rec)
	respond(w, http.StatusOK, result)
}
