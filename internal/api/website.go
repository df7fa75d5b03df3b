// internal/api/website.go
//
// Subdomain publishing: slug claim, release, and the two sharing toggles.
package api

import "net/http"

type websiteURLRequest struct {
	WebsiteURL string `json:"website_url" validate:"required,max=100"`
}

type toggleRequest struct {
	Share *bool `json:"share" validate:"required"`
}

// getWebsiteURL reports the caller's current publishing state.
func (a *API) getWebsiteURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	rec, err := a.profiles.ByUserID(r.Context(), userID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"website_url":            rec.WebsiteURL,
		"personal_website_url":   rec.PersonalWebsiteURL,
		"share_website":          rec.ShareWebsite,
		"share_personal_website": rec.SharePersonalWebsite,
	})
}

// saveWebsiteURL claims a subdomain slug.  Reserved names and slugs held
// by another tenant both answer 409.
func (a *API) saveWebsiteURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	var req websiteURLRequest
	if !a.decode(w, r, &req) {
		return
	}

	slug, err := NormalizeSlug(req.WebsiteURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if a.reserved.Contains(slug) {
		http.Error(w, "subdomain name is reserved", http.StatusConflict)
		return
	}

	st, err := a.profiles.SaveWebsiteURL(r.Context(), userID, slug)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

// deleteWebsiteURL releases the subdomain.
func (a *API) deleteWebsiteURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	st, err := a.profiles.DeleteWebsiteURL(r.Context(), userID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

// toggleShareWebsite flips subdomain sharing; raising it lowers the
// personal flag store-side.
func (a *API) toggleShareWebsite(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if !a.decode(w, r, &req) {
		return
	}
	st, err := a.profiles.ToggleShareWebsite(r.Context(), userID, *req.Share)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}

// toggleSharePersonalWebsite flips custom-domain sharing.
func (a *API) toggleSharePersonalWebsite(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if !a.decode(w, r, &req) {
		return
	}
	st, err := a.profiles.ToggleSharePersonalWebsite(r.Context(), userID, *req.Share)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, st)
}
