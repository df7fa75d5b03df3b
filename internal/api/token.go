// internal/api/token.go
//
// Access-token endpoints.  The token is issued once and never rotated;
// a second POST answers 409 rather than invalidating links visitors
// already hold.
package api

import "net/http"

// getAccessToken reports the caller's token, or null when none is set.
func (a *API) getAccessToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	token, err := a.profiles.GetAccessToken(r.Context(), userID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"access_token": token})
}

// createAccessToken issues the token on first call.
func (a *API) createAccessToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	token, err := a.profiles.EnsureAccessToken(r.Context(), userID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]any{"access_token": token})
}
