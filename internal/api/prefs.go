// internal/api/prefs.go
//
// Rendering preference endpoints.
package api

import (
	"errors"
	"net/http"

	"github.com/folioworks/folio/internal/prefs"
)

type preferencesRequest struct {
	TemplateID int64 `json:"template_id" validate:"required,gt=0"`
	ColorID    int64 `json:"color_id" validate:"required,gt=0"`
}

// getPreferences returns the resolved active selection; 404 until the
// user has picked one.
func (a *API) getPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	active, err := a.prefs.ActiveByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, prefs.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, active)
}

// savePreferences upserts the single active row.
func (a *API) savePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}
	var req preferencesRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.prefs.Save(r.Context(), userID, req.TemplateID, req.ColorID); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
