package handler

import (
	"net/http"
	"strconv"

	"github.com/ifti136/android-demo/internal/models"
)

// HandleSettings updates the fields present in the body on the current
// profile's settings.
func (d *Dependencies) HandleSettings(w http.ResponseWriter, r *http.Request, session models.UserSession) {
	var patch models.SettingsPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	env, err := d.Profiles.UpdateSettings(r.Context(), session, patch)
	if err != nil {
		writeServiceError(w, r, "update settings", err)
		return
	}
	WriteJSON(w, http.StatusOK, env)
}

// HandleQuickActions adds (POST) or removes (DELETE ?index=) a quick action.
func (d *Dependencies) HandleQuickActions(w http.ResponseWriter, r *http.Request, session models.UserSession) {
	switch r.Method {
	case http.MethodPost:
		var action models.QuickAction
		if !decodeJSON(w, r, &action) {
			return
		}
		env, err := d.Profiles.AddQuickAction(r.Context(), session, action)
		if err != nil {
			writeServiceError(w, r, "add quick action", err)
			return
		}
		WriteJSON(w, http.StatusCreated, env)

	case http.MethodDelete:
		index, err := strconv.Atoi(r.URL.Query().Get("index"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid index")
			return
		}
		env, err := d.Profiles.DeleteQuickAction(r.Context(), session, index)
		if err != nil {
			writeServiceError(w, r, "delete quick action", err)
			return
		}
		WriteJSON(w, http.StatusOK, env)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
