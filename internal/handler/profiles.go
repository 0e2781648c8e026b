package handler

import (
	"net/http"

	"github.com/ifti136/android-demo/internal/models"
)

type profileNameRequest struct {
	Name string `json:"name"`
}

type profilesResponse struct {
	Profiles []string `json:"profiles"`
	Current  string   `json:"current"`
}

type switchResponse struct {
	Token    string                 `json:"token"`
	Session  models.UserSession     `json:"session"`
	Envelope models.ProfileEnvelope `json:"data"`
}

// HandleProfile returns the envelope of the session's current profile.
func (d *Dependencies) HandleProfile(w http.ResponseWriter, r *http.Request, session models.UserSession) {
	env, err := d.Profiles.LoadProfile(r.Context(), session.UserID, session.CurrentProfile)
	if err != nil {
		writeServiceError(w, r, "load profile", err)
		return
	}
	WriteJSON(w, http.StatusOK, env)
}

// HandleProfiles lists (GET) or creates (POST) profiles.
func (d *Dependencies) HandleProfiles(w http.ResponseWriter, r *http.Request, session models.UserSession) {
	switch r.Method {
	case http.MethodGet:
		names, err := d.Profiles.ListProfiles(r.Context(), session)
		if err != nil {
			writeServiceError(w, r, "list profiles", err)
			return
		}
		WriteJSON(w, http.StatusOK, profilesResponse{Profiles: names, Current: currentProfile(session)})

	case http.MethodPost:
		var req profileNameRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		names, err := d.Profiles.CreateProfile(r.Context(), session, req.Name)
		if err != nil {
			writeServiceError(w, r, "create profile", err)
			return
		}
		WriteJSON(w, http.StatusCreated, profilesResponse{Profiles: names, Current: currentProfile(session)})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleSwitchProfile makes another profile current and returns a new token
// for the updated session.
func (d *Dependencies) HandleSwitchProfile(w http.ResponseWriter, r *http.Request, session models.UserSession) {
	var req profileNameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next, err := d.Profiles.SwitchProfile(r.Context(), session, req.Name)
	if err != nil {
		writeServiceError(w, r, "switch profile", err)
		return
	}
	res, err := d.Auth.Reissue(next)
	if err != nil {
		writeServiceError(w, r, "switch profile", err)
		return
	}
	env, err := d.Profiles.LoadProfile(r.Context(), next.UserID, next.CurrentProfile)
	if err != nil {
		writeServiceError(w, r, "load profile", err)
		return
	}
	WriteJSON(w, http.StatusOK, switchResponse{Token: res.Token, Session: res.Session, Envelope: env})
}

func currentProfile(session models.UserSession) string {
	if session.CurrentProfile == "" {
		return models.DefaultProfile
	}
	return session.CurrentProfile
}
