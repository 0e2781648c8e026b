package handler

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/ifti136/android-demo/internal/models"
)

// HandleAdminStats returns the totals and sign-up chart.
func (d *Dependencies) HandleAdminStats(w http.ResponseWriter, r *http.Request, session models.UserSession) {
	stats, err := d.Profiles.AdminStats(r.Context())
	if err != nil {
		writeServiceError(w, r, "load admin stats", err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// HandleAdminUsers lists users (GET) or deletes one (DELETE ?id=).
func (d *Dependencies) HandleAdminUsers(w http.ResponseWriter, r *http.Request, session models.UserSession) {
	switch r.Method {
	case http.MethodGet:
		rows, err := d.Profiles.AdminUsers(r.Context())
		if err != nil {
			writeServiceError(w, r, "list users", err)
			return
		}
		WriteJSON(w, http.StatusOK, rows)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing id")
			return
		}
		if id == session.UserID {
			WriteError(w, http.StatusBadRequest, "Admins cannot delete themselves")
			return
		}
		if err := d.Profiles.DeleteUser(r.Context(), id); err != nil {
			writeServiceError(w, r, "delete user", err)
			return
		}
		slog.Info("admin deleted user", "admin_id", session.UserID, "user_id", id)
		WriteJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// sortByBalance orders rows by balance, highest first.
func sortByBalance(rows []models.AdminUserRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Balance > rows[j].Balance
	})
}
