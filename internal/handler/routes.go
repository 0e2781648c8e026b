package handler

import (
	"log/slog"
	"net/http"
)

// Routes registers every API route, the Functions trigger endpoints and the
// HTTP trigger adapter on a new ServeMux.
func (d *Dependencies) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/mobile-login", d.HandleLogin)
	mux.HandleFunc("POST /api/mobile-register", d.HandleRegister)

	mux.HandleFunc("GET /api/profile", d.WithSession(d.HandleProfile))
	mux.HandleFunc("GET /api/profiles", d.WithSession(d.HandleProfiles))
	mux.HandleFunc("POST /api/profiles", d.WithSession(d.HandleProfiles))
	mux.HandleFunc("POST /api/profiles/switch", d.WithSession(d.HandleSwitchProfile))

	mux.HandleFunc("GET /api/transactions", d.WithSession(d.HandleTransactions))
	mux.HandleFunc("POST /api/transactions", d.WithSession(d.HandleTransactions))
	mux.HandleFunc("PUT /api/transactions", d.WithSession(d.HandleTransactions))
	mux.HandleFunc("DELETE /api/transactions", d.WithSession(d.HandleTransactions))

	mux.HandleFunc("PUT /api/settings", d.WithSession(d.HandleSettings))
	mux.HandleFunc("POST /api/quick-actions", d.WithSession(d.HandleQuickActions))
	mux.HandleFunc("DELETE /api/quick-actions", d.WithSession(d.HandleQuickActions))

	mux.HandleFunc("GET /api/export", d.WithSession(d.HandleExport))
	mux.HandleFunc("POST /api/import", d.WithSession(d.HandleImport))

	mux.HandleFunc("GET /api/admin/stats", d.WithAdmin(d.HandleAdminStats))
	mux.HandleFunc("GET /api/admin/users", d.WithAdmin(d.HandleAdminUsers))
	mux.HandleFunc("DELETE /api/admin/users", d.WithAdmin(d.HandleAdminUsers))

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Trigger endpoints are matched on path only; the host's method varies.
	mux.HandleFunc("/HttpTrigger", d.HandleHttpTrigger(mux))
	mux.HandleFunc("/ProcessQueue", d.ProcessQueue)
	mux.HandleFunc("/NightlyTrigger", d.HandleNightlyTrigger)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("unmatched request", "method", r.Method, "path", r.URL.Path, "content_length", r.ContentLength)
		WriteError(w, http.StatusNotFound, "Not found")
	})

	return mux
}
