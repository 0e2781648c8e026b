package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ifti136/android-demo/internal/csvparse"
	"github.com/ifti136/android-demo/internal/models"
)

// HandleExport downloads the current profile as JSON (default) or CSV.
func (d *Dependencies) HandleExport(w http.ResponseWriter, r *http.Request, session models.UserSession) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		WriteError(w, http.StatusBadRequest, "Unsupported format")
		return
	}

	txs, settings, err := d.Profiles.ExportProfile(r.Context(), session)
	if err != nil {
		writeServiceError(w, r, "export profile", err)
		return
	}

	var body []byte
	contentType := "application/json"
	if format == "csv" {
		text, err := csvparse.WriteCSV(txs)
		if err != nil {
			writeServiceError(w, r, "export profile", err)
			return
		}
		body = []byte(text)
		contentType = "text/csv"
	} else {
		body, err = models.MarshalExport(txs, settings)
		if err != nil {
			writeServiceError(w, r, "export profile", err)
			return
		}
	}

	filename := fmt.Sprintf("coin-tracker-%s.%s", currentProfile(session), format)
	slog.Info("exported profile", "user_id", session.UserID, "format", format, "transactions_count", len(txs))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
