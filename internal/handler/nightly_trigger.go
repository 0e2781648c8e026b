package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ifti136/android-demo/internal/services"
)

// HandleNightlyTrigger writes a backup of every user's document and mails the
// admin digest.
func (d *Dependencies) HandleNightlyTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slog.Info("starting nightly trigger processing")

	users, err := d.Profiles.Users(ctx)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	date := time.Now().UTC().Format(time.DateOnly)
	container := d.exportsContainer()
	digest := services.AdminDigest{Date: date}

	for _, u := range users {
		snapshot, err := d.Profiles.SnapshotUser(ctx, u.ID)
		if err != nil {
			slog.Error("failed to snapshot user", "user_id", u.ID, "error", err)
			digest.Failures = append(digest.Failures, fmt.Sprintf("%s: %v", u.ID, err))
			continue
		}
		blobName := fmt.Sprintf("backups/%s/%s.json", date, u.ID)
		if err := d.Blob.UploadText(ctx, container, blobName, string(snapshot)); err != nil {
			slog.Error("failed to write backup", "user_id", u.ID, "blob_name", blobName, "error", err)
			digest.Failures = append(digest.Failures, fmt.Sprintf("%s: %v", u.ID, err))
			continue
		}
		digest.BackupsWritten++
	}
	slog.Info("nightly backups written", "users", len(users), "written", digest.BackupsWritten, "failed", len(digest.Failures))

	if len(d.AdminEmails) == 0 || d.Email == nil {
		slog.Warn("admin e-mail is not configured; skipping digest")
		w.WriteHeader(http.StatusOK)
		return
	}

	digest.Stats, err = d.Profiles.AdminStats(ctx)
	if err != nil {
		slog.Error("failed to compute admin stats", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to compute admin stats")
		return
	}
	digest.TopUsers, err = d.Profiles.AdminUsers(ctx)
	if err != nil {
		slog.Error("failed to list admin rows", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	sortByBalance(digest.TopUsers)

	if err := d.Email.SendAdminDigest(ctx, d.AdminEmails, digest); err != nil {
		slog.Error("failed to send admin digest", "recipients", d.AdminEmails, "error", err)
	} else {
		slog.Info("admin digest sent", "recipients", d.AdminEmails)
	}

	slog.Info("nightly trigger processing complete")
	w.WriteHeader(http.StatusOK)
}
