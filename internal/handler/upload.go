package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ifti136/android-demo/internal/models"
)

// maxImportBytes bounds an uploaded import file.
const maxImportBytes = 10 << 20

// importMessage is the queue payload of an import job.
type importMessage struct {
	BlobName string `json:"blob_name"`
	UserID   string `json:"user_id"`
	Profile  string `json:"profile"`
	Format   string `json:"format"`
}

// importFormat picks the parser from the file extension.
func importFormat(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return "csv"
	}
	return "json"
}

// HandleImport stores an uploaded export file and queues it for import into
// the session's current profile.
func (d *Dependencies) HandleImport(w http.ResponseWriter, r *http.Request, session models.UserSession) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		slog.Warn("failed to parse multipart form", "error", err, "max_size_mb", maxImportBytes>>20)
		WriteError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Warn("failed to get file from form", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	slog.Info("received import upload", "user_id", session.UserID, "filename", header.Filename, "size_bytes", len(content))

	timestamp := time.Now().UTC().Format("20060102-150405")
	filename := filepath.Base(header.Filename)
	blobName := fmt.Sprintf("imports/%s/%s-%s", session.UserID, timestamp, filename)
	container := d.exportsContainer()

	if err := d.Blob.UploadText(r.Context(), container, blobName, string(content)); err != nil {
		slog.Error("failed to upload import blob", "blob_name", blobName, "container", container, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	msg := importMessage{
		BlobName: blobName,
		UserID:   session.UserID,
		Profile:  currentProfile(session),
		Format:   importFormat(filename),
	}
	if err := d.Queue.EnqueueMessage(r.Context(), d.importQueue(), msg); err != nil {
		slog.Error("failed to enqueue import", "queue", d.importQueue(), "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to queue import")
		return
	}
	slog.Info("queued import", "queue", d.importQueue(), "blob_name", blobName, "format", msg.Format)

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":   "queued",
		"blobName": blobName,
	})
}
