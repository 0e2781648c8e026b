package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ifti136/android-demo/internal/csvparse"
	"github.com/ifti136/android-demo/internal/models"
	"github.com/ifti136/android-demo/internal/profile"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// decodeQueueItem accepts the queue item either as a JSON string or as an
// object the host already decoded.
func decodeQueueItem(data map[string]any, v any) error {
	item, ok := data["queueItem"]
	if !ok {
		item, ok = data["queueitem"]
	}
	if !ok {
		return fmt.Errorf("missing queueItem in Data")
	}

	var raw []byte
	switch it := item.(type) {
	case string:
		raw = []byte(it)
	case map[string]any:
		raw, _ = json.Marshal(it)
	default:
		return fmt.Errorf("queueItem has unexpected type %T", item)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid queueItem JSON: %w", err)
	}
	return nil
}

// parseImport turns an uploaded file into transactions and optional settings.
func parseImport(format, content string) ([]models.Transaction, *models.Settings, []string) {
	if format == "csv" {
		txs, rowErrors := csvparse.ParseCSV(content)
		return txs, nil, rowErrors
	}
	txs, settings, err := models.ParseExport([]byte(content))
	if err != nil {
		return nil, nil, []string{err.Error()}
	}
	return txs, settings, nil
}

// ProcessQueue handles the queue trigger that runs an import job. Jobs that
// can never succeed are consumed; transient failures return 500 so the host
// retries them.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	var invokeReq invokeRequest
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read queue request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	var msg importMessage
	if err := decodeQueueItem(invokeReq.Data, &msg); err != nil {
		slog.Error("invalid queue item", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg.BlobName == "" || msg.UserID == "" {
		slog.Warn("queue message missing blob_name or user_id", "message", msg)
		WriteError(w, http.StatusBadRequest, "Missing blob_name or user_id")
		return
	}

	ctx := r.Context()
	container := d.exportsContainer()
	slog.Info("processing import", "blob_name", msg.BlobName, "user_id", msg.UserID, "profile", msg.Profile)

	content, err := d.Blob.DownloadText(ctx, container, msg.BlobName)
	if err != nil {
		slog.Error("failed to download import", "blob_name", msg.BlobName, "container", container, "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to download import: %v", err))
		return
	}

	txs, settings, problems := parseImport(msg.Format, content)
	slog.Info("parsed import", "blob_name", msg.BlobName, "transactions_count", len(txs), "errors_count", len(problems))
	if len(txs) == 0 {
		slog.Warn("import has no valid transactions, dropping", "blob_name", msg.BlobName, "errors", problems)
		w.WriteHeader(http.StatusOK)
		return
	}

	session := models.UserSession{UserID: msg.UserID, CurrentProfile: msg.Profile}
	env, err := d.Profiles.ImportData(ctx, session, txs, settings)
	if err != nil {
		if profile.IsTransient(err) {
			slog.Error("import failed, will retry", "blob_name", msg.BlobName, "error", err)
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to import: %v", err))
			return
		}
		slog.Warn("import rejected, dropping", "blob_name", msg.BlobName, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	slog.Info("import complete", "blob_name", msg.BlobName, "user_id", msg.UserID, "balance", env.Balance, "transactions_count", len(env.Transactions))
	w.WriteHeader(http.StatusOK)
}
