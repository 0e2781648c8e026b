package handler

import (
	"context"

	"github.com/ifti136/android-demo/internal/auth"
	"github.com/ifti136/android-demo/internal/ledger"
	"github.com/ifti136/android-demo/internal/models"
	"github.com/ifti136/android-demo/internal/services"
)

// ProfileService defines the profile operations used by handlers.
type ProfileService interface {
	LoadProfile(ctx context.Context, userID, name string) (models.ProfileEnvelope, error)
	ListProfiles(ctx context.Context, session models.UserSession) ([]string, error)
	SwitchProfile(ctx context.Context, session models.UserSession, name string) (models.UserSession, error)
	CreateProfile(ctx context.Context, session models.UserSession, name string) ([]string, error)

	AddTransaction(ctx context.Context, session models.UserSession, amount int, source, date string) (models.ProfileEnvelope, error)
	UpdateTransaction(ctx context.Context, session models.UserSession, id string, amount int, source, date string) (models.ProfileEnvelope, error)
	DeleteTransaction(ctx context.Context, session models.UserSession, id string) (models.ProfileEnvelope, error)
	History(ctx context.Context, session models.UserSession, q ledger.HistoryQuery) (ledger.HistoryPage, error)

	UpdateSettings(ctx context.Context, session models.UserSession, patch models.SettingsPatch) (models.ProfileEnvelope, error)
	AddQuickAction(ctx context.Context, session models.UserSession, action models.QuickAction) (models.ProfileEnvelope, error)
	DeleteQuickAction(ctx context.Context, session models.UserSession, index int) (models.ProfileEnvelope, error)

	ImportData(ctx context.Context, session models.UserSession, txs []models.Transaction, settings *models.Settings) (models.ProfileEnvelope, error)
	ExportProfile(ctx context.Context, session models.UserSession) ([]models.Transaction, models.Settings, error)

	AdminStats(ctx context.Context) (models.AdminStats, error)
	AdminUsers(ctx context.Context) ([]models.AdminUserRow, error)
	DeleteUser(ctx context.Context, userID string) error
	Users(ctx context.Context) ([]models.UserRecord, error)
	SnapshotUser(ctx context.Context, userID string) ([]byte, error)
}

// AuthService defines the session operations used by handlers.
type AuthService interface {
	Register(ctx context.Context, username, password string) (auth.Result, error)
	Login(ctx context.Context, username, password string) (auth.Result, error)
	Authenticate(token string) (models.UserSession, error)
	Reissue(session models.UserSession) (auth.Result, error)
}

// BlobClient defines the interface for blob storage operations used by handlers.
type BlobClient interface {
	UploadText(ctx context.Context, containerName, blobName, content string) error
	DownloadText(ctx context.Context, containerName, blobName string) (string, error)
}

// QueueClient defines the interface for queue operations used by handlers.
type QueueClient interface {
	EnqueueMessage(ctx context.Context, queueName string, message any) error
}

// EmailClient defines the interface for email operations used by handlers.
type EmailClient interface {
	SendAdminDigest(ctx context.Context, recipients []string, digest services.AdminDigest) error
}
