package handler

import (
	"context"

	"github.com/ifti136/android-demo/internal/auth"
	"github.com/ifti136/android-demo/internal/ledger"
	"github.com/ifti136/android-demo/internal/models"
	"github.com/ifti136/android-demo/internal/services"
)

// MockProfileService is a mock implementation of ProfileService
type MockProfileService struct {
	LoadProfileFunc       func(ctx context.Context, userID, name string) (models.ProfileEnvelope, error)
	ListProfilesFunc      func(ctx context.Context, session models.UserSession) ([]string, error)
	SwitchProfileFunc     func(ctx context.Context, session models.UserSession, name string) (models.UserSession, error)
	CreateProfileFunc     func(ctx context.Context, session models.UserSession, name string) ([]string, error)
	AddTransactionFunc    func(ctx context.Context, session models.UserSession, amount int, source, date string) (models.ProfileEnvelope, error)
	UpdateTransactionFunc func(ctx context.Context, session models.UserSession, id string, amount int, source, date string) (models.ProfileEnvelope, error)
	DeleteTransactionFunc func(ctx context.Context, session models.UserSession, id string) (models.ProfileEnvelope, error)
	HistoryFunc           func(ctx context.Context, session models.UserSession, q ledger.HistoryQuery) (ledger.HistoryPage, error)
	UpdateSettingsFunc    func(ctx context.Context, session models.UserSession, patch models.SettingsPatch) (models.ProfileEnvelope, error)
	AddQuickActionFunc    func(ctx context.Context, session models.UserSession, action models.QuickAction) (models.ProfileEnvelope, error)
	DeleteQuickActionFunc func(ctx context.Context, session models.UserSession, index int) (models.ProfileEnvelope, error)
	ImportDataFunc        func(ctx context.Context, session models.UserSession, txs []models.Transaction, settings *models.Settings) (models.ProfileEnvelope, error)
	ExportProfileFunc     func(ctx context.Context, session models.UserSession) ([]models.Transaction, models.Settings, error)
	AdminStatsFunc        func(ctx context.Context) (models.AdminStats, error)
	AdminUsersFunc        func(ctx context.Context) ([]models.AdminUserRow, error)
	DeleteUserFunc        func(ctx context.Context, userID string) error
	UsersFunc             func(ctx context.Context) ([]models.UserRecord, error)
	SnapshotUserFunc      func(ctx context.Context, userID string) ([]byte, error)
}

func (m *MockProfileService) LoadProfile(ctx context.Context, userID, name string) (models.ProfileEnvelope, error) {
	if m.LoadProfileFunc != nil {
		return m.LoadProfileFunc(ctx, userID, name)
	}
	return models.ProfileEnvelope{Profile: name}, nil
}

func (m *MockProfileService) ListProfiles(ctx context.Context, session models.UserSession) ([]string, error) {
	if m.ListProfilesFunc != nil {
		return m.ListProfilesFunc(ctx, session)
	}
	return []string{models.DefaultProfile}, nil
}

func (m *MockProfileService) SwitchProfile(ctx context.Context, session models.UserSession, name string) (models.UserSession, error) {
	if m.SwitchProfileFunc != nil {
		return m.SwitchProfileFunc(ctx, session, name)
	}
	session.CurrentProfile = name
	return session, nil
}

func (m *MockProfileService) CreateProfile(ctx context.Context, session models.UserSession, name string) ([]string, error) {
	if m.CreateProfileFunc != nil {
		return m.CreateProfileFunc(ctx, session, name)
	}
	return []string{name}, nil
}

func (m *MockProfileService) AddTransaction(ctx context.Context, session models.UserSession, amount int, source, date string) (models.ProfileEnvelope, error) {
	if m.AddTransactionFunc != nil {
		return m.AddTransactionFunc(ctx, session, amount, source, date)
	}
	return models.ProfileEnvelope{}, nil
}

func (m *MockProfileService) UpdateTransaction(ctx context.Context, session models.UserSession, id string, amount int, source, date string) (models.ProfileEnvelope, error) {
	if m.UpdateTransactionFunc != nil {
		return m.UpdateTransactionFunc(ctx, session, id, amount, source, date)
	}
	return models.ProfileEnvelope{}, nil
}

func (m *MockProfileService) DeleteTransaction(ctx context.Context, session models.UserSession, id string) (models.ProfileEnvelope, error) {
	if m.DeleteTransactionFunc != nil {
		return m.DeleteTransactionFunc(ctx, session, id)
	}
	return models.ProfileEnvelope{}, nil
}

func (m *MockProfileService) History(ctx context.Context, session models.UserSession, q ledger.HistoryQuery) (ledger.HistoryPage, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, session, q)
	}
	return ledger.HistoryPage{}, nil
}

func (m *MockProfileService) UpdateSettings(ctx context.Context, session models.UserSession, patch models.SettingsPatch) (models.ProfileEnvelope, error) {
	if m.UpdateSettingsFunc != nil {
		return m.UpdateSettingsFunc(ctx, session, patch)
	}
	return models.ProfileEnvelope{}, nil
}

func (m *MockProfileService) AddQuickAction(ctx context.Context, session models.UserSession, action models.QuickAction) (models.ProfileEnvelope, error) {
	if m.AddQuickActionFunc != nil {
		return m.AddQuickActionFunc(ctx, session, action)
	}
	return models.ProfileEnvelope{}, nil
}

func (m *MockProfileService) DeleteQuickAction(ctx context.Context, session models.UserSession, index int) (models.ProfileEnvelope, error) {
	if m.DeleteQuickActionFunc != nil {
		return m.DeleteQuickActionFunc(ctx, session, index)
	}
	return models.ProfileEnvelope{}, nil
}

func (m *MockProfileService) ImportData(ctx context.Context, session models.UserSession, txs []models.Transaction, settings *models.Settings) (models.ProfileEnvelope, error) {
	if m.ImportDataFunc != nil {
		return m.ImportDataFunc(ctx, session, txs, settings)
	}
	return models.ProfileEnvelope{}, nil
}

func (m *MockProfileService) ExportProfile(ctx context.Context, session models.UserSession) ([]models.Transaction, models.Settings, error) {
	if m.ExportProfileFunc != nil {
		return m.ExportProfileFunc(ctx, session)
	}
	return nil, models.DefaultSettings(), nil
}

func (m *MockProfileService) AdminStats(ctx context.Context) (models.AdminStats, error) {
	if m.AdminStatsFunc != nil {
		return m.AdminStatsFunc(ctx)
	}
	return models.AdminStats{}, nil
}

func (m *MockProfileService) AdminUsers(ctx context.Context) ([]models.AdminUserRow, error) {
	if m.AdminUsersFunc != nil {
		return m.AdminUsersFunc(ctx)
	}
	return nil, nil
}

func (m *MockProfileService) DeleteUser(ctx context.Context, userID string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, userID)
	}
	return nil
}

func (m *MockProfileService) Users(ctx context.Context) ([]models.UserRecord, error) {
	if m.UsersFunc != nil {
		return m.UsersFunc(ctx)
	}
	return nil, nil
}

func (m *MockProfileService) SnapshotUser(ctx context.Context, userID string) ([]byte, error) {
	if m.SnapshotUserFunc != nil {
		return m.SnapshotUserFunc(ctx, userID)
	}
	return []byte("{}"), nil
}

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	RegisterFunc     func(ctx context.Context, username, password string) (auth.Result, error)
	LoginFunc        func(ctx context.Context, username, password string) (auth.Result, error)
	AuthenticateFunc func(token string) (models.UserSession, error)
	ReissueFunc      func(session models.UserSession) (auth.Result, error)
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) (auth.Result, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, password)
	}
	return auth.Result{}, nil
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (auth.Result, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return auth.Result{}, nil
}

func (m *MockAuthService) Authenticate(token string) (models.UserSession, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(token)
	}
	return models.UserSession{}, auth.ErrUnauthenticated
}

func (m *MockAuthService) Reissue(session models.UserSession) (auth.Result, error) {
	if m.ReissueFunc != nil {
		return m.ReissueFunc(session)
	}
	return auth.Result{Session: session, Token: "reissued"}, nil
}

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	UploadTextFunc   func(ctx context.Context, containerName, blobName, content string) error
	DownloadTextFunc func(ctx context.Context, containerName, blobName string) (string, error)
}

func (m *MockBlobClient) UploadText(ctx context.Context, containerName, blobName, content string) error {
	if m.UploadTextFunc != nil {
		return m.UploadTextFunc(ctx, containerName, blobName, content)
	}
	return nil
}

func (m *MockBlobClient) DownloadText(ctx context.Context, containerName, blobName string) (string, error) {
	if m.DownloadTextFunc != nil {
		return m.DownloadTextFunc(ctx, containerName, blobName)
	}
	return "", nil
}

// MockQueueClient is a mock implementation of QueueClient
type MockQueueClient struct {
	EnqueueMessageFunc func(ctx context.Context, queueName string, message any) error
}

func (m *MockQueueClient) EnqueueMessage(ctx context.Context, queueName string, message any) error {
	if m.EnqueueMessageFunc != nil {
		return m.EnqueueMessageFunc(ctx, queueName, message)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	SendAdminDigestFunc func(ctx context.Context, recipients []string, digest services.AdminDigest) error
}

func (m *MockEmailClient) SendAdminDigest(ctx context.Context, recipients []string, digest services.AdminDigest) error {
	if m.SendAdminDigestFunc != nil {
		return m.SendAdminDigestFunc(ctx, recipients, digest)
	}
	return nil
}

// testSession is the session the default MockAuthService hands out for
// the "user-token" and "admin-token" bearer tokens.
var testSession = models.UserSession{UserID: "u1", Username: "alice", Role: models.RoleUser, CurrentProfile: "Default"}

func newTestAuth() *MockAuthService {
	return &MockAuthService{
		AuthenticateFunc: func(token string) (models.UserSession, error) {
			switch token {
			case "user-token":
				return testSession, nil
			case "admin-token":
				s := testSession
				s.UserID = "admin"
				s.Role = models.RoleAdmin
				return s, nil
			}
			return models.UserSession{}, auth.ErrUnauthenticated
		},
	}
}
