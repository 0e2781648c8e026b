package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/ifti136/android-demo/internal/models"
)

const (
	usersPartition = "USERS"
	// Username claim rows share the users partition so that a claim and its
	// account can be written in one batch.
	usernamePrefix = "NAME_"
)

// userEntity is the table row of a user account.
type userEntity struct {
	PartitionKey  string `json:"PartitionKey"`
	RowKey        string `json:"RowKey"`
	Username      string `json:"Username"`
	UsernameLower string `json:"UsernameLower"`
	PasswordHash  string `json:"PasswordHash"`
	CreatedAt     string `json:"CreatedAt"`
	Role          string `json:"Role"`
}

// usernameEntity reserves a lowercase username for one user id.
type usernameEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	UserID       string `json:"UserID"`
}

func (e userEntity) record() models.UserRecord {
	role := e.Role
	if role == "" {
		role = models.RoleUser
	}
	return models.UserRecord{
		ID:            e.RowKey,
		Username:      e.Username,
		UsernameLower: e.UsernameLower,
		PasswordHash:  e.PasswordHash,
		CreatedAt:     e.CreatedAt,
		Role:          role,
	}
}

// usernameRowKey hashes the lowercase username so any characters are safe
// in a RowKey.
func usernameRowKey(usernameLower string) string {
	h := sha256.Sum256([]byte(usernameLower))
	return usernamePrefix + hex.EncodeToString(h[:])
}

// UserStore keeps user accounts in Azure Table Storage.
type UserStore struct {
	client *aztables.Client
	table  string
}

// NewUserStore creates a UserStore from TABLE_SERVICE_URL and USERS_TABLE
// (default "users"), creating the table if needed.
func NewUserStore(ctx context.Context) (*UserStore, error) {
	tableURL, err := requireEnv("TABLE_SERVICE_URL")
	if err != nil {
		return nil, err
	}
	table := envOrDefault("USERS_TABLE", "users")

	var serviceClient *aztables.ServiceClient
	if isLocal(tableURL) {
		slog.Info("using Azurite credentials for user store")
		name, key := getAzuriteCredentials()
		cred, err := aztables.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		serviceClient, err = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		serviceClient, err = aztables.NewServiceClient(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	if _, err := serviceClient.CreateTable(ctx, table, nil); err != nil && !hasErrorCode(err, "TableAlreadyExists") {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	slog.Info("user store initialized successfully", "table_url", tableURL, "users_table", table)
	return &UserStore{client: serviceClient.NewClient(table), table: table}, nil
}

func hasErrorCode(err error, codes ...string) bool {
	var azErr *azcore.ResponseError
	if !errors.As(err, &azErr) {
		return false
	}
	for _, c := range codes {
		if azErr.ErrorCode == c {
			return true
		}
	}
	return false
}

func isTableNotFound(err error) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) && (azErr.StatusCode == http.StatusNotFound || azErr.ErrorCode == "ResourceNotFound")
}

// CreateUser stores a new account together with its username claim. A taken
// username fails with models.ErrAlreadyExists.
func (s *UserStore) CreateUser(ctx context.Context, rec models.UserRecord) error {
	user, err := json.Marshal(userEntity{
		PartitionKey:  usersPartition,
		RowKey:        rec.ID,
		Username:      rec.Username,
		UsernameLower: rec.UsernameLower,
		PasswordHash:  rec.PasswordHash,
		CreatedAt:     rec.CreatedAt,
		Role:          rec.Role,
	})
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	claim, err := json.Marshal(usernameEntity{
		PartitionKey: usersPartition,
		RowKey:       usernameRowKey(rec.UsernameLower),
		UserID:       rec.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode username claim: %w", err)
	}

	batch := []aztables.TransactionAction{
		{ActionType: aztables.TransactionTypeAdd, Entity: claim},
		{ActionType: aztables.TransactionTypeAdd, Entity: user},
	}
	if _, err := s.client.SubmitTransaction(ctx, batch, nil); err != nil {
		var azErr *azcore.ResponseError
		if hasErrorCode(err, "EntityAlreadyExists") || (errors.As(err, &azErr) && azErr.StatusCode == http.StatusConflict) {
			return fmt.Errorf("username %q: %w", rec.Username, models.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("created user", "user_id", rec.ID)
	return nil
}

// GetUser returns the account with the given id.
func (s *UserStore) GetUser(ctx context.Context, userID string) (models.UserRecord, error) {
	resp, err := s.client.GetEntity(ctx, usersPartition, userID, nil)
	if err != nil {
		if isTableNotFound(err) {
			return models.UserRecord{}, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
		}
		return models.UserRecord{}, fmt.Errorf("failed to get user: %w", err)
	}
	var e userEntity
	if err := json.Unmarshal(resp.Value, &e); err != nil {
		return models.UserRecord{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return e.record(), nil
}

// GetUserByUsername looks an account up by case-insensitive username.
func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (models.UserRecord, error) {
	lower := strings.ToLower(username)
	resp, err := s.client.GetEntity(ctx, usersPartition, usernameRowKey(lower), nil)
	if err != nil {
		if isTableNotFound(err) {
			return models.UserRecord{}, fmt.Errorf("username %q: %w", username, models.ErrNotFound)
		}
		return models.UserRecord{}, fmt.Errorf("failed to look up username: %w", err)
	}
	var claim usernameEntity
	if err := json.Unmarshal(resp.Value, &claim); err != nil {
		return models.UserRecord{}, fmt.Errorf("failed to decode username claim: %w", err)
	}
	return s.GetUser(ctx, claim.UserID)
}

// ListUsers returns every account.
func (s *UserStore) ListUsers(ctx context.Context) ([]models.UserRecord, error) {
	filter := fmt.Sprintf("PartitionKey eq '%s'", usersPartition)
	pager := s.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})

	var users []models.UserRecord
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		for _, raw := range resp.Entities {
			var e userEntity
			if err := json.Unmarshal(raw, &e); err != nil {
				slog.Warn("skipping undecodable user row", "error", err)
				continue
			}
			if strings.HasPrefix(e.RowKey, usernamePrefix) {
				continue
			}
			users = append(users, e.record())
		}
	}
	return users, nil
}

// DeleteUser removes an account and releases its username.
func (s *UserStore) DeleteUser(ctx context.Context, userID string) error {
	rec, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	batch := []aztables.TransactionAction{
		{ActionType: aztables.TransactionTypeDelete, Entity: rowRef(userID)},
		{ActionType: aztables.TransactionTypeDelete, Entity: rowRef(usernameRowKey(rec.UsernameLower))},
	}
	if _, err := s.client.SubmitTransaction(ctx, batch, nil); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	return nil
}

func rowRef(rowKey string) []byte {
	b, _ := json.Marshal(map[string]string{"PartitionKey": usersPartition, "RowKey": rowKey})
	return b
}
