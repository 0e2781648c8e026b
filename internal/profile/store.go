package profile

import (
	"context"

	"github.com/ifti136/android-demo/internal/models"
)

// DocumentStore reads and writes whole user-data documents.
type DocumentStore interface {
	// GetUserData returns the user's document and its version tag. A missing
	// document yields an empty one and an empty tag.
	GetUserData(ctx context.Context, userID string) (*models.UserData, string, error)
	// PutUserData writes data if the stored version still matches etag (an
	// empty etag means "must not exist yet"). Stale writes fail with
	// models.ErrConcurrentUpdate.
	PutUserData(ctx context.Context, userID string, data *models.UserData, etag string) error
	DeleteUserData(ctx context.Context, userID string) error
}

// UserDirectory looks up, lists and removes user accounts.
type UserDirectory interface {
	// GetUser fails with models.ErrNotFound for an unknown id.
	GetUser(ctx context.Context, userID string) (models.UserRecord, error)
	ListUsers(ctx context.Context) ([]models.UserRecord, error)
	DeleteUser(ctx context.Context, userID string) error
}
