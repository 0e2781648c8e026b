package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/ifti136/android-demo/internal/models"
)

// UserDataStore keeps one JSON document per user in a blob container and
// uses the blob ETag for optimistic concurrency.
type UserDataStore struct {
	blobs     *BlobService
	container string
}

// NewUserDataStore creates a store in USER_DATA_CONTAINER (default "user-data").
func NewUserDataStore(blobs *BlobService) *UserDataStore {
	container := envOrDefault("USER_DATA_CONTAINER", "user-data")
	slog.Info("user data store initialized", "container", container)
	return &UserDataStore{blobs: blobs, container: container}
}

func userDataBlob(userID string) string {
	return userID + ".json"
}

// GetUserData returns the user's document and its ETag. A missing blob yields
// an empty document and an empty ETag.
func (s *UserDataStore) GetUserData(ctx context.Context, userID string) (*models.UserData, string, error) {
	name := userDataBlob(userID)
	resp, err := s.blobs.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return models.NewUserData(), "", nil
		}
		return nil, "", fmt.Errorf("failed to download user data %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read user data %s: %w", name, err)
	}
	data, err := models.ParseUserData(raw)
	if err != nil {
		return nil, "", err
	}

	etag := ""
	if resp.ETag != nil {
		etag = string(*resp.ETag)
	}
	return data, etag, nil
}

// PutUserData writes the document if the stored ETag still equals etag. An
// empty etag only succeeds when no document exists yet.
func (s *UserDataStore) PutUserData(ctx context.Context, userID string, data *models.UserData, etag string) error {
	name := userDataBlob(userID)
	raw, err := models.MarshalUserData(data)
	if err != nil {
		return fmt.Errorf("failed to encode user data: %w", err)
	}
	if err := s.blobs.ensureContainer(ctx, s.container); err != nil {
		return err
	}

	cond := &blob.ModifiedAccessConditions{}
	if etag == "" {
		cond.IfNoneMatch = to.Ptr(azcore.ETagAny)
	} else {
		cond.IfMatch = to.Ptr(azcore.ETag(etag))
	}

	_, err = s.blobs.client.UploadBuffer(ctx, s.container, name, raw, &azblob.UploadBufferOptions{
		HTTPHeaders:      &blob.HTTPHeaders{BlobContentType: to.Ptr("application/json")},
		AccessConditions: &blob.AccessConditions{ModifiedAccessConditions: cond},
	})
	if err != nil {
		if bloberror.HasCode(err, bloberror.ConditionNotMet, bloberror.BlobAlreadyExists) {
			return fmt.Errorf("%s: %w", name, models.ErrConcurrentUpdate)
		}
		slog.Error("failed to write user data", "blob_name", name, "error", err)
		return fmt.Errorf("failed to upload user data %s: %w", name, err)
	}
	return nil
}

// DeleteUserData removes the user's document. Deleting a missing document is
// not an error.
func (s *UserDataStore) DeleteUserData(ctx context.Context, userID string) error {
	name := userDataBlob(userID)
	_, err := s.blobs.client.DeleteBlob(ctx, s.container, name, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return fmt.Errorf("failed to delete user data %s: %w", name, err)
	}
	return nil
}
