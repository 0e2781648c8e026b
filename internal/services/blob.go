package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// BlobService handles interactions with Azure Blob Storage.
type BlobService struct {
	client *azblob.Client

	mu      sync.Mutex
	created map[string]bool
}

// NewBlobService creates a BlobService from BLOB_SERVICE_URL.
func NewBlobService() (*BlobService, error) {
	blobURL, err := requireEnv("BLOB_SERVICE_URL")
	if err != nil {
		return nil, err
	}

	slog.Info("initializing blob service", "blob_url", blobURL)
	var client *azblob.Client

	if isLocal(blobURL) {
		slog.Info("using Azurite shared key credentials for blob service")
		name, key := getAzuriteCredentials()
		cred, err := azblob.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azblob.NewClient(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	}

	slog.Info("blob service initialized successfully")
	return &BlobService{client: client, created: make(map[string]bool)}, nil
}

// ensureContainer creates the container once per process.
func (s *BlobService) ensureContainer(ctx context.Context, containerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created[containerName] {
		return nil
	}
	_, err := s.client.CreateContainer(ctx, containerName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("failed to create container %s: %w", containerName, err)
	}
	s.created[containerName] = true
	return nil
}

// UploadText uploads a string to a blob, replacing any existing content.
func (s *BlobService) UploadText(ctx context.Context, containerName, blobName, text string) error {
	slog.Info("uploading blob", "container", containerName, "blob_name", blobName, "size_bytes", len(text))
	if err := s.ensureContainer(ctx, containerName); err != nil {
		slog.Warn("failed to create container", "container", containerName, "error", err)
	}

	_, err := s.client.UploadBuffer(ctx, containerName, blobName, []byte(text), nil)
	if err != nil {
		slog.Error("failed to upload blob", "container", containerName, "blob_name", blobName, "error", err)
		return fmt.Errorf("failed to upload blob %s/%s: %w", containerName, blobName, err)
	}
	slog.Info("successfully uploaded blob", "container", containerName, "blob_name", blobName)
	return nil
}

// DownloadText downloads a blob and returns its content as a string.
func (s *BlobService) DownloadText(ctx context.Context, containerName, blobName string) (string, error) {
	slog.Info("downloading blob", "container", containerName, "blob_name", blobName)
	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		slog.Error("failed to download blob", "container", containerName, "blob_name", blobName, "error", err)
		return "", fmt.Errorf("failed to download blob %s/%s: %w", containerName, blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("failed to read blob content", "container", containerName, "blob_name", blobName, "error", err)
		return "", fmt.Errorf("failed to read blob content: %w", err)
	}

	slog.Info("successfully downloaded blob", "container", containerName, "blob_name", blobName, "size_bytes", len(data))
	return string(data), nil
}
