package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue/queueerror"
)

// QueueService handles interactions with Azure Queue Storage.
type QueueService struct {
	serviceClient *azqueue.ServiceClient

	mu      sync.Mutex
	created map[string]bool
}

// NewQueueService creates a QueueService from QUEUE_SERVICE_URL.
func NewQueueService() (*QueueService, error) {
	queueURL, err := requireEnv("QUEUE_SERVICE_URL")
	if err != nil {
		return nil, err
	}

	slog.Info("initializing queue service", "queue_url", queueURL)
	var client *azqueue.ServiceClient

	if isLocal(queueURL) {
		slog.Info("using Azurite shared key credentials for queue service")
		name, key := getAzuriteCredentials()
		cred, err := azqueue.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azqueue.NewServiceClientWithSharedKeyCredential(queueURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azqueue.NewServiceClient(queueURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client: %w", err)
		}
	}

	slog.Info("queue service initialized successfully")
	return &QueueService{serviceClient: client, created: make(map[string]bool)}, nil
}

func (s *QueueService) ensureQueue(ctx context.Context, q *azqueue.QueueClient, queueName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created[queueName] {
		return
	}
	if _, err := q.Create(ctx, nil); err != nil && !queueerror.HasCode(err, queueerror.QueueAlreadyExists) {
		slog.Warn("failed to create queue (may already exist)", "queue", queueName, "error", err)
		return
	}
	s.created[queueName] = true
}

// EnqueueMessage JSON-encodes message and adds it to a queue, base64 encoded
// as the Functions host expects.
func (s *QueueService) EnqueueMessage(ctx context.Context, queueName string, message any) error {
	queueClient := s.serviceClient.NewQueueClient(queueName)
	s.ensureQueue(ctx, queueClient, queueName)

	msgBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(msgBytes)

	if _, err := queueClient.EnqueueMessage(ctx, encoded, nil); err != nil {
		var azErr *azcore.ResponseError
		if errors.As(err, &azErr) {
			slog.Error("failed to enqueue message", "queue", queueName, "status", azErr.StatusCode, "code", azErr.ErrorCode)
		}
		return fmt.Errorf("failed to enqueue message to %s: %w", queueName, err)
	}

	slog.Info("enqueued message", "queue", queueName, "size_bytes", len(msgBytes))
	return nil
}
