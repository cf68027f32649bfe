package services

import (
	"context"
	"fmt"
	"time"

	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/client/repositories/artifacts"
	"github.com/trailfield/trailfield/internal/logging"
)

// QueueService is the local-first save path. Saving never touches the
// network and never fails because the device is offline: the artifact is
// durably queued and a backup snapshot is enqueued for the email
// channel.
type QueueService struct {
	artifactRepo artifacts.Repository
	email        *EmailBackupService
	logger       logging.Logger
}

func NewQueueService(artifactRepo artifacts.Repository, email *EmailBackupService, logger logging.Logger) *QueueService {
	return &QueueService{artifactRepo: artifactRepo, email: email, logger: logger.With("component", "queue")}
}

// Save validates and appends one artifact. The owner may be anonymous;
// identity is attached, not required.
func (s *QueueService) Save(ctx context.Context, payload models.Payload, owner models.Owner) (int64, error) {
	raw, err := payload.Serialize()
	if err != nil {
		return 0, err
	}
	// normalization is the single entry point for payload validation
	normalized, err := models.Normalize(raw)
	if err != nil {
		return 0, err
	}

	localID, err := s.artifactRepo.Append(ctx, &models.PendingArtifact{
		Kind:      normalized.Kind,
		Payload:   normalized,
		Owner:     owner,
		CreatedAt: time.Now(),
		Status:    models.StatusPending,
	})
	if err != nil {
		return 0, fmt.Errorf("queue append: %w", err)
	}

	// secondary channel; its failure never invalidates the save
	if err := s.email.Enqueue(ctx, normalized.Kind, normalized); err != nil {
		s.logger.Warn(ctx, "email backup enqueue failed", "localID", localID, "error", err)
	}

	return localID, nil
}

// AppendEntry adds one entry to a queued record that has not been
// uploaded yet. Uploaded records are immutable locally.
func (s *QueueService) AppendEntry(ctx context.Context, kind models.ArtifactKind, localID int64, entry models.TrackEntry) error {
	a, err := s.artifactRepo.GetByID(ctx, kind, localID)
	if err != nil {
		return err
	}
	if a.Uploaded() {
		return fmt.Errorf("record %d is already uploaded", localID)
	}

	a.Payload.Entries = append(a.Payload.Entries, entry)
	return s.artifactRepo.UpdatePayload(ctx, kind, localID, a.Payload)
}

func (s *QueueService) Get(ctx context.Context, kind models.ArtifactKind, localID int64) (*models.PendingArtifact, error) {
	return s.artifactRepo.GetByID(ctx, kind, localID)
}

func (s *QueueService) List(ctx context.Context, kind models.ArtifactKind) ([]*models.PendingArtifact, error) {
	return s.artifactRepo.ListAll(ctx, kind)
}

// Delete removes a record on explicit user request. This is the only way
// an unsynced record ever leaves the queue.
func (s *QueueService) Delete(ctx context.Context, kind models.ArtifactKind, localID int64) error {
	return s.artifactRepo.DeleteByID(ctx, kind, localID)
}

func (s *QueueService) PendingCount(ctx context.Context) (int, error) {
	return s.artifactRepo.CountPending(ctx)
}
