package artifacts

import (
	"context"

	"github.com/trailfield/trailfield/internal/client/models"
)

// Repository is the local durable queue for pending artifacts. All
// operations are scoped by artifact kind and never touch the network.
// Implementations are backed by a local SQLite database.
type Repository interface {
	// Append durably stores a new artifact and returns its local id.
	// The record exists before any upload attempt is made.
	Append(ctx context.Context, a *models.PendingArtifact) (int64, error)

	// GetByID returns one artifact by kind and local id.
	GetByID(ctx context.Context, kind models.ArtifactKind, localID int64) (*models.PendingArtifact, error)

	// ListAll returns every artifact of the kind, pending or uploaded.
	ListAll(ctx context.Context, kind models.ArtifactKind) ([]*models.PendingArtifact, error)

	// ListPending returns artifacts of the kind still awaiting upload,
	// oldest first.
	ListPending(ctx context.Context, kind models.ArtifactKind) ([]*models.PendingArtifact, error)

	// MarkUploaded records the remote identity and flips status to
	// uploaded. It must never run twice for the same record.
	MarkUploaded(ctx context.Context, kind models.ArtifactKind, localID int64, cloudID string) error

	// IncrementRetry bumps the retry counter and last-retry timestamp
	// after a failed attempt. The record stays pending.
	IncrementRetry(ctx context.Context, kind models.ArtifactKind, localID int64) error

	// UpdatePayload persists payload mutations made during an upload
	// attempt (media content replaced by blob URLs).
	UpdatePayload(ctx context.Context, kind models.ArtifactKind, localID int64, payload models.Payload) error

	// DeleteByID removes a record. Deletion only ever happens on explicit
	// user action.
	DeleteByID(ctx context.Context, kind models.ArtifactKind, localID int64) error

	// CountPending returns the number of pending records across all kinds.
	CountPending(ctx context.Context) (int, error)
}
