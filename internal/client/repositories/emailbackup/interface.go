package emailbackup

import (
	"context"

	"github.com/trailfield/trailfield/internal/client/models"
)

// Repository is the durable store behind the secondary email channel.
// Records are never deleted by the channel itself: once the retry cap is
// reached they are skipped but retained for manual export.
type Repository interface {
	// Enqueue durably stores a new backup record. Local-only, synchronous.
	Enqueue(ctx context.Context, rec *models.EmailBackupRecord) (int64, error)

	// ListSendable returns unsent records whose retry count is below the
	// cap, oldest first.
	ListSendable(ctx context.Context, retryCap int) ([]*models.EmailBackupRecord, error)

	// ListAll returns every record, sent or not.
	ListAll(ctx context.Context) ([]*models.EmailBackupRecord, error)

	// MarkSent flips a record to sent after successful dispatch.
	MarkSent(ctx context.Context, id int64) error

	// IncrementRetry bumps the retry counter after a failed dispatch.
	IncrementRetry(ctx context.Context, id int64) error
}
