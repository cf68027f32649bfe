// Package records declares the server-side repository contract for synced
// field records.
package records

import (
	"context"

	"github.com/trailfield/trailfield/internal/server/models"
)

// Repository defines storage operations for records. Create returns the
// assigned record id; the id is what clients persist as the cloud marker.
type Repository interface {
	Create(ctx context.Context, record *models.Record) (string, error)
	Get(ctx context.Context, ownerID string, id string) (*models.Record, error)
	List(ctx context.Context, ownerID string, collection string) ([]*models.Record, error)
}
