package records

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trailfield/trailfield/internal/common"
	"github.com/trailfield/trailfield/internal/server/models"
)

// InMemoryRepository keeps records in a map keyed by record id.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*models.Record
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{records: make(map[string]*models.Record)}
}

func (r *InMemoryRepository) Create(ctx context.Context, record *models.Record) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = uuid.NewString()
	record.CreatedAt = time.Now()
	r.records[record.ID] = record
	return record.ID, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, ownerID string, id string) (*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok || record.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return record, nil
}

func (r *InMemoryRepository) List(ctx context.Context, ownerID string, collection string) ([]*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Record
	for _, record := range r.records {
		if record.OwnerID == ownerID && record.Collection == collection {
			result = append(result, record)
		}
	}
	return result, nil
}
