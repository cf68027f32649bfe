package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/trailfield/trailfield/internal/common"
	"github.com/trailfield/trailfield/internal/server/config"
	"github.com/trailfield/trailfield/internal/server/models"
	"github.com/trailfield/trailfield/internal/server/repositories/repomanager"
)

// RecordService stores opaque record bodies per owner and collection.
type RecordService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	maxRecordSize int
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *RecordService {
	return &RecordService{
		db:            db,
		repomanager:   m,
		maxRecordSize: cfg.MaxRecordSize,
	}
}

// Create persists one record and returns its assigned id. Bodies above the
// configured ceiling are rejected with common.ErrPayloadTooLarge; the check
// runs before any storage work so oversized writes leave no trace.
func (s *RecordService) Create(ctx context.Context, ownerID string, collection string, body []byte) (string, error) {
	if len(body) > s.maxRecordSize {
		return "", common.ErrPayloadTooLarge
	}

	repo := s.repomanager.Records(s.db)

	id, err := repo.Create(ctx, &models.Record{
		OwnerID:    ownerID,
		Collection: collection,
		Body:       body,
	})
	if err != nil {
		return "", fmt.Errorf("error creating record: %w", err)
	}

	return id, nil
}

func (s *RecordService) Get(ctx context.Context, ownerID string, id string) (*models.Record, error) {
	repo := s.repomanager.Records(s.db)
	return repo.Get(ctx, ownerID, id)
}

func (s *RecordService) List(ctx context.Context, ownerID string, collection string) ([]*models.Record, error) {
	repo := s.repomanager.Records(s.db)
	return repo.List(ctx, ownerID, collection)
}
