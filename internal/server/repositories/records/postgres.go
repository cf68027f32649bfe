package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trailfield/trailfield/internal/common"
	"github.com/trailfield/trailfield/internal/dbx"
	"github.com/trailfield/trailfield/internal/server/models"
)

// PostgresRepository stores record bodies as jsonb.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, record *models.Record) (string, error) {
	query := `
		INSERT INTO records (owner_id, collection, body)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		record.OwnerID, record.Collection, record.Body).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID string, id string) (*models.Record, error) {
	query := `
		SELECT id, owner_id, collection, body, created_at FROM records
		WHERE id = $1 AND owner_id = $2
	`

	record := &models.Record{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&record.ID, &record.OwnerID, &record.Collection, &record.Body, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string, collection string) ([]*models.Record, error) {
	query := `
		SELECT id, owner_id, collection, body, created_at FROM records
		WHERE owner_id = $1 AND collection = $2
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, collection)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		record := &models.Record{}
		if err := rows.Scan(&record.ID, &record.OwnerID, &record.Collection, &record.Body, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
