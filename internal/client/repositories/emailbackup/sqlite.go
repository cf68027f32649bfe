// Package emailbackup persists the secondary email-mirror queue.
package emailbackup

import (
	"context"
	"fmt"
	"time"

	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, rec *models.EmailBackupRecord) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO email_backup (kind, snapshot, created_at) values (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, rec.Kind, rec.Snapshot, createdAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue email backup: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get backup id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = createdAt
	return id, nil
}

func (r *SQLiteRepository) ListSendable(ctx context.Context, retryCap int) ([]*models.EmailBackupRecord, error) {
	query := `select id, kind, snapshot, created_at, sent, retry_count from email_backup
		where sent=0 and retry_count < ? order by created_at, id`
	return r.queryRecords(ctx, query, retryCap)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*models.EmailBackupRecord, error) {
	query := `select id, kind, snapshot, created_at, sent, retry_count from email_backup order by created_at, id`
	return r.queryRecords(ctx, query)
}

func (r *SQLiteRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*models.EmailBackupRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select email backups: %w", err)
	}
	defer rows.Close()

	var result []*models.EmailBackupRecord
	for rows.Next() {
		rec := &models.EmailBackupRecord{}
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Snapshot, &createdAt, &rec.Sent, &rec.RetryCount); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `update email_backup set sent=1 where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark email backup sent: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) IncrementRetry(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `update email_backup set retry_count=retry_count+1 where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment email retry: %w", err)
	}
	return nil
}
