package artifacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/common"
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

const artifactColumns = `local_id, kind, payload, owner_id, owner_email, owner_name,
	created_at, status, retry_count, last_retry_at, cloud_id`

func (r *SQLiteRepository) Append(ctx context.Context, a *models.PendingArtifact) (int64, error) {
	body, err := a.Payload.Serialize()
	if err != nil {
		return 0, err
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO artifacts (kind, payload, owner_id, owner_email, owner_name, created_at, status)
			values (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		a.Kind, body, a.Owner.ID, a.Owner.Email, a.Owner.DisplayName, createdAt.Unix(), models.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to append artifact: %w", err)
	}

	localID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get local id: %w", err)
	}

	a.LocalID = localID
	a.CreatedAt = createdAt
	a.Status = models.StatusPending
	return localID, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, kind models.ArtifactKind, localID int64) (*models.PendingArtifact, error) {
	query := `select ` + artifactColumns + ` from artifacts where kind=? and local_id=?`
	row := r.db.QueryRowContext(ctx, query, kind, localID)

	a, err := scanArtifact(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return a, nil
}

// ListAll lists every artifact of the kind, oldest first.
func (r *SQLiteRepository) ListAll(ctx context.Context, kind models.ArtifactKind) ([]*models.PendingArtifact, error) {
	query := `select ` + artifactColumns + ` from artifacts where kind=? order by created_at, local_id`
	return r.queryArtifacts(ctx, query, kind)
}

// ListPending returns records still awaiting a successful upload.
func (r *SQLiteRepository) ListPending(ctx context.Context, kind models.ArtifactKind) ([]*models.PendingArtifact, error) {
	query := `select ` + artifactColumns + ` from artifacts where kind=? and status=? order by created_at, local_id`
	return r.queryArtifacts(ctx, query, kind, models.StatusPending)
}

func (r *SQLiteRepository) queryArtifacts(ctx context.Context, query string, args ...any) ([]*models.PendingArtifact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select artifacts: %w", err)
	}
	defer rows.Close()

	var result []*models.PendingArtifact
	for rows.Next() {
		a, err := scanArtifact(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkUploaded sets the cloud id and flips status to uploaded. The status
// guard makes the operation idempotent: a record that is already uploaded is
// left untouched.
func (r *SQLiteRepository) MarkUploaded(ctx context.Context, kind models.ArtifactKind, localID int64, cloudID string) error {
	query := `update artifacts set status=?, cloud_id=? where kind=? and local_id=? and status=?`
	res, err := r.db.ExecContext(ctx, query, models.StatusUploaded, cloudID, kind, localID, models.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark artifact uploaded: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) IncrementRetry(ctx context.Context, kind models.ArtifactKind, localID int64) error {
	query := `update artifacts set retry_count=retry_count+1, last_retry_at=? where kind=? and local_id=?`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC().Unix(), kind, localID)
	if err != nil {
		return fmt.Errorf("failed to increment retry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdatePayload(ctx context.Context, kind models.ArtifactKind, localID int64, payload models.Payload) error {
	body, err := payload.Serialize()
	if err != nil {
		return err
	}
	query := `update artifacts set payload=? where kind=? and local_id=?`
	_, err = r.db.ExecContext(ctx, query, body, kind, localID)
	if err != nil {
		return fmt.Errorf("failed to update payload: %w", err)
	}
	return nil
}

// DeleteByID removes a record. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, kind models.ArtifactKind, localID int64) error {
	query := `delete from artifacts where kind=? and local_id=?`
	res, err := r.db.ExecContext(ctx, query, kind, localID)
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `select count(*) from artifacts where status=?`, models.StatusPending).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending artifacts: %w", err)
	}
	return n, nil
}

func scanArtifact(scan func(dest ...any) error) (*models.PendingArtifact, error) {
	a := &models.PendingArtifact{}
	var body []byte
	var createdAt int64
	var lastRetryAt sql.NullInt64
	var cloudID sql.NullString

	err := scan(&a.LocalID, &a.Kind, &body, &a.Owner.ID, &a.Owner.Email, &a.Owner.DisplayName,
		&createdAt, &a.Status, &a.RetryCount, &lastRetryAt, &cloudID)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, &a.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	if lastRetryAt.Valid {
		t := time.Unix(lastRetryAt.Int64, 0).UTC()
		a.LastRetryAt = &t
	}
	if cloudID.Valid {
		a.CloudID = &cloudID.String
	}
	return a, nil
}
