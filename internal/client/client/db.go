package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/trailfield/trailfield/internal/client/migrations"
	"github.com/trailfield/trailfield/internal/client/repositories/artifacts"
	"github.com/trailfield/trailfield/internal/client/repositories/emailbackup"
	"github.com/trailfield/trailfield/internal/client/repositories/metadata"
)

// Repositories bundles the local queue stores opened from one database.
type Repositories struct {
	DB          *sql.DB
	Artifacts   artifacts.Repository
	EmailBackup emailbackup.Repository
	Metadata    metadata.Repository
}

// RunMigrations applies the embedded goose migrations, creating the queue
// schema idempotently on first open.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the local queue database and prepares its schema.
// If the store cannot be opened or migrated the whole offline-queue
// subsystem fails closed: the error is returned and nothing is silently
// degraded.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocalDataNotAvailable, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrLocalDataNotAvailable, err)
	}

	return &Repositories{
		DB:          db,
		Artifacts:   artifacts.NewSQLiteRepository(db),
		EmailBackup: emailbackup.NewSQLiteRepository(db),
		Metadata:    metadata.NewSQLiteRepository(db),
	}, nil
}
