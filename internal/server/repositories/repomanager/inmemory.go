package repomanager

import (
	"context"
	"database/sql"

	"github.com/trailfield/trailfield/internal/dbx"
	"github.com/trailfield/trailfield/internal/server/repositories/records"
	"github.com/trailfield/trailfield/internal/server/repositories/refreshtokens"
	"github.com/trailfield/trailfield/internal/server/repositories/users"
)

// InMemoryRepositoryManager vends map-backed repositories. Unlike the
// PostgreSQL manager it holds the repository instances itself, so repeated
// calls share state regardless of the DBTX argument.
type InMemoryRepositoryManager struct {
	users         *users.InMemoryRepository
	refreshTokens *refreshtokens.InMemoryRepository
	records       *records.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:         users.NewInMemoryRepository(),
		refreshTokens: refreshtokens.NewInMemoryRepository(),
		records:       records.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return m.records
}

// RunMigrations is a no-op for the in-memory manager.
func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}
