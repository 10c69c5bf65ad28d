package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/borderease/internal/dbx"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/applications"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/users"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/visas"
)

// MemoryRepositoryManager hands out one shared in-memory store per
// repository and ignores the database handle.
type MemoryRepositoryManager struct {
	visas        *visas.MemoryRepository
	applications *applications.MemoryRepository
	users        *users.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{
		visas:        visas.NewMemoryRepository(),
		applications: applications.NewMemoryRepository(),
		users:        users.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Visas(dbx.DBTX) visas.Repository { return m.visas }

func (m *MemoryRepositoryManager) Applications(dbx.DBTX) applications.Repository {
	return m.applications
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }
