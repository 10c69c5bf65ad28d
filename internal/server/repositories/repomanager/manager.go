// Package repomanager vends repository implementations bound to a database
// handle (or a transaction) and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/borderease/internal/dbx"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/applications"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/users"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/visas"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Visas(db dbx.DBTX) visas.Repository
	Applications(db dbx.DBTX) applications.Repository
	Users(db dbx.DBTX) users.Repository
}
