package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/borderease/internal/client/migrations"
	"github.com/dmitrijs2005/borderease/internal/client/repositories/cache"
	"github.com/dmitrijs2005/borderease/internal/client/repositories/preferences"
	"github.com/pressly/goose/v3"
)

// Repositories bundles the local stores backed by one SQLite database.
type Repositories struct {
	Preferences preferences.Repository
	Cache       cache.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Preferences: preferences.NewSQLiteRepository(db),
		Cache:       cache.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at dsn and applies migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate local db: %w", err)
	}

	return db, nil
}
