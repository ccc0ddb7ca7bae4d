// Package app holds process-level plumbing shared by the entrypoints.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/consulthub/consulthub-api/migrations"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrator applies the embedded schema migrations through goose.
type Migrator struct {
	db *sql.DB
}

func NewMigrator(pool *pgxpool.Pool) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(migrations.FS)

	// goose drives a *sql.DB; borrow one from the pgx pool.
	return &Migrator{db: stdlib.OpenDBFromPool(pool)}, nil
}

// Run applies all pending migrations.
func (m *Migrator) Run(ctx context.Context) error {
	logger.Info("Applying database migrations")

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return fmt.Errorf("get migration version: %w", err)
	}
	logger.Info("Migrations applied", "version", version)
	return nil
}

// Close releases the migrator's connection, not the pool.
func (m *Migrator) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
