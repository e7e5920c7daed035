package migration

import (
	"context"

	"gocorda/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the run store schema. Statements are written to
// run unchanged on PostgreSQL and SQLite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create corda_runs table")
	}

	if err := r.createReactionResultsTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create corda_reaction_results table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS corda_runs (
			id VARCHAR(64) PRIMARY KEY,
			model_id TEXT NOT NULL,
			model_name TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL,
			parameters TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			fingerprint_hash VARCHAR(64) NOT NULL,
			included INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0,
			solves INTEGER NOT NULL DEFAULT 0,
			report TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			duration_ms BIGINT NOT NULL DEFAULT 0,
			created_at VARCHAR(40) NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createReactionResultsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS corda_reaction_results (
			run_id VARCHAR(64) NOT NULL REFERENCES corda_runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			reaction_id TEXT NOT NULL,
			initial_confidence INTEGER NOT NULL,
			final_confidence INTEGER NOT NULL,
			included BOOLEAN NOT NULL,
			redundancy INTEGER NOT NULL DEFAULT 0,
			impossible BOOLEAN NOT NULL,
			mock BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_corda_runs_created_at ON corda_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_corda_runs_fingerprint ON corda_runs(fingerprint_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_corda_runs_model ON corda_runs(model_id)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
