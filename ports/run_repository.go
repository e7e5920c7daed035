package ports

import (
	"context"

	"gocorda/domain/core"
	"gocorda/domain/run"
)

// RunRepository persists reconstruction run records
type RunRepository interface {
	// Save stores a record together with its per-reaction results
	Save(ctx context.Context, rec *run.Record) error

	// Get loads a record with its per-reaction results
	Get(ctx context.Context, id core.RunID) (*run.Record, error)

	// List returns records newest first without per-reaction results
	List(ctx context.Context, limit int) ([]*run.Record, error)

	// FindByFingerprint returns the newest record with the given fingerprint
	FindByFingerprint(ctx context.Context, fingerprint core.Hash) (*run.Record, error)
}
