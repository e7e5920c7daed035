package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"gocorda/domain/core"
	"gocorda/domain/run"
	"gocorda/internal/errors"
	"gocorda/ports"

	"github.com/jmoiron/sqlx"
)

// RunRepositoryImpl implements RunRepository on sqlx
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

type runRow struct {
	ID              string `db:"id"`
	ModelID         string `db:"model_id"`
	ModelName       string `db:"model_name"`
	Status          string `db:"status"`
	Parameters      string `db:"parameters"`
	Fingerprint     string `db:"fingerprint"`
	FingerprintHash string `db:"fingerprint_hash"`
	Included        int    `db:"included"`
	Total           int    `db:"total"`
	Solves          int    `db:"solves"`
	Report          string `db:"report"`
	ErrorMessage    string `db:"error_message"`
	DurationMS      int64  `db:"duration_ms"`
	CreatedAt       string `db:"created_at"`
}

const runColumns = `id, model_id, model_name, status, parameters, fingerprint, fingerprint_hash,
	included, total, solves, report, error_message, duration_ms, created_at`

func toRow(rec *run.Record) (runRow, error) {
	params, err := json.Marshal(rec.Parameters)
	if err != nil {
		return runRow{}, err
	}
	fp, err := json.Marshal(rec.Fingerprint)
	if err != nil {
		return runRow{}, err
	}
	return runRow{
		ID:              rec.ID.String(),
		ModelID:         rec.ModelID,
		ModelName:       rec.ModelName,
		Status:          string(rec.Status),
		Parameters:      string(params),
		Fingerprint:     string(fp),
		FingerprintHash: rec.Fingerprint.Fingerprint.String(),
		Included:        rec.Included,
		Total:           rec.Total,
		Solves:          rec.Solves,
		Report:          rec.Report,
		ErrorMessage:    rec.Error,
		DurationMS:      rec.DurationMS,
		CreatedAt:       rec.CreatedAt.Storage(),
	}, nil
}

func (row runRow) record() (*run.Record, error) {
	rec := &run.Record{
		ID:         core.RunID(row.ID),
		ModelID:    row.ModelID,
		ModelName:  row.ModelName,
		Status:     run.Status(row.Status),
		Included:   row.Included,
		Total:      row.Total,
		Solves:     row.Solves,
		Report:     row.Report,
		Error:      row.ErrorMessage,
		DurationMS: row.DurationMS,
	}
	if err := json.Unmarshal([]byte(row.Parameters), &rec.Parameters); err != nil {
		return nil, fmt.Errorf("run %s parameters: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Fingerprint), &rec.Fingerprint); err != nil {
		return nil, fmt.Errorf("run %s fingerprint: %w", row.ID, err)
	}
	created, err := core.ParseStorage(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("run %s created_at: %w", row.ID, err)
	}
	rec.CreatedAt = created
	return rec, nil
}

// Save stores the record and its reaction results in one transaction
func (r *RunRepositoryImpl) Save(ctx context.Context, rec *run.Record) error {
	if err := rec.Validate(); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}
	row, err := toRow(rec)
	if err != nil {
		return errors.Wrap(err, "failed to encode run")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO corda_runs (`+runColumns+`)
		VALUES (:id, :model_id, :model_name, :status, :parameters, :fingerprint, :fingerprint_hash,
			:included, :total, :solves, :report, :error_message, :duration_ms, :created_at)
	`, row)
	if err != nil {
		return errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to insert run %s", rec.ID)
	}

	insert := tx.Rebind(`
		INSERT INTO corda_reaction_results
			(run_id, position, reaction_id, initial_confidence, final_confidence, included, redundancy, impossible, mock)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for i, rr := range rec.Reactions {
		_, err := tx.ExecContext(ctx, insert, row.ID, i, rr.ReactionID, rr.Initial, rr.Final,
			rr.Included, rr.Redundancy, rr.Impossible, rr.IsMockEntry)
		if err != nil {
			return errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to insert result for %s", rr.ReactionID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// Get loads a run with its reaction results in stored order
func (r *RunRepositoryImpl) Get(ctx context.Context, id core.RunID) (*run.Record, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+runColumns+` FROM corda_runs WHERE id = ?`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithCode(errors.CodeNotFound, fmt.Errorf("%w: %s", core.ErrRunNotFound, id))
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	rec, err := row.record()
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode run")
	}

	err = r.db.SelectContext(ctx, &rec.Reactions, r.db.Rebind(`
		SELECT reaction_id, initial_confidence, final_confidence, included, redundancy, impossible, mock
		FROM corda_reaction_results
		WHERE run_id = ?
		ORDER BY position
	`), id.String())
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return rec, nil
}

// List returns the newest runs first
func (r *RunRepositoryImpl) List(ctx context.Context, limit int) ([]*run.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []runRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+runColumns+` FROM corda_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	out := make([]*run.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode run")
		}
		out = append(out, rec)
	}
	return out, nil
}

// FindByFingerprint returns the newest run with the given input fingerprint
func (r *RunRepositoryImpl) FindByFingerprint(ctx context.Context, fingerprint core.Hash) (*run.Record, error) {
	var id string
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		SELECT id FROM corda_runs
		WHERE fingerprint_hash = ? AND status = ?
		ORDER BY created_at DESC
		LIMIT 1
	`), fingerprint.String(), string(run.StatusComplete))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithCode(errors.CodeNotFound, fmt.Errorf("%w: fingerprint %s", core.ErrRunNotFound, fingerprint.Short()))
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return r.Get(ctx, core.RunID(id))
}
