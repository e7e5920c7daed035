package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocorda/domain/core"
	"gocorda/domain/run"
	"gocorda/internal/errors"
)

func newTestRepository(t *testing.T) *RunRepositoryImpl {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &RunRepositoryImpl{db: db}
}

func sampleRecord(modelID string) *run.Record {
	params := run.Parameters{N: 3, PenaltyFactor: 100, Support: 5, TFlux: 1, Targets: []string{"C"}}
	fp := run.NewFingerprint(core.Hash("model-"+modelID), core.Hash("conf"), params, "test")
	rec := run.NewRecord(modelID, "test model", params, fp)
	rec.Included, rec.Total, rec.Solves = 2, 3, 17
	rec.Report = "build status: reconstruction complete\n"
	rec.Reactions = []run.ReactionResult{
		{ReactionID: "r1", Initial: 1, Final: 3, Included: true, Redundancy: 1},
		{ReactionID: "r2", Initial: -1, Final: -1, Impossible: true},
		{ReactionID: "EX_CORDA_0", Initial: 3, Final: 3, Included: true, IsMockEntry: true},
	}
	return rec
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "postgres", DriverFor("postgres://user@localhost/corda?sslmode=disable"))
	assert.Equal(t, "postgres", DriverFor("host=localhost dbname=corda"))
	assert.Equal(t, "sqlite3", DriverFor(":memory:"))
	assert.Equal(t, "sqlite3", DriverFor("file:runs.db?cache=shared"))
}

func TestSaveAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	rec := sampleRecord("simple")

	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ModelID, got.ModelID)
	assert.Equal(t, rec.Parameters, got.Parameters)
	assert.Equal(t, rec.Fingerprint, got.Fingerprint)
	assert.Equal(t, rec.Reactions, got.Reactions)
	assert.Equal(t, 17, got.Solves)
	assert.Equal(t, rec.CreatedAt.Time().UnixNano(), got.CreatedAt.Time().UnixNano())
	assert.Equal(t, []string{"r1"}, got.IncludedIDs())
}

func TestGetMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Get(context.Background(), core.NewRunID())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
	assert.True(t, core.IsNotFoundError(err))
}

func TestSaveRejectsInvalidRecord(t *testing.T) {
	repo := newTestRepository(t)
	rec := sampleRecord("")

	err := repo.Save(context.Background(), rec)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestListNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	older := sampleRecord("a")
	older.CreatedAt = core.NewTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := sampleRecord("b")
	newer.CreatedAt = core.NewTimestamp(time.Date(2024, 1, 2, 0, 0, 0, 500, time.UTC))
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	runs, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ModelID)
	assert.Equal(t, "a", runs[1].ModelID)
	assert.Empty(t, runs[0].Reactions)

	runs, err = repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestFindByFingerprint(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	rec := sampleRecord("simple")
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.FindByFingerprint(ctx, rec.Fingerprint.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = repo.FindByFingerprint(ctx, core.Hash("unknown"))
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}
