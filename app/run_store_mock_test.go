package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gocorda/adapters/gonumlp"
	"gocorda/domain/core"
	"gocorda/domain/run"
	"gocorda/internal/errors"
)

type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Save(ctx context.Context, rec *run.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRunRepository) Get(ctx context.Context, id core.RunID) (*run.Record, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*run.Record)
	return rec, args.Error(1)
}

func (m *MockRunRepository) List(ctx context.Context, limit int) ([]*run.Record, error) {
	args := m.Called(ctx, limit)
	recs, _ := args.Get(0).([]*run.Record)
	return recs, args.Error(1)
}

func (m *MockRunRepository) FindByFingerprint(ctx context.Context, fingerprint core.Hash) (*run.Record, error) {
	args := m.Called(ctx, fingerprint)
	rec, _ := args.Get(0).(*run.Record)
	return rec, args.Error(1)
}

func TestReconstructFallsThroughUnknownFingerprint(t *testing.T) {
	repo := new(MockRunRepository)
	repo.On("FindByFingerprint", mock.Anything, mock.Anything).
		Return(nil, errors.WithCode(errors.CodeNotFound, fmt.Errorf("%w", core.ErrRunNotFound)))
	repo.On("Save", mock.Anything, mock.MatchedBy(func(rec *run.Record) bool {
		return rec.Status == run.StatusComplete && rec.Included == 4
	})).Return(nil).Once()

	req := simpleRequest()
	req.Reuse = true
	res, err := NewReconstructionService(gonumlp.New(), repo, nil).Reconstruct(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	repo.AssertExpectations(t)
}

func TestReconstructReportsStoreFailures(t *testing.T) {
	repo := new(MockRunRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.DatabaseError("disk full"))

	_, err := NewReconstructionService(gonumlp.New(), repo, nil).Reconstruct(context.Background(), simpleRequest())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeDatabaseError))

	lookup := new(MockRunRepository)
	lookup.On("FindByFingerprint", mock.Anything, mock.Anything).Return(nil, errors.DatabaseError("connection refused"))
	req := simpleRequest()
	req.Reuse = true
	_, err = NewReconstructionService(gonumlp.New(), lookup, nil).Reconstruct(context.Background(), req)
	assert.True(t, errors.HasCode(err, errors.CodeDatabaseError))
	lookup.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestListRunsPassesLimit(t *testing.T) {
	repo := new(MockRunRepository)
	repo.On("List", mock.Anything, 7).Return([]*run.Record{{ID: core.NewRunID()}}, nil)

	runs, err := NewReconstructionService(gonumlp.New(), repo, nil).ListRuns(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	repo.AssertExpectations(t)
}
