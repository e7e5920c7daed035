package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocorda/adapters/gonumlp"
	"gocorda/adapters/sqlstore"
	"gocorda/domain/network"
	"gocorda/domain/run"
	"gocorda/internal/corda"
	"gocorda/internal/errors"
	"gocorda/internal/testkit"
	"gocorda/ports"
)

func newTestRuns(t *testing.T) ports.RunRepository {
	t.Helper()
	db, err := sqlstore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlstore.NewRunRepository(db)
}

func demandOptions() corda.Options {
	opts := corda.DefaultOptions()
	opts.Targets = []network.Target{network.MetaboliteTarget("C")}
	return opts
}

func simpleRequest() ReconstructionRequest {
	return ReconstructionRequest{
		Network:    testkit.SimpleNetwork(),
		Confidence: testkit.SimpleConfidence(),
		Options:    demandOptions(),
		Name:       "simple-specific",
	}
}

func TestReconstructStoresRun(t *testing.T) {
	ctx := context.Background()
	runs := newTestRuns(t)
	svc := NewReconstructionService(gonumlp.New(), runs, nil)

	res, err := svc.Reconstruct(ctx, simpleRequest())
	require.NoError(t, err)
	assert.False(t, res.Cached)

	rec := res.Run
	assert.Equal(t, run.StatusComplete, rec.Status)
	assert.Equal(t, "simple", rec.ModelID)
	assert.Equal(t, 4, rec.Included)
	assert.Equal(t, 6, rec.Total)
	assert.Greater(t, rec.Solves, 0)
	assert.Contains(t, rec.Report, "Inc. reactions: 4/6")
	assert.Equal(t, []string{"C"}, rec.Parameters.Targets)
	assert.ElementsMatch(t, []string{"r1", "EX_A", "EX_C"}, rec.IncludedIDs())
	require.Len(t, rec.Reactions, 6)
	last := rec.Reactions[5]
	assert.Equal(t, "EX_CORDA_0", last.ReactionID)
	assert.True(t, last.IsMockEntry)

	require.NotNil(t, res.Model)
	assert.Equal(t, "simple-specific", res.Model.Name)
	assert.Len(t, res.Model.Reactions, 3)

	stored, err := svc.GetRun(ctx, rec.ID.String())
	require.NoError(t, err)
	assert.Equal(t, rec.Fingerprint.Fingerprint, stored.Fingerprint.Fingerprint)
	assert.Equal(t, rec.IncludedIDs(), stored.IncludedIDs())

	list, err := svc.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)
}

func TestReconstructReusesFingerprint(t *testing.T) {
	ctx := context.Background()
	svc := NewReconstructionService(gonumlp.New(), newTestRuns(t), nil)

	first, err := svc.Reconstruct(ctx, simpleRequest())
	require.NoError(t, err)

	req := simpleRequest()
	req.Reuse = true
	second, err := svc.Reconstruct(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Run.ID, second.Run.ID)
	assert.Nil(t, second.Model)

	req.Options.Support = 4
	third, err := svc.Reconstruct(ctx, req)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.NotEqual(t, first.Run.Fingerprint.Fingerprint, third.Run.Fingerprint.Fingerprint)
}

func TestReconstructWithoutStore(t *testing.T) {
	svc := NewReconstructionService(gonumlp.New(), nil, nil)

	res, err := svc.Reconstruct(context.Background(), simpleRequest())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Run.Included)

	_, err = svc.GetRun(context.Background(), res.Run.ID.String())
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	list, err := svc.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReconstructRejectsMissingInputs(t *testing.T) {
	svc := NewReconstructionService(gonumlp.New(), nil, nil)

	_, err := svc.Reconstruct(context.Background(), ReconstructionRequest{})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = svc.Reconstruct(context.Background(), ReconstructionRequest{Network: testkit.SimpleNetwork()})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	req := simpleRequest()
	req.Options.N = 0
	_, err = svc.Reconstruct(context.Background(), req)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestReconstructHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewReconstructionService(gonumlp.New(), nil, nil)
	_, err := svc.Reconstruct(ctx, simpleRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetRunRejectsMalformedID(t *testing.T) {
	svc := NewReconstructionService(gonumlp.New(), newTestRuns(t), nil)

	_, err := svc.GetRun(context.Background(), "not-a-uuid")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestAssociatedService(t *testing.T) {
	svc := NewReconstructionService(gonumlp.New(), nil, nil)

	out, err := svc.Associated(context.Background(), AssociationRequest{
		Network:    testkit.SimpleNetwork(),
		Confidence: testkit.SimpleConfidence(),
		Options:    demandOptions(),
		Search:     corda.DefaultSearchOptions(),
		Variables:  []string{"EX_CORDA_0", "EX_CORDA_0"},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "EX_CORDA_0", out[0].Target)
	assert.Equal(t, []string{"EX_A", "r1"}, out[0].Support)
	assert.False(t, out[0].Impossible)

	_, err = svc.Associated(context.Background(), AssociationRequest{
		Network:    testkit.SimpleNetwork(),
		Confidence: testkit.SimpleConfidence(),
		Options:    corda.DefaultOptions(),
		Variables:  []string{"nope"},
	})
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestFingerprintTracksInputs(t *testing.T) {
	net := testkit.SimpleNetwork()
	conf := testkit.SimpleConfidence()
	base := Fingerprint(net, conf, corda.DefaultOptions())
	assert.Equal(t, base, Fingerprint(testkit.SimpleNetwork(), testkit.SimpleConfidence(), corda.DefaultOptions()))

	conf["r1"] = conf["r2"]
	changed := Fingerprint(net, conf, corda.DefaultOptions())
	assert.Equal(t, base.ModelHash, changed.ModelHash)
	assert.NotEqual(t, base.ConfidenceHash, changed.ConfidenceHash)
	assert.NotEqual(t, base.Fingerprint, changed.Fingerprint)

	net.Reactions[0].UpperBound = 1
	assert.NotEqual(t, base.ModelHash, Fingerprint(net, conf, corda.DefaultOptions()).ModelHash)
}
