package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocorda/adapters/gonumlp"
	"gocorda/domain/confidence"
	"gocorda/domain/network"
	"gocorda/internal/corda"
	"gocorda/internal/errors"
	"gocorda/internal/testkit"
)

func TestGrowthConfidence(t *testing.T) {
	net := testkit.CoreNetwork()
	conf := GrowthConfidence(net)

	require.Len(t, conf, len(net.Reactions))
	assert.Equal(t, confidence.High, conf["BIOMASS"])
	assert.Equal(t, confidence.Exclude, conf["HEX"])
}

func TestBenchmarkCoreNetwork(t *testing.T) {
	svc := NewBenchmarkService(gonumlp.New(), nil, 1)

	res, err := svc.Benchmark(context.Background(), testkit.CoreNetwork(), corda.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Error)
	assert.Greater(t, res.Growth, MinGrowth)
	assert.Greater(t, res.Included, 0)
	assert.Less(t, res.Included, res.Reactions)
	assert.Greater(t, res.Solves, 0)
	assert.Contains(t, res.Report, "reconstruction complete")
}

func TestBenchmarkFlagsModelWithoutObjective(t *testing.T) {
	net := testkit.SimpleNetwork()
	svc := NewBenchmarkService(gonumlp.New(), nil, 1)

	res, err := svc.Benchmark(context.Background(), net, corda.DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Error)
}

func TestBenchmarkAllKeepsOrder(t *testing.T) {
	core := testkit.CoreNetwork()
	other := testkit.CoreNetwork()
	other.ID = "core-copy"
	svc := NewBenchmarkService(gonumlp.New(), nil, 2)

	results, err := svc.BenchmarkAll(context.Background(), []*network.Network{core, other}, corda.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, core.ID, results[0].ModelID)
	assert.Equal(t, "core-copy", results[1].ModelID)
	assert.Equal(t, results[0].Included, results[1].Included)
}

func TestBenchmarkAllStopsOnError(t *testing.T) {
	svc := NewBenchmarkService(gonumlp.New(), nil, 0)
	opts := corda.DefaultOptions()
	opts.Support = 0

	_, err := svc.BenchmarkAll(context.Background(), []*network.Network{testkit.CoreNetwork()}, opts)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}
