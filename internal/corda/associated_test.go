package corda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocorda/adapters/gonumlp"
	"gocorda/domain/confidence"
	"gocorda/domain/lp"
	"gocorda/domain/network"
	"gocorda/internal/errors"
	"gocorda/internal/testkit"
)

var demand = network.Fwd("EX_CORDA_0")

func TestAssociatedFindsCheapestPath(t *testing.T) {
	r := simpleWithDemand(t, DefaultOptions())

	need, err := r.Associated([]network.Variable{demand}, DefaultSearchOptions())
	require.NoError(t, err)

	require.Contains(t, need, demand)
	assert.Equal(t, []string{"EX_A", "r1"}, need[demand].Strings())
	assert.Equal(t, 0, r.Redundancies()[demand])
}

func TestAssociatedDetectsRedundantPath(t *testing.T) {
	override := map[network.Variable]confidence.Level{network.Fwd("r2"): confidence.Medium}

	r := simpleWithDemand(t, DefaultOptions())
	opts := DefaultSearchOptions()
	opts.Confidence = override
	need, err := r.Associated([]network.Variable{demand}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"EX_A", "EX_B", "r1", "r2"}, need[demand].Strings())
	assert.Equal(t, 1, r.Redundancies()[demand])

	single := DefaultOptions()
	single.N = 1
	r = simpleWithDemand(t, single)
	need, err = r.Associated([]network.Variable{demand}, opts)
	require.NoError(t, err)
	assert.Len(t, need[demand], 2)
	assert.Equal(t, 0, r.Redundancies()[demand])
}

func TestAssociatedWithoutRedundancyUsesOneRound(t *testing.T) {
	r := simpleWithDemand(t, DefaultOptions())
	opts := SearchOptions{
		Confidence:     map[network.Variable]confidence.Level{network.Fwd("r2"): confidence.Medium},
		PenalizeMedium: true,
	}

	need, err := r.Associated([]network.Variable{demand}, opts)
	require.NoError(t, err)
	assert.Len(t, need[demand], 2)
	assert.Equal(t, 1, r.Solves())
}

func TestAssociatedImpossibleMetabolite(t *testing.T) {
	net := testkit.SimpleNetwork()
	require.NoError(t, net.AddMetabolite(network.Metabolite{ID: "D"}))
	opts := DefaultOptions()
	opts.Targets = []network.Target{network.MetaboliteTarget("D")}
	r, err := New(net, testkit.SimpleConfidence(), gonumlp.New(), opts)
	require.NoError(t, err)

	need, err := r.Associated([]network.Variable{demand}, DefaultSearchOptions())
	require.NoError(t, err)

	require.Contains(t, need, demand)
	assert.Empty(t, need[demand])
	assert.Contains(t, r.Impossible(), demand)
	l, _ := r.ConfidenceOf(demand)
	assert.Equal(t, confidence.Exclude, l)
}

func TestAssociatedBlockedReactionIsImpossible(t *testing.T) {
	net := testkit.SimpleNetwork()
	r1, _ := net.Reaction("r1")
	r1.UpperBound = 0
	opts := DefaultOptions()
	opts.Targets = []network.Target{network.MetaboliteTarget("C")}
	r, err := New(net, testkit.SimpleConfidence(), gonumlp.New(), opts)
	require.NoError(t, err)

	need, err := r.Associated([]network.Variable{network.Fwd("r1")}, DefaultSearchOptions())
	require.NoError(t, err)
	assert.Empty(t, need[network.Fwd("r1")])
	assert.Equal(t, 0, r.Solves())
	assert.Equal(t, []network.Variable{network.Fwd("r1")}, r.Impossible())

	need, err = r.Associated([]network.Variable{demand}, DefaultSearchOptions())
	require.NoError(t, err)
	assert.False(t, need[demand].Has(network.Fwd("r1")))
	assert.Equal(t, []string{"EX_B", "r2"}, need[demand].Strings())
}

func TestAssociatedUnknownTarget(t *testing.T) {
	r := simpleWithDemand(t, DefaultOptions())

	_, err := r.Associated([]network.Variable{demand, network.Fwd("nope")}, DefaultSearchOptions())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
	assert.Equal(t, 0, r.Solves())
}

func TestAssociatedIsIdempotent(t *testing.T) {
	r := simpleWithDemand(t, DefaultOptions())
	opts := DefaultSearchOptions()
	opts.Confidence = map[network.Variable]confidence.Level{network.Fwd("r2"): confidence.Medium}

	first, err := r.Associated([]network.Variable{demand}, opts)
	require.NoError(t, err)
	second, err := r.Associated([]network.Variable{demand}, opts)
	require.NoError(t, err)

	assert.Equal(t, first[demand].Strings(), second[demand].Strings())
	assert.Equal(t, 1, r.Redundancies()[demand])
}

func TestAssociatedRestoresBoundsAndObjective(t *testing.T) {
	r := simpleWithDemand(t, DefaultOptions())
	before := make([][2]float64, len(r.vars))
	for j := range r.vars {
		lb, ub := r.session.Bounds(j)
		before[j] = [2]float64{lb, ub}
	}

	_, err := r.Associated([]network.Variable{demand, network.Fwd("r1"), network.Fwd("EX_B")}, DefaultSearchOptions())
	require.NoError(t, err)

	for j := range r.vars {
		lb, ub := r.session.Bounds(j)
		assert.Equal(t, before[j], [2]float64{lb, ub}, r.vars[j].String())
	}
	for _, c := range r.session.Objective() {
		assert.Zero(t, c)
	}
}

func TestAssociatedDeduplicatesTargets(t *testing.T) {
	r := simpleWithDemand(t, DefaultOptions())

	need, err := r.Associated([]network.Variable{demand, demand}, DefaultSearchOptions())
	require.NoError(t, err)
	assert.Len(t, need, 1)
	assert.Equal(t, 2, r.Solves())
}

func TestAssociatedRoundBudgetProperties(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		cfg := testkit.DefaultNetworkConfig()
		cfg.Seed = seed
		net, conf := testkit.NewNetworkGenerator(cfg).Generate()

		results := make(map[int]map[network.Variable]network.VariableSet)
		counts := make(map[int]map[network.Variable]int)
		for _, n := range []int{1, 2, 3} {
			opts := DefaultOptions()
			opts.N = n
			r, err := New(net, conf, gonumlp.New(), opts)
			require.NoError(t, err)
			targets := r.withLevel(confidence.High)
			need, err := r.Associated(targets, DefaultSearchOptions())
			require.NoError(t, err)
			results[n] = need
			counts[n] = r.Redundancies()
		}

		for v, set := range results[1] {
			assert.True(t, set.SubsetOf(results[3][v]), "seed %d target %s", seed, v)
			assert.Zero(t, counts[1][v])
			assert.LessOrEqual(t, counts[2][v], counts[3][v], "seed %d target %s", seed, v)
		}
	}
}

type brokenSolver struct{}

func (brokenSolver) Solve(*lp.Program) (lp.Result, error) {
	return lp.Result{Status: lp.Failed}, nil
}

func TestAssociatedKeepsTargetOnSolverBreakdown(t *testing.T) {
	opts := DefaultOptions()
	opts.Targets = []network.Target{network.MetaboliteTarget("C")}
	r, err := New(testkit.SimpleNetwork(), testkit.SimpleConfidence(), brokenSolver{}, opts)
	require.NoError(t, err)
	before, _ := r.ConfidenceOf(demand)

	need, err := r.Associated([]network.Variable{demand}, DefaultSearchOptions())
	require.NoError(t, err)
	assert.Empty(t, need[demand])
	assert.Empty(t, r.Impossible())
	after, _ := r.ConfidenceOf(demand)
	assert.Equal(t, before, after)
}

func TestImpossibleTargetsCarryNoFlux(t *testing.T) {
	configs := []testkit.NetworkGeneratorConfig{}
	for seed := int64(1); seed <= 4; seed++ {
		cfg := testkit.DefaultNetworkConfig()
		cfg.Metabolites, cfg.Reactions, cfg.Seed = 30, 90, seed
		configs = append(configs, cfg)
	}
	for seed := int64(1); seed <= 6; seed++ {
		cfg := testkit.DefaultNetworkConfig()
		cfg.Seed = seed
		configs = append(configs, cfg)
	}

	for _, cfg := range configs {
		net, conf := testkit.NewNetworkGenerator(cfg).Generate()
		opts := DefaultOptions()
		r, err := New(net, conf, gonumlp.New(), opts)
		require.NoError(t, err)

		_, err = r.Associated(r.vars, DefaultSearchOptions())
		require.NoError(t, err)
		impossible := network.NewVariableSet(r.Impossible()...)
		assert.Less(t, len(impossible), len(r.vars), "seed %d: everything impossible", cfg.Seed)

		for _, v := range r.Impossible() {
			j := r.cols[v]
			if _, ub := r.session.Bounds(j); ub <= opts.Tolerance {
				continue
			}
			var res lp.Result
			err := r.session.WithObjective(map[int]float64{j: 1}, func() error {
				var err error
				res, err = r.session.Optimize(lp.Maximize)
				return err
			})
			require.NoError(t, err)
			if res.Status == lp.Optimal {
				assert.LessOrEqual(t, res.Objective, opts.TFlux, "seed %d: %s marked impossible", cfg.Seed, v)
			}
		}
	}
}
