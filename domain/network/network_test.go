package network

import (
	"errors"
	"testing"

	"gocorda/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReactionCreatesMetabolites(t *testing.T) {
	n := New("test", "test model")
	require.NoError(t, n.AddReaction(Reaction{ID: "r1", Metabolites: map[string]float64{"A": -1, "C": 1}, UpperBound: 1000}))

	assert.True(t, n.HasMetabolite("A"))
	assert.True(t, n.HasMetabolite("C"))
	assert.Len(t, n.Metabolites, 2)

	err := n.AddReaction(Reaction{ID: "r1"})
	assert.True(t, errors.Is(err, core.ErrDuplicateID))

	err = n.AddReaction(Reaction{ID: "bad", LowerBound: 5, UpperBound: 1})
	assert.Error(t, err)
}

func TestCopyIsDeep(t *testing.T) {
	n := New("test", "")
	require.NoError(t, n.AddReaction(Reaction{ID: "r1", Metabolites: map[string]float64{"A": -1}, UpperBound: 10}))

	c := n.Copy()
	c.Reactions[0].Metabolites["A"] = -2
	c.Reactions[0].UpperBound = 1

	r, ok := n.Reaction("r1")
	require.True(t, ok)
	assert.Equal(t, -1.0, r.Metabolites["A"])
	assert.Equal(t, 10.0, r.UpperBound)
}

func TestRemoveOrphanMetabolites(t *testing.T) {
	n := New("test", "")
	require.NoError(t, n.AddMetabolite(Metabolite{ID: "D"}))
	require.NoError(t, n.AddReaction(Reaction{ID: "r1", Metabolites: map[string]float64{"A": -1, "C": 1}, UpperBound: 10}))

	n.RemoveOrphanMetabolites()
	assert.False(t, n.HasMetabolite("D"))
	assert.True(t, n.HasMetabolite("A"))
}

func TestVariableNames(t *testing.T) {
	n := New("test", "")
	require.NoError(t, n.AddReaction(Reaction{ID: "r1", UpperBound: 10}))

	assert.Equal(t, "r1", Fwd("r1").String())
	assert.Equal(t, "r1_reverse", Bwd("r1").String())
	assert.Equal(t, Bwd("r1"), Fwd("r1").Reverse())

	v, ok := ParseVariable(n, "r1_reverse")
	require.True(t, ok)
	assert.Equal(t, Bwd("r1"), v)

	_, ok = ParseVariable(n, "r2")
	assert.False(t, ok)
}

func TestVariableSetSorted(t *testing.T) {
	s := NewVariableSet(Bwd("b"), Fwd("b"), Fwd("a"))
	assert.Equal(t, []Variable{Fwd("a"), Fwd("b"), Bwd("b")}, s.Sorted())
	assert.Equal(t, []string{"a", "b", "b_reverse"}, s.Strings())
	assert.True(t, NewVariableSet(Fwd("a")).SubsetOf(s))
	assert.False(t, NewVariableSet(Fwd("z")).SubsetOf(s))
}

func TestParseReactionString(t *testing.T) {
	tests := []struct {
		in     string
		stoich map[string]float64
		lb, ub float64
	}{
		{"C ->", map[string]float64{"C": -1}, 0, DefaultBound},
		{"adp_c + pi_c -> atp_c", map[string]float64{"adp_c": -1, "pi_c": -1, "atp_c": 1}, 0, DefaultBound},
		{"2 A <=> B", map[string]float64{"A": -2, "B": 1}, -DefaultBound, DefaultBound},
		{"A <-- 0.5 B", map[string]float64{"A": -1, "B": 0.5}, -DefaultBound, 0},
		{"--> A", map[string]float64{"A": 1}, 0, DefaultBound},
		{"A + A -> 2 A", map[string]float64{}, 0, DefaultBound},
	}
	for _, tt := range tests {
		stoich, lb, ub, err := ParseReactionString(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.stoich, stoich, tt.in)
		assert.Equal(t, tt.lb, lb, tt.in)
		assert.Equal(t, tt.ub, ub, tt.in)
	}

	for _, bad := range []string{"A + B", "x A -> B", "A B C -> D"} {
		_, _, _, err := ParseReactionString(bad)
		assert.True(t, errors.Is(err, core.ErrInvalidReaction), bad)
	}
}

func TestFormatReaction(t *testing.T) {
	r := Reaction{ID: "r", Metabolites: map[string]float64{"A": -2, "B": 1}, LowerBound: -10, UpperBound: 10}
	assert.Equal(t, "2 A <=> B", FormatReaction(&r))

	r = Reaction{ID: "d", Metabolites: map[string]float64{"C": -1}, UpperBound: 10}
	assert.Equal(t, "C -->", FormatReaction(&r))
}

func TestParseTarget(t *testing.T) {
	tg, err := ParseTarget("atp_c")
	require.NoError(t, err)
	assert.Equal(t, TargetMetabolite, tg.Kind)

	tg, err = ParseTarget("C ->")
	require.NoError(t, err)
	assert.Equal(t, TargetEquation, tg.Kind)

	tg, err = ParseTarget(map[string]any{"C": -1, "D": 0.5})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"C": -1, "D": 0.5}, tg.Stoichiometry)

	_, err = ParseTarget([]string{"C"})
	assert.True(t, errors.Is(err, core.ErrInvalidTarget))

	_, err = ParseTarget(map[string]any{"C": "x"})
	assert.True(t, errors.Is(err, core.ErrInvalidTarget))
}

func TestDemandReaction(t *testing.T) {
	n := New("test", "")
	require.NoError(t, n.AddReaction(Reaction{ID: "r1", Metabolites: map[string]float64{"A": -1, "C": 1}, UpperBound: 10}))

	r, err := MetaboliteTarget("C").DemandReaction("EX_CORDA_0", n)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"C": -1}, r.Metabolites)
	assert.True(t, r.IsMock())
	assert.Equal(t, "C", r.Mock)

	_, err = MetaboliteTarget("Z").DemandReaction("EX_CORDA_0", n)
	assert.True(t, errors.Is(err, core.ErrMetaboliteNotFound))

	_, err = StoichiometryTarget(map[string]float64{"Z": -1}).DemandReaction("EX_CORDA_0", n)
	assert.True(t, errors.Is(err, core.ErrMetaboliteNotFound))

	r, err = EquationTarget("A + C -> E").DemandReaction("EX_CORDA_1", n)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": -1, "C": -1, "E": 1}, r.Metabolites)
}
