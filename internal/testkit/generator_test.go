package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkGeneratorIsReproducible(t *testing.T) {
	cfg := DefaultNetworkConfig()
	a, ca := NewNetworkGenerator(cfg).Generate()
	b, cb := NewNetworkGenerator(cfg).Generate()

	require.Equal(t, a.ReactionIDs(), b.ReactionIDs())
	assert.Equal(t, ca, cb)
	for i := range a.Reactions {
		assert.Equal(t, a.Reactions[i].Metabolites, b.Reactions[i].Metabolites)
	}
}

func TestNetworkGeneratorCoversEveryReaction(t *testing.T) {
	cfg := DefaultNetworkConfig()
	n, conf := NewNetworkGenerator(cfg).Generate()

	assert.Len(t, n.Reactions, cfg.Reactions+cfg.Uptakes+cfg.Sinks)
	for _, r := range n.Reactions {
		l, ok := conf[r.ID]
		require.True(t, ok, r.ID)
		assert.True(t, l.Valid())
	}
}

func TestFixtures(t *testing.T) {
	n := SimpleNetwork()
	assert.Len(t, n.Metabolites, 3)
	assert.NoError(t, SimpleConfidence().Validate())

	shared, conf := SharedSupportNetwork(5)
	assert.Len(t, shared.Reactions, 11)
	assert.Len(t, conf, 11)

	core := CoreNetwork()
	assert.Equal(t, map[string]float64{"BIOMASS": 1}, core.Objective())
}
