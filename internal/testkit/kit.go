// Package testkit provides fixture networks and confidence maps for tests.
package testkit

import (
	"fmt"

	"gocorda/domain/confidence"
	"gocorda/domain/network"
)

// mustAdd panics on malformed fixtures; fixtures are static so this only fires on programmer error
func mustAdd(n *network.Network, r network.Reaction) {
	if err := n.AddReaction(r); err != nil {
		panic(fmt.Sprintf("testkit: %v", err))
	}
}

func rxn(id string, lb, ub float64, stoich map[string]float64) network.Reaction {
	return network.Reaction{ID: id, Metabolites: stoich, LowerBound: lb, UpperBound: ub}
}

// SimpleNetwork is the three-metabolite network with two routes to C:
//
//	EX_A: -> A    r1: A -> C
//	EX_B: -> B    r2: B -> C
//	EX_C: C ->
func SimpleNetwork() *network.Network {
	n := network.New("simple", "test model")
	for _, id := range []string{"A", "B", "C"} {
		_ = n.AddMetabolite(network.Metabolite{ID: id})
	}
	mustAdd(n, rxn("r1", 0, 1000, map[string]float64{"A": -1, "C": 1}))
	mustAdd(n, rxn("r2", 0, 1000, map[string]float64{"B": -1, "C": 1}))
	mustAdd(n, rxn("EX_A", 0, 1000, map[string]float64{"A": 1}))
	mustAdd(n, rxn("EX_B", 0, 1000, map[string]float64{"B": 1}))
	mustAdd(n, rxn("EX_C", 0, 1000, map[string]float64{"C": -1}))
	return n
}

// SimpleConfidence marks r2 as absent and everything else as low confidence
func SimpleConfidence() confidence.Map {
	return confidence.Map{
		"r1":   confidence.Low,
		"r2":   confidence.Exclude,
		"EX_A": confidence.Low,
		"EX_B": confidence.Low,
		"EX_C": confidence.Low,
	}
}

// SharedSupportNetwork has `count` medium-confidence reactions m<i>: Z -> P<i>
// that each drain into a free sink, all fed by the single absent source zsrc.
func SharedSupportNetwork(count int) (*network.Network, confidence.Map) {
	n := network.New("shared", "shared support")
	conf := confidence.Map{}
	mustAdd(n, rxn("zsrc", 0, 1000, map[string]float64{"Z": 1}))
	conf["zsrc"] = confidence.Exclude
	for i := 0; i < count; i++ {
		p := fmt.Sprintf("P%d", i)
		m := fmt.Sprintf("m%d", i)
		sink := fmt.Sprintf("sink%d", i)
		mustAdd(n, rxn(m, 0, 1000, map[string]float64{"Z": -1, p: 1}))
		mustAdd(n, rxn(sink, 0, 1000, map[string]float64{p: -1}))
		conf[m] = confidence.Medium
		conf[sink] = confidence.Unknown
	}
	return n, conf
}

// CoreNetwork is a small lumped glycolysis with an ATP/ADP moiety, a pentose
// bypass and a biomass objective. Glucose uptake is limited to 10.
func CoreNetwork() *network.Network {
	n := network.New("core", "lumped central carbon")
	mustAdd(n, rxn("EX_glc", 0, 10, map[string]float64{"glc": 1}))
	mustAdd(n, rxn("HEX", 0, 1000, map[string]float64{"glc": -1, "atp": -1, "g6p": 1, "adp": 1}))
	mustAdd(n, rxn("PGI", -1000, 1000, map[string]float64{"g6p": -1, "f6p": 1}))
	mustAdd(n, rxn("PFK", 0, 1000, map[string]float64{"f6p": -1, "atp": -1, "fdp": 1, "adp": 1}))
	mustAdd(n, rxn("ALD", 0, 1000, map[string]float64{"fdp": -1, "g3p": 2}))
	mustAdd(n, rxn("GAPD", 0, 1000, map[string]float64{"g3p": -1, "adp": -2, "pyr": 1, "atp": 2}))
	mustAdd(n, rxn("LDH", -1000, 1000, map[string]float64{"pyr": -1, "lac": 1}))
	mustAdd(n, rxn("EX_lac", 0, 1000, map[string]float64{"lac": -1}))
	mustAdd(n, rxn("PDH", 0, 1000, map[string]float64{"pyr": -1, "accoa": 1}))
	mustAdd(n, rxn("EX_ac", 0, 1000, map[string]float64{"accoa": -1}))
	mustAdd(n, rxn("G6PDH", 0, 1000, map[string]float64{"g6p": -1, "ru5p": 1}))
	mustAdd(n, rxn("RPI", 0, 1000, map[string]float64{"ru5p": -1, "f6p": 1}))
	mustAdd(n, rxn("ATPM", 0, 1000, map[string]float64{"atp": -1, "adp": 1}))
	mustAdd(n, rxn("BIOMASS", 0, 1000, map[string]float64{"g6p": -1, "accoa": -1, "atp": -3, "adp": 3}))
	r, _ := n.Reaction("BIOMASS")
	r.ObjectiveCoefficient = 1
	return n
}

// UniformConfidence assigns the same level to every reaction of n
func UniformConfidence(n *network.Network, l confidence.Level) confidence.Map {
	m := make(confidence.Map, len(n.Reactions))
	for _, r := range n.Reactions {
		m[r.ID] = l
	}
	return m
}
