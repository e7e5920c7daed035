package corda

import (
	"gocorda/domain/confidence"
	"gocorda/domain/network"
)

// Included reports per reaction, mocks included, whether either direction
// ended at high confidence
func (r *Reconstructor) Included() map[string]bool {
	out := make(map[string]bool, len(r.net.Reactions))
	for id, l := range r.ReactionConfidence() {
		out[id] = l == confidence.High
	}
	return out
}

// Reconstruction returns the reduced network: included reactions that are
// not mocks, with their original bounds. The original objective is kept only
// if all of its reactions survived. An empty name keeps the model name.
func (r *Reconstructor) Reconstruction(name string) *network.Network {
	out := r.net.Copy()
	if name != "" {
		out.Name = name
	}
	included := r.Included()

	kept := out.Reactions[:0]
	for _, rxn := range out.Reactions {
		if included[rxn.ID] && !rxn.IsMock() {
			kept = append(kept, rxn)
		}
	}
	out.Reactions = kept

	valid := true
	for id := range r.objective {
		if !included[id] {
			valid = false
			break
		}
	}
	if !valid {
		for i := range out.Reactions {
			out.Reactions[i].ObjectiveCoefficient = 0
		}
	}
	out.RemoveOrphanMetabolites()
	return out
}
