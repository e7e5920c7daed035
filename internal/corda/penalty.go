package corda

import (
	"gocorda/domain/confidence"
	"gocorda/domain/network"
)

// levelFunc looks up confidence in override first and falls back to the
// live map
type levelFunc func(network.Variable) confidence.Level

func (r *Reconstructor) levels(override map[network.Variable]confidence.Level) levelFunc {
	if override == nil {
		return func(v network.Variable) confidence.Level { return r.conf[v] }
	}
	return func(v network.Variable) confidence.Level {
		if l, ok := override[v]; ok {
			return l
		}
		return r.conf[v]
	}
}

// penalty is the cost of one unit of flux through a reaction at level l.
// ok is false when the reaction is free.
func (r *Reconstructor) penalty(l confidence.Level, penalizeMedium bool) (cost float64, ok bool) {
	switch {
	case penalizeMedium && (l == confidence.Low || l == confidence.Medium):
		return 1, true
	case l == confidence.Exclude:
		return r.opts.PenaltyFactor, true
	default:
		return 0, false
	}
}

// penalties builds the cost table by column. The forward level decides the
// cost of both directions of a reaction.
func (r *Reconstructor) penalties(level levelFunc, penalizeMedium bool) map[int]float64 {
	pen := make(map[int]float64)
	for i := range r.net.Reactions {
		cost, ok := r.penalty(level(network.Fwd(r.net.Reactions[i].ID)), penalizeMedium)
		if !ok {
			continue
		}
		pen[2*i] = cost
		pen[2*i+1] = cost
	}
	return pen
}

// Penalties returns the cost table for the current confidence, keyed by variable
func (r *Reconstructor) Penalties(penalizeMedium bool) map[network.Variable]float64 {
	pen := r.penalties(r.levels(nil), penalizeMedium)
	out := make(map[network.Variable]float64, len(pen))
	for j, c := range pen {
		out[r.vars[j]] = c
	}
	return out
}
