package corda

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"gocorda/domain/confidence"
	"gocorda/domain/core"
	"gocorda/domain/lp"
	"gocorda/domain/network"
	"gocorda/internal/errors"
)

// SearchOptions tunes a support search
type SearchOptions struct {
	// Confidence overrides the live confidence for penalties and for deciding
	// which active variables count as needed. Missing variables fall back to
	// the live map.
	Confidence map[network.Variable]confidence.Level
	// PenalizeMedium charges low and medium reactions a unit cost
	PenalizeMedium bool
	// DetectRedundancy re-solves up to N times with inflated costs
	DetectRedundancy bool
}

// DefaultSearchOptions penalizes medium reactions and detects redundancy
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{PenalizeMedium: true, DetectRedundancy: true}
}

type notOptimalError struct {
	status lp.Status
}

func (e notOptimalError) Error() string {
	return "solver status " + e.status.String()
}

// Associated finds, for every target, the excluded, low or medium variables
// that have to be active for the target to carry at least TFlux.
//
// Targets are deduplicated and processed in sorted order. A target that is
// found infeasible is demoted to exclude and maps to an empty set; a solver
// breakdown keeps the target's confidence and the support found so far. Bounds and
// objective are restored before Associated returns.
func (r *Reconstructor) Associated(targets []network.Variable, opts SearchOptions) (map[network.Variable]network.VariableSet, error) {
	unique := network.NewVariableSet()
	for _, t := range targets {
		if _, ok := r.cols[t]; !ok {
			return nil, errors.WithCode(errors.CodeNotFound, fmt.Errorf("target %s: %w", t, core.ErrReactionNotFound))
		}
		unique.Add(t)
	}

	level := r.levels(opts.Confidence)
	pen := r.penalties(level, opts.PenalizeMedium)
	rounds := 1
	if opts.DetectRedundancy {
		rounds = r.opts.N
	}

	out := make(map[network.Variable]network.VariableSet, len(unique))
	for _, t := range unique.Sorted() {
		out[t] = r.support(t, pen, level, rounds, opts.DetectRedundancy)
	}
	r.session.ZeroObjective()
	return out, nil
}

func (r *Reconstructor) support(t network.Variable, pen map[int]float64, level levelFunc, rounds int, redundancy bool) network.VariableSet {
	j := r.cols[t]
	lb, ub := r.session.Bounds(j)
	if ub < r.opts.Tolerance {
		r.markImpossible(t, "upper bound below tolerance")
		return network.NewVariableSet()
	}

	needed := network.NewVariableSet()
	found := 0
	err := r.session.WithBounds(j, math.Max(r.opts.TFlux, lb), r.opts.Upper, func() error {
		cost := make(map[int]float64, len(pen))
		for col, c := range pen {
			cost[col] = c
		}
		for round := 0; round < rounds; round++ {
			var fresh []network.Variable
			err := r.session.WithObjective(cost, func() error {
				res, err := r.session.Optimize(lp.Minimize)
				if err != nil {
					return err
				}
				if res.Status != lp.Optimal {
					return notOptimalError{status: res.Status}
				}
				fresh = r.active(res.Values, t, level, needed)
				return nil
			})
			if err != nil {
				return err
			}
			if len(fresh) == 0 {
				break
			}
			if round > 0 {
				found++
			}
			for _, v := range fresh {
				col := r.cols[v]
				if c, ok := cost[col]; ok {
					cost[col] = c * r.opts.CostIncrease
				}
				needed.Add(v)
			}
		}
		return nil
	})
	if err != nil {
		if nerr, ok := err.(notOptimalError); ok && nerr.status != lp.Failed {
			r.markImpossible(t, err.Error())
			return network.NewVariableSet()
		}
		// only a proven infeasible target is demoted
		r.logger.Warn("solver failed, target left unchanged", zap.Stringer("target", t), zap.Error(err))
		return needed
	}
	if redundancy {
		r.redundancies[t] = found
	}
	return needed
}

// active returns the variables of x above tolerance that are excluded, low
// or medium under level, are not the target and are not in seen yet
func (r *Reconstructor) active(x []float64, target network.Variable, level levelFunc, seen network.VariableSet) []network.Variable {
	var out []network.Variable
	for j, v := range r.vars {
		if j >= len(x) || x[j] <= r.opts.Tolerance || v == target || seen.Has(v) {
			continue
		}
		switch level(v) {
		case confidence.Exclude, confidence.Low, confidence.Medium:
			out = append(out, v)
		}
	}
	return out
}
