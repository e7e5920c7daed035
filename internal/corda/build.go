package corda

import (
	"math"

	"go.uber.org/zap"

	"gocorda/domain/confidence"
	"gocorda/domain/lp"
	"gocorda/domain/network"
	"gocorda/internal/errors"
)

// Build runs the three escalation phases and freezes the confidence map.
// Targets that cannot carry flux are demoted along the way; only misuse
// returns an error.
func (r *Reconstructor) Build() error {
	if r.state != Unbuilt {
		return errors.AlreadyBuilt("model has been constructed already")
	}

	r.state = Phase1
	high := r.withLevel(confidence.High)
	r.logger.Info("phase 1: supporting high confidence reactions", zap.Int("targets", len(high)))
	need, err := r.Associated(high, DefaultSearchOptions())
	if err != nil {
		return errors.Wrap(err, "phase 1")
	}
	promoted := r.promote(union(need))
	r.logger.Debug("phase 1 done", zap.Int("promoted", promoted))

	r.state = Phase2
	uncertain := r.withLevel(confidence.Low, confidence.Medium)
	r.logger.Info("phase 2: co-support of low and medium reactions", zap.Int("targets", len(uncertain)))
	need, err = r.Associated(uncertain, SearchOptions{PenalizeMedium: false})
	if err != nil {
		return errors.Wrap(err, "phase 2")
	}
	promoted = r.promote(r.frequentlyNeeded(need))
	promoted += r.promoteSelfSufficient()
	r.logger.Debug("phase 2 done", zap.Int("promoted", promoted))

	r.state = Phase3
	r.lockOut()
	high = r.withLevel(confidence.High)
	r.logger.Info("phase 3: re-supporting included reactions", zap.Int("targets", len(high)))
	need, err = r.Associated(high, SearchOptions{PenalizeMedium: false})
	if err != nil {
		return errors.Wrap(err, "phase 3")
	}
	promoted = r.promote(union(need))
	r.logger.Debug("phase 3 done", zap.Int("promoted", promoted))

	r.finalize()
	r.state = Built
	r.logger.Info("reconstruction complete",
		zap.Int("included", countTrue(r.Included())),
		zap.Int("impossible", len(r.impossible)),
		zap.Int("solves", r.Solves()))
	return nil
}

func union(need map[network.Variable]network.VariableSet) network.VariableSet {
	all := network.NewVariableSet()
	for _, set := range need {
		for v := range set {
			all.Add(v)
		}
	}
	return all
}

func (r *Reconstructor) promote(vs network.VariableSet) int {
	n := 0
	for v := range vs {
		if r.conf[v] != confidence.High {
			r.conf[v] = confidence.High
			n++
		}
	}
	return n
}

// frequentlyNeeded returns the excluded variables required by at least
// Support distinct targets
func (r *Reconstructor) frequentlyNeeded(need map[network.Variable]network.VariableSet) network.VariableSet {
	counts := make(map[network.Variable]int)
	for _, set := range need {
		for v := range set {
			if r.conf[v] == confidence.Exclude {
				counts[v]++
			}
		}
	}
	out := network.NewVariableSet()
	for v, c := range counts {
		if c >= r.opts.Support {
			out.Add(v)
		}
	}
	return out
}

// promoteSelfSufficient blocks every variable still excluded and promotes
// each low or medium variable that can exceed TFlux on its own. The blocks
// stay in place for the rest of the build.
func (r *Reconstructor) promoteSelfSufficient() int {
	for j, v := range r.vars {
		if r.conf[v] == confidence.Exclude {
			lb, _ := r.session.Bounds(j)
			r.session.SetUpper(j, math.Max(0, lb))
		}
	}
	r.session.ZeroObjective()

	n := 0
	for j, v := range r.vars {
		if l := r.conf[v]; l != confidence.Low && l != confidence.Medium {
			continue
		}
		var ok bool
		err := r.session.WithObjective(map[int]float64{j: 1}, func() error {
			res, err := r.session.Optimize(lp.Maximize)
			if err != nil {
				return err
			}
			ok = res.Status == lp.Optimal && res.Objective > r.opts.TFlux
			return nil
		})
		if err != nil {
			r.logger.Warn("solver failed", zap.Stringer("variable", v), zap.Error(err))
			continue
		}
		if ok {
			r.conf[v] = confidence.High
			n++
		}
	}
	return n
}

// lockOut blocks the remaining low and medium variables and demotes unknown
// ones to exclude
func (r *Reconstructor) lockOut() {
	for j, v := range r.vars {
		switch r.conf[v] {
		case confidence.Low, confidence.Medium:
			lb, _ := r.session.Bounds(j)
			r.session.SetUpper(j, math.Max(0, lb))
		case confidence.Unknown:
			r.conf[v] = confidence.Exclude
		}
	}
}

// finalize deduplicates the impossible list, removes variables that ended
// up included from it and keeps redundancy counts of included ones only
func (r *Reconstructor) finalize() {
	seen := network.NewVariableSet()
	var kept []network.Variable
	for _, v := range r.impossible {
		if seen.Has(v) || r.conf[v] == confidence.High {
			continue
		}
		seen.Add(v)
		kept = append(kept, v)
	}
	network.SortVariables(kept)
	r.impossible = kept

	for v := range r.redundancies {
		if r.conf[v] != confidence.High || seen.Has(v) {
			delete(r.redundancies, v)
		}
	}
}

func countTrue(m map[string]bool) int {
	n := 0
	for _, ok := range m {
		if ok {
			n++
		}
	}
	return n
}
