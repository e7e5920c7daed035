package flux

import (
	"math"
	"sort"

	"gocorda/domain/lp"
	"gocorda/domain/network"
)

// ClampBounds widens finite open bounds to ±upper: a lower bound below -tol
// becomes -upper and an upper bound above tol becomes upper.
func ClampBounds(lb, ub, upper, tol float64) (float64, float64) {
	if lb < -tol {
		lb = -upper
	}
	if ub > tol {
		ub = upper
	}
	return lb, ub
}

// SplitBounds returns the forward and backward variable bounds of a reaction
// with net bounds [lb, ub]
func SplitBounds(lb, ub float64) (fwdLb, fwdUb, bwdLb, bwdUb float64) {
	return math.Max(lb, 0), math.Max(ub, 0), math.Max(-ub, 0), math.Max(-lb, 0)
}

// SplitProgram builds the irreversible steady-state program of a network.
// Reaction i owns columns 2i (forward) and 2i+1 (backward); the objective is zero.
// Bounds are taken as they are, callers clamp beforehand.
func SplitProgram(n *network.Network) (*lp.Program, []network.Variable) {
	nv := 2 * len(n.Reactions)
	p := &lp.Program{
		Objective: make([]float64, nv),
		Sense:     lp.Minimize,
		Lower:     make([]float64, nv),
		Upper:     make([]float64, nv),
		Rows:      make([][]lp.Term, len(n.Metabolites)),
	}
	vars := make([]network.Variable, nv)
	for i := range n.Reactions {
		r := &n.Reactions[i]
		f, b := 2*i, 2*i+1
		vars[f], vars[b] = network.Fwd(r.ID), network.Bwd(r.ID)
		p.Lower[f], p.Upper[f], p.Lower[b], p.Upper[b] = SplitBounds(r.LowerBound, r.UpperBound)
		for mid, c := range r.Metabolites {
			if c == 0 {
				continue
			}
			row, ok := n.MetaboliteIndex(mid)
			if !ok {
				continue
			}
			p.Rows[row] = append(p.Rows[row], lp.Term{Col: f, Coef: c}, lp.Term{Col: b, Coef: -c})
		}
	}
	sortRows(p.Rows)
	return p, vars
}

// NetProgram builds the flux-balance program with one variable per reaction,
// maximizing the network objective. Infinite bounds are clamped to ±upper.
func NetProgram(n *network.Network, upper float64) *lp.Program {
	nv := len(n.Reactions)
	p := &lp.Program{
		Objective: make([]float64, nv),
		Sense:     lp.Maximize,
		Lower:     make([]float64, nv),
		Upper:     make([]float64, nv),
		Rows:      make([][]lp.Term, len(n.Metabolites)),
	}
	for i := range n.Reactions {
		r := &n.Reactions[i]
		p.Objective[i] = r.ObjectiveCoefficient
		p.Lower[i] = math.Max(r.LowerBound, -upper)
		p.Upper[i] = math.Min(r.UpperBound, upper)
		for mid, c := range r.Metabolites {
			if c == 0 {
				continue
			}
			if row, ok := n.MetaboliteIndex(mid); ok {
				p.Rows[row] = append(p.Rows[row], lp.Term{Col: i, Coef: c})
			}
		}
	}
	sortRows(p.Rows)
	return p
}

// sortRows orders terms by column so programs are identical across runs
// regardless of map iteration order.
func sortRows(rows [][]lp.Term) {
	for _, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].Col < row[j].Col })
	}
}
