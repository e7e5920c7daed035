// Package gonumlp implements ports.LPSolver on gonum.
//
// Every variable is shifted onto its lower bound and fixed variables are
// substituted out. The shifted program is solved by a dense bounded-variable
// simplex that keeps upper bounds implicit and starts from an artificial
// basis, so no slack rows are added and the basis is always well defined.
// When that simplex breaks down numerically the program is re-solved in
// standard form with gonum's Simplex before the solve is reported as failed.
// Every optimal point is checked against the original rows.
package gonumlp

import (
	"errors"
	"fmt"
	"math"

	"gocorda/domain/lp"

	"gonum.org/v1/gonum/mat"
	golp "gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	// DefaultTolerance is the reduced-cost tolerance handed to gonum
	DefaultTolerance = 1e-9
	// rankTolerance decides when an eliminated row counts as zero
	rankTolerance = 1e-9
	// feasibilityTolerance bounds row residuals, relative to the row scale
	feasibilityTolerance = 1e-7
)

// Solver solves bounded linear programs
type Solver struct {
	// Tolerance is passed to gonum's Simplex on the fallback path
	Tolerance float64
	// MaxIterations caps the pivots of one solve; zero scales it with the
	// program size
	MaxIterations int
}

// New returns a solver with the default tolerance
func New() *Solver {
	return &Solver{Tolerance: DefaultTolerance}
}

// Solve implements ports.LPSolver
func (s *Solver) Solve(p *lp.Program) (lp.Result, error) {
	if err := p.Validate(); err != nil {
		return lp.Result{}, err
	}

	n := p.NumVars()
	width := make([]float64, n)
	col := make([]int, n)
	var free []int
	for j := 0; j < n; j++ {
		width[j] = p.Upper[j] - p.Lower[j]
		if width[j] <= 0 {
			col[j] = -1
			continue
		}
		col[j] = len(free)
		free = append(free, j)
	}
	k := len(free)

	rows := make([]denseRow, 0, len(p.Rows))
	for i, terms := range p.Rows {
		r := denseRow{coefs: make([]float64, k)}
		if p.RHS != nil {
			r.rhs = p.RHS[i]
		}
		for _, t := range terms {
			// x = lower + y moves the lower bound to the right-hand side
			r.rhs -= t.Coef * p.Lower[t.Col]
			if c := col[t.Col]; c >= 0 {
				r.coefs[c] += t.Coef
			}
		}
		if r.empty() {
			if math.Abs(r.rhs) > feasibilityTolerance*(1+math.Abs(r.rhs)) {
				return lp.Result{Status: lp.Infeasible}, nil
			}
			continue
		}
		rows = append(rows, r)
	}

	values := append([]float64(nil), p.Lower...)
	if k == 0 {
		return s.finish(p, values), nil
	}

	freeWidth := make([]float64, k)
	cost := make([]float64, k)
	sign := 1.0
	if p.Sense == lp.Maximize {
		sign = -1
	}
	for c, j := range free {
		freeWidth[c] = width[j]
		cost[c] = sign * p.Objective[j]
	}

	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = 50*(k+len(rows)) + 1000
	}
	y, status := solveBounded(rows, freeWidth, cost, maxIter)
	if status == lp.Failed {
		y, status = s.solveStandard(rows, freeWidth, cost)
	}
	if status != lp.Optimal {
		return lp.Result{Status: status}, nil
	}

	for c, j := range free {
		values[j] = p.Lower[j] + y[c]
	}
	if !satisfies(p, values) {
		return lp.Result{Status: lp.Failed}, nil
	}
	return s.finish(p, values), nil
}

// solveStandard solves the shifted program in gonum's standard form, with one
// slack row per variable for its upper bound
func (s *Solver) solveStandard(rows []denseRow, width, cost []float64) (y []float64, status lp.Status) {
	basis, ok := independentRows(rows, len(width))
	if !ok {
		return nil, lp.Infeasible
	}

	k, m := len(width), len(basis)
	A := mat.NewDense(m+k, 2*k, nil)
	b := make([]float64, m+k)
	for i, r := range basis {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		for c, v := range r.coefs {
			if v != 0 {
				A.Set(i, c, sign*v)
			}
		}
		b[i] = sign * r.rhs
	}
	for c := range width {
		A.Set(m+c, c, 1)
		A.Set(m+c, k+c, 1)
		b[m+c] = width[c]
	}
	obj := make([]float64, 2*k)
	copy(obj, cost)

	defer func() {
		if r := recover(); r != nil {
			y, status = nil, lp.Failed
		}
	}()

	tol := s.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	_, x, err := golp.Simplex(obj, A, b, tol, nil)
	if err != nil {
		if errors.Is(err, golp.ErrUnbounded) {
			return nil, lp.Unbounded
		}
		// gonum also reports infeasible when its own phase 1 gets stuck, so
		// nothing from this path is trusted to prove infeasibility
		return nil, lp.Failed
	}

	y = make([]float64, k)
	for c := range y {
		y[c] = math.Min(math.Max(x[c], 0), width[c])
	}
	return y, lp.Optimal
}

// satisfies reports whether x meets every row of p within tolerance
func satisfies(p *lp.Program, x []float64) bool {
	for i, terms := range p.Rows {
		rhs := 0.0
		if p.RHS != nil {
			rhs = p.RHS[i]
		}
		lhs, scale := 0.0, 1+math.Abs(rhs)
		for _, t := range terms {
			v := t.Coef * x[t.Col]
			lhs += v
			scale = math.Max(scale, math.Abs(v))
		}
		if math.Abs(lhs-rhs) > feasibilityTolerance*scale {
			return false
		}
	}
	return true
}

func (s *Solver) finish(p *lp.Program, values []float64) lp.Result {
	obj := 0.0
	for j, c := range p.Objective {
		obj += c * values[j]
	}
	return lp.Result{Status: lp.Optimal, Objective: obj, Values: values}
}

type denseRow struct {
	coefs []float64
	rhs   float64
}

func (r denseRow) empty() bool {
	for _, v := range r.coefs {
		if v != 0 {
			return false
		}
	}
	return true
}

// independentRows keeps a maximal linearly independent subset of rows.
// It reports false when a dependent row contradicts the kept ones.
func independentRows(rows []denseRow, k int) ([]denseRow, bool) {
	var kept []denseRow
	var reduced [][]float64
	var pivots []int

	for _, r := range rows {
		v := make([]float64, k+1)
		copy(v, r.coefs)
		v[k] = r.rhs

		scale := 0.0
		for _, c := range r.coefs {
			scale = math.Max(scale, math.Abs(c))
		}

		for bi, brow := range reduced {
			p := pivots[bi]
			if v[p] == 0 {
				continue
			}
			f := v[p] / brow[p]
			for c := range v {
				v[c] -= f * brow[c]
			}
		}

		piv, best := -1, 0.0
		for c := 0; c < k; c++ {
			if a := math.Abs(v[c]); a > best {
				piv, best = c, a
			}
		}
		if piv < 0 || best <= rankTolerance*math.Max(scale, 1) {
			if math.Abs(v[k]) > feasibilityTolerance*(1+math.Abs(r.rhs)) {
				return nil, false
			}
			continue
		}
		reduced = append(reduced, v)
		pivots = append(pivots, piv)
		kept = append(kept, r)
	}
	return kept, true
}

// String identifies the backend in logs
func (s *Solver) String() string {
	return fmt.Sprintf("gonum-simplex(tol=%g)", s.Tolerance)
}
