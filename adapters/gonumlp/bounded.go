package gonumlp

import (
	"math"

	"gocorda/domain/lp"

	"gonum.org/v1/gonum/mat"
)

const (
	// pivotTolerance is the smallest tableau entry accepted as a pivot
	pivotTolerance = 1e-9
	// dualTolerance is the reduced cost below which a column cannot improve
	dualTolerance = 1e-9
	// ratioTie treats step lengths this close as equal
	ratioTie = 1e-12
	// blandAfter degenerate pivots in a row switch to Bland's rule
	blandAfter = 20
	// refactorEvery pivots the tableau is rebuilt from the original columns
	refactorEvery = 50
)

// tableau is a dense bounded-variable simplex over
//
//	A y = b, 0 <= y <= width
//
// with one artificial column per row. Columns 0..k-1 are structural and
// k..k+m-1 artificial, so the artificial block of t always holds the basis
// inverse. Nonbasic columns sit at zero or, when upper is set, at their width.
type tableau struct {
	m, k, n int
	a       *mat.Dense // sign-normalized [A | I]
	b       []float64  // sign-normalized, non-negative
	ub      []float64
	t       *mat.Dense // B⁻¹ [A | I]
	xB      []float64
	basis   []int
	pos     []int // row of a basic column, else -1
	upper   []bool

	maxIter int
	iters   int
	pivots  int
}

func newTableau(rows []denseRow, width []float64, maxIter int) *tableau {
	m, k := len(rows), len(width)
	n := k + m
	tb := &tableau{
		m:       m,
		k:       k,
		n:       n,
		a:       mat.NewDense(m, n, nil),
		b:       make([]float64, m),
		ub:      make([]float64, n),
		xB:      make([]float64, m),
		basis:   make([]int, m),
		pos:     make([]int, n),
		upper:   make([]bool, n),
		maxIter: maxIter,
	}
	for i, r := range rows {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		row := tb.a.RawRowView(i)
		for c, v := range r.coefs {
			row[c] = sign * v
		}
		row[k+i] = 1
		tb.b[i] = sign * r.rhs
	}
	copy(tb.ub, width)
	for c := 0; c < k; c++ {
		tb.pos[c] = -1
	}
	for i := 0; i < m; i++ {
		tb.ub[k+i] = math.Inf(1)
		tb.basis[i] = k + i
		tb.pos[k+i] = i
	}
	tb.t = mat.DenseCopyOf(tb.a)
	copy(tb.xB, tb.b)
	return tb
}

// value is the current level of column j
func (tb *tableau) value(j int) float64 {
	if r := tb.pos[j]; r >= 0 {
		return tb.xB[r]
	}
	if tb.upper[j] {
		return tb.ub[j]
	}
	return 0
}

// infeasibility is the total level of the artificial columns
func (tb *tableau) infeasibility() float64 {
	sum := 0.0
	for i := 0; i < tb.m; i++ {
		sum += tb.value(tb.k + i)
	}
	return sum
}

// refactor recomputes t and xB from the basis columns of a, discarding the
// round-off accumulated by pivoting.
func (tb *tableau) refactor() bool {
	m := tb.m
	B := mat.NewDense(m, m, nil)
	for r, j := range tb.basis {
		for i := 0; i < m; i++ {
			B.Set(i, r, tb.a.At(i, j))
		}
	}
	rhs := mat.NewDense(m, tb.n+1, nil)
	rhs.Slice(0, m, 0, tb.n).(*mat.Dense).Copy(tb.a)
	for i := 0; i < m; i++ {
		v := tb.b[i]
		row := tb.a.RawRowView(i)
		for j := 0; j < tb.n; j++ {
			if tb.pos[j] < 0 && tb.upper[j] {
				v -= row[j] * tb.ub[j]
			}
		}
		rhs.Set(i, tb.n, v)
	}

	var x mat.Dense
	if err := x.Solve(B, rhs); err != nil {
		return false
	}
	tb.t.Copy(x.Slice(0, m, 0, tb.n))
	for i := 0; i < m; i++ {
		tb.xB[i] = x.At(i, tb.n)
	}
	tb.pivots = 0
	return true
}

func (tb *tableau) pivot(r, e int) {
	pr := tb.t.RawRowView(r)
	inv := 1 / pr[e]
	for j := range pr {
		pr[j] *= inv
	}
	for i := 0; i < tb.m; i++ {
		if i == r {
			continue
		}
		row := tb.t.RawRowView(i)
		f := row[e]
		if f == 0 {
			continue
		}
		for j, v := range pr {
			row[j] -= f * v
		}
		row[e] = 0
	}
	tb.pos[tb.basis[r]] = -1
	tb.basis[r] = e
	tb.pos[e] = r
	tb.pivots++
}

// entering picks an improving nonbasic column, the steepest by reduced cost
// or, under Bland's rule, the lowest index. It returns -1 at optimality.
func (tb *tableau) entering(cost []float64, bland bool) int {
	var costly []int
	for r, j := range tb.basis {
		if cost[j] != 0 {
			costly = append(costly, r)
		}
	}
	best, e := dualTolerance, -1
	for j := 0; j < tb.n; j++ {
		if tb.pos[j] >= 0 || tb.ub[j] <= 0 {
			continue
		}
		d := cost[j]
		for _, r := range costly {
			d -= cost[tb.basis[r]] * tb.t.At(r, j)
		}
		score := -d
		if tb.upper[j] {
			score = d
		}
		if score <= dualTolerance {
			continue
		}
		if bland {
			return j
		}
		if score > best {
			best, e = score, j
		}
	}
	return e
}

// run iterates to optimality for cost
func (tb *tableau) run(cost []float64) lp.Status {
	degenerate := 0
	for {
		if tb.iters >= tb.maxIter {
			return lp.Failed
		}
		if tb.pivots >= refactorEvery && !tb.refactor() {
			return lp.Failed
		}
		bland := degenerate > blandAfter
		e := tb.entering(cost, bland)
		if e < 0 {
			return lp.Optimal
		}
		tb.iters++

		delta := 1.0
		if tb.upper[e] {
			delta = -1
		}
		step, leave, alpha := tb.ub[e], -1, 0.0
		for i := 0; i < tb.m; i++ {
			a := delta * tb.t.At(i, e)
			var ratio float64
			switch ub := tb.ub[tb.basis[i]]; {
			case a > pivotTolerance:
				ratio = tb.xB[i] / a
			case a < -pivotTolerance && !math.IsInf(ub, 1):
				ratio = (ub - tb.xB[i]) / -a
			default:
				continue
			}
			ratio = math.Max(ratio, 0)
			switch {
			case ratio < step-ratioTie:
				step, leave, alpha = ratio, i, a
			case leave >= 0 && math.Abs(ratio-step) <= ratioTie:
				if (bland && tb.basis[i] < tb.basis[leave]) || (!bland && math.Abs(a) > math.Abs(alpha)) {
					step, leave, alpha = ratio, i, a
				}
			}
		}
		if math.IsInf(step, 1) {
			return lp.Unbounded
		}
		if step <= ratioTie {
			degenerate++
		} else {
			degenerate = 0
		}

		if step != 0 {
			for i := 0; i < tb.m; i++ {
				if a := tb.t.At(i, e); a != 0 {
					tb.xB[i] -= delta * a * step
				}
			}
		}
		if leave < 0 {
			tb.upper[e] = !tb.upper[e]
			continue
		}

		level := delta * step
		if tb.upper[e] {
			level += tb.ub[e]
		}
		tb.upper[tb.basis[leave]] = alpha < 0
		tb.upper[e] = false
		tb.pivot(leave, e)
		tb.xB[leave] = level
	}
}

// retireArtificials fixes every artificial at zero after a feasible phase 1
// and pivots basic ones out wherever a structural column can replace them.
// Artificials left in the basis belong to redundant rows.
func (tb *tableau) retireArtificials() {
	for i := 0; i < tb.m; i++ {
		tb.ub[tb.k+i] = 0
	}
	for r := 0; r < tb.m; r++ {
		if tb.basis[r] < tb.k {
			continue
		}
		tb.xB[r] = 0
		e, best := -1, 1e-7
		for j := 0; j < tb.k; j++ {
			if a := math.Abs(tb.t.At(r, j)); tb.pos[j] < 0 && a > best {
				e, best = j, a
			}
		}
		if e < 0 {
			continue
		}
		level := tb.value(e)
		tb.upper[tb.basis[r]] = false
		tb.upper[e] = false
		tb.pivot(r, e)
		tb.xB[r] = level
	}
}

// solveBounded runs both simplex phases and returns the structural levels
func solveBounded(rows []denseRow, width, cost []float64, maxIter int) ([]float64, lp.Status) {
	k := len(width)
	if len(rows) == 0 {
		y := make([]float64, k)
		for c := range y {
			if cost[c] < 0 {
				y[c] = width[c]
			}
		}
		return y, lp.Optimal
	}

	tb := newTableau(rows, width, maxIter)
	phase1 := make([]float64, tb.n)
	for i := 0; i < tb.m; i++ {
		phase1[k+i] = 1
	}
	if st := tb.run(phase1); st != lp.Optimal {
		return nil, st
	}
	scale := 1.0
	for _, v := range tb.b {
		scale = math.Max(scale, v)
	}
	if tb.infeasibility() > feasibilityTolerance*scale {
		return nil, lp.Infeasible
	}

	tb.retireArtificials()
	phase2 := make([]float64, tb.n)
	copy(phase2, cost)
	if st := tb.run(phase2); st != lp.Optimal {
		return nil, st
	}
	if !tb.refactor() {
		return nil, lp.Failed
	}

	y := make([]float64, k)
	for c := range y {
		y[c] = math.Min(math.Max(tb.value(c), 0), width[c])
	}
	return y, lp.Optimal
}
