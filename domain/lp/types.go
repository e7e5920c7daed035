// Package lp defines the linear programs exchanged with LP solver backends.
package lp

import (
	"fmt"
	"math"
)

// Sense is the optimization direction
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

func (s Sense) String() string {
	if s == Maximize {
		return "max"
	}
	return "min"
}

// Status is the outcome of a solve
type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
	// Failed covers numerical breakdowns of the backend
	Failed
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	default:
		return "failed"
	}
}

// Term is one non-zero coefficient of a constraint row
type Term struct {
	Col  int
	Coef float64
}

// Program is: optimize Objective·x subject to Rows·x = RHS and Lower <= x <= Upper.
// A nil RHS means every row equals zero.
type Program struct {
	Objective []float64
	Sense     Sense
	Lower     []float64
	Upper     []float64
	Rows      [][]Term
	RHS       []float64
}

// NumVars returns the number of columns
func (p *Program) NumVars() int {
	return len(p.Lower)
}

// Validate checks dimensions and that all bounds are finite and ordered
func (p *Program) Validate() error {
	n := len(p.Lower)
	if len(p.Upper) != n || len(p.Objective) != n {
		return fmt.Errorf("lp: dimension mismatch: %d lower, %d upper, %d objective", n, len(p.Upper), len(p.Objective))
	}
	if p.RHS != nil && len(p.RHS) != len(p.Rows) {
		return fmt.Errorf("lp: %d rows but %d right-hand sides", len(p.Rows), len(p.RHS))
	}
	for j := 0; j < n; j++ {
		if math.IsInf(p.Lower[j], 0) || math.IsInf(p.Upper[j], 0) || math.IsNaN(p.Lower[j]) || math.IsNaN(p.Upper[j]) {
			return fmt.Errorf("lp: variable %d has a non-finite bound", j)
		}
		if p.Lower[j] > p.Upper[j] {
			return fmt.Errorf("lp: variable %d has lower bound %g above upper bound %g", j, p.Lower[j], p.Upper[j])
		}
	}
	for i, row := range p.Rows {
		for _, t := range row {
			if t.Col < 0 || t.Col >= n {
				return fmt.Errorf("lp: row %d references column %d of %d", i, t.Col, n)
			}
		}
	}
	return nil
}

// Clone returns a deep copy
func (p *Program) Clone() *Program {
	out := &Program{
		Objective: append([]float64(nil), p.Objective...),
		Sense:     p.Sense,
		Lower:     append([]float64(nil), p.Lower...),
		Upper:     append([]float64(nil), p.Upper...),
		Rows:      make([][]Term, len(p.Rows)),
	}
	for i, row := range p.Rows {
		out.Rows[i] = append([]Term(nil), row...)
	}
	if p.RHS != nil {
		out.RHS = append([]float64(nil), p.RHS...)
	}
	return out
}

// Result is the outcome of a solve. Values and Objective are only meaningful when Status is Optimal.
type Result struct {
	Status    Status
	Objective float64
	Values    []float64
}
