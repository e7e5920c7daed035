// Package flux builds flux-balance linear programs from networks and owns the
// mutable solver state used while searching them.
package flux

import (
	"gocorda/domain/lp"
	"gocorda/ports"
)

// Session is an LP whose bounds and objective are mutated in place between
// solves. It is not safe for concurrent use; one owner drives it.
type Session struct {
	solver ports.LPSolver
	prog   *lp.Program
	solves int
}

// NewSession takes ownership of a copy of prog
func NewSession(solver ports.LPSolver, prog *lp.Program) *Session {
	return &Session{solver: solver, prog: prog.Clone()}
}

// NumVars returns the number of variables
func (s *Session) NumVars() int {
	return s.prog.NumVars()
}

// Bounds returns the current bounds of variable j
func (s *Session) Bounds(j int) (lb, ub float64) {
	return s.prog.Lower[j], s.prog.Upper[j]
}

// SetBounds replaces the bounds of variable j
func (s *Session) SetBounds(j int, lb, ub float64) {
	s.prog.Lower[j], s.prog.Upper[j] = lb, ub
}

// SetUpper replaces the upper bound of variable j
func (s *Session) SetUpper(j int, ub float64) {
	s.prog.Upper[j] = ub
}

// Objective returns a copy of the objective vector
func (s *Session) Objective() []float64 {
	return append([]float64(nil), s.prog.Objective...)
}

// SetObjective sets the listed coefficients and leaves the others untouched
func (s *Session) SetObjective(coefs map[int]float64) {
	for j, c := range coefs {
		s.prog.Objective[j] = c
	}
}

// ZeroObjective clears every objective coefficient
func (s *Session) ZeroObjective() {
	for j := range s.prog.Objective {
		s.prog.Objective[j] = 0
	}
}

// WithBounds runs fn with variable j temporarily bounded to [lb, ub]. The
// previous bounds are restored however fn exits, including panics.
func (s *Session) WithBounds(j int, lb, ub float64, fn func() error) error {
	oldLb, oldUb := s.Bounds(j)
	defer s.SetBounds(j, oldLb, oldUb)
	s.SetBounds(j, lb, ub)
	return fn()
}

// WithObjective runs fn with the objective set to exactly coefs (all other
// coefficients zero) and restores the previous objective afterwards.
func (s *Session) WithObjective(coefs map[int]float64, fn func() error) error {
	saved := s.Objective()
	defer func() { copy(s.prog.Objective, saved) }()
	s.ZeroObjective()
	s.SetObjective(coefs)
	return fn()
}

// Optimize solves the current program in the given direction
func (s *Session) Optimize(sense lp.Sense) (lp.Result, error) {
	s.solves++
	s.prog.Sense = sense
	return s.solver.Solve(s.prog)
}

// Solves returns how many times Optimize has been called
func (s *Session) Solves() int {
	return s.solves
}
