package ports

import (
	"gocorda/domain/lp"
)

// LPSolver solves linear programs. A non-optimal outcome is reported through
// Result.Status; the error return is reserved for malformed programs.
type LPSolver interface {
	Solve(p *lp.Program) (lp.Result, error)
}
