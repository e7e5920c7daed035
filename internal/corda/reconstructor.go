package corda

import (
	"fmt"

	"go.uber.org/zap"

	"gocorda/domain/confidence"
	"gocorda/domain/core"
	"gocorda/domain/network"
	"gocorda/internal"
	"gocorda/internal/errors"
	"gocorda/internal/flux"
	"gocorda/ports"
)

// MockPrefix starts the id of every synthetic production target reaction
const MockPrefix = "EX_CORDA_"

// Options configures a reconstruction
type Options struct {
	// N is the maximum number of redundancy rounds per target
	N int
	// PenaltyFactor is the cost of an excluded reaction relative to a low one
	PenaltyFactor float64
	// Support is how many low or medium reactions must need an excluded
	// reaction before it is included
	Support int
	// TFlux is the minimum flux a target has to carry
	TFlux float64
	// Tolerance is the flux magnitude below which a variable counts as inactive
	Tolerance float64
	// Upper replaces every open bound during the search
	Upper float64
	// CostIncrease multiplies the penalty of found reactions between rounds
	CostIncrease float64
	// Targets are additional production tasks, each added as a mock reaction
	Targets []network.Target
	Logger  *internal.Logger
}

// DefaultOptions returns the published CORDA parameters
func DefaultOptions() Options {
	return Options{
		N:             3,
		PenaltyFactor: 100,
		Support:       5,
		TFlux:         1,
		Tolerance:     1e-7,
		Upper:         1e6,
		CostIncrease:  1.01,
	}
}

func (o Options) validate() error {
	switch {
	case o.N < 1:
		return errors.ConfigInvalid(fmt.Sprintf("n must be at least 1, got %d", o.N))
	case o.PenaltyFactor <= 0:
		return errors.ConfigInvalid(fmt.Sprintf("penalty factor must be positive, got %g", o.PenaltyFactor))
	case o.Support < 1:
		return errors.ConfigInvalid(fmt.Sprintf("support must be at least 1, got %d", o.Support))
	case o.Tolerance <= 0:
		return errors.ConfigInvalid(fmt.Sprintf("tolerance must be positive, got %g", o.Tolerance))
	case o.TFlux <= o.Tolerance:
		return errors.ConfigInvalid(fmt.Sprintf("flux threshold %g must exceed the tolerance", o.TFlux))
	case o.Upper <= o.TFlux:
		return errors.ConfigInvalid(fmt.Sprintf("upper bound %g must exceed the flux threshold", o.Upper))
	case o.CostIncrease <= 1:
		return errors.ConfigInvalid(fmt.Sprintf("cost increase must be greater than 1, got %g", o.CostIncrease))
	}
	return nil
}

// State is the progress of a reconstruction
type State int

const (
	Unbuilt State = iota
	Phase1
	Phase2
	Phase3
	Built
)

func (s State) String() string {
	switch s {
	case Unbuilt:
		return "unbuilt"
	case Phase1:
		return "phase1"
	case Phase2:
		return "phase2"
	case Phase3:
		return "phase3"
	default:
		return "built"
	}
}

// Reconstructor is a single-use reconstruction worker
type Reconstructor struct {
	opts   Options
	logger *internal.Logger

	// net holds the original bounds plus the mock reactions
	net       *network.Network
	objective map[string]float64
	mocks     []string

	session *flux.Session
	vars    []network.Variable
	cols    map[network.Variable]int

	conf         map[network.Variable]confidence.Level
	initial      map[network.Variable]confidence.Level
	redundancies map[network.Variable]int
	impossible   []network.Variable
	state        State
}

// New prepares a reconstruction of net. Neither net nor conf is modified;
// production targets are added to an internal copy with high confidence.
func New(net *network.Network, conf confidence.Map, solver ports.LPSolver, opts Options) (*Reconstructor, error) {
	if net == nil {
		return nil, errors.ConfigInvalid("network is required")
	}
	if solver == nil {
		return nil, errors.ConfigInvalid("lp solver is required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	work := net.Copy()
	objective := work.Objective()
	levels := conf.Copy()

	var mocks []string
	for i, t := range opts.Targets {
		id := fmt.Sprintf("%s%d", MockPrefix, i)
		rxn, err := t.DemandReaction(id, work)
		if err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("production target %d (%s): %w", i, t, err))
		}
		if err := work.AddReaction(rxn); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("production target %d: %w", i, err))
		}
		mocks = append(mocks, id)
		levels[id] = confidence.High
	}

	r := &Reconstructor{
		opts:         opts,
		logger:       logger.With(zap.String("model", net.ID)),
		net:          work,
		objective:    objective,
		mocks:        mocks,
		cols:         make(map[network.Variable]int, 2*len(work.Reactions)),
		conf:         make(map[network.Variable]confidence.Level, 2*len(work.Reactions)),
		redundancies: make(map[network.Variable]int, 2*len(work.Reactions)),
	}

	clamped := work.Copy()
	for i := range clamped.Reactions {
		rxn := &clamped.Reactions[i]
		level, ok := levels[rxn.ID]
		if !ok {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("%w: %s missing from confidences", core.ErrReactionNotFound, rxn.ID))
		}
		if !level.Valid() {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("reaction %s: %w: %d", rxn.ID, core.ErrInvalidConfidence, int(level)))
		}
		rxn.LowerBound, rxn.UpperBound = flux.ClampBounds(rxn.LowerBound, rxn.UpperBound, opts.Upper, opts.Tolerance)
		rxn.ObjectiveCoefficient = 0
		for _, v := range []network.Variable{network.Fwd(rxn.ID), network.Bwd(rxn.ID)} {
			r.conf[v] = level
			r.redundancies[v] = 0
		}
	}

	prog, vars := flux.SplitProgram(clamped)
	for j, v := range vars {
		r.cols[v] = j
	}
	r.vars = vars
	r.session = flux.NewSession(solver, prog)
	r.initial = copyLevels(r.conf)

	r.logger.Debug("reconstruction prepared",
		zap.Int("reactions", len(work.Reactions)),
		zap.Int("metabolites", len(work.Metabolites)),
		zap.Strings("mocks", mocks))
	return r, nil
}

// ExpandConfidence assigns each reaction level to both of its variables
func ExpandConfidence(m confidence.Map) map[network.Variable]confidence.Level {
	out := make(map[network.Variable]confidence.Level, 2*len(m))
	for id, l := range m {
		out[network.Fwd(id)] = l
		out[network.Bwd(id)] = l
	}
	return out
}

func copyLevels(m map[network.Variable]confidence.Level) map[network.Variable]confidence.Level {
	out := make(map[network.Variable]confidence.Level, len(m))
	for v, l := range m {
		out[v] = l
	}
	return out
}

// Options returns the parameters the reconstruction runs with
func (r *Reconstructor) Options() Options {
	o := r.opts
	o.Targets = append([]network.Target(nil), r.opts.Targets...)
	return o
}

// State returns the build progress
func (r *Reconstructor) State() State {
	return r.state
}

// Built reports whether Build has completed
func (r *Reconstructor) Built() bool {
	return r.state == Built
}

// Variable resolves "<id>" or "<id>_reverse" to a flux variable
func (r *Reconstructor) Variable(name string) (network.Variable, bool) {
	return network.ParseVariable(r.net, name)
}

// Confidence returns a copy of the current per-variable confidence
func (r *Reconstructor) Confidence() map[network.Variable]confidence.Level {
	return copyLevels(r.conf)
}

// ConfidenceOf returns the current confidence of v
func (r *Reconstructor) ConfidenceOf(v network.Variable) (confidence.Level, bool) {
	l, ok := r.conf[v]
	return l, ok
}

// ReactionConfidence reduces the current confidence to one level per
// reaction, the maximum over both directions
func (r *Reconstructor) ReactionConfidence() confidence.Map {
	return r.reduce(r.conf)
}

// InitialConfidence returns the per-reaction levels the reconstruction
// started from, mocks included
func (r *Reconstructor) InitialConfidence() confidence.Map {
	return r.reduce(r.initial)
}

func (r *Reconstructor) reduce(m map[network.Variable]confidence.Level) confidence.Map {
	out := make(confidence.Map, len(r.net.Reactions))
	for _, rxn := range r.net.Reactions {
		out[rxn.ID] = confidence.Max(m[network.Fwd(rxn.ID)], m[network.Bwd(rxn.ID)])
	}
	return out
}

// Impossible returns the variables that could not carry the minimum flux
func (r *Reconstructor) Impossible() []network.Variable {
	return append([]network.Variable(nil), r.impossible...)
}

// Redundancies returns the number of alternative routes found per target.
// After Build only included, feasible variables are kept.
func (r *Reconstructor) Redundancies() map[network.Variable]int {
	out := make(map[network.Variable]int, len(r.redundancies))
	for v, c := range r.redundancies {
		out[v] = c
	}
	return out
}

// Mocks returns the ids of the production target reactions
func (r *Reconstructor) Mocks() []string {
	return append([]string(nil), r.mocks...)
}

// Network returns a copy of the working network including mock reactions,
// with the original bounds
func (r *Reconstructor) Network() *network.Network {
	return r.net.Copy()
}

// Solves returns the number of LP solves performed so far
func (r *Reconstructor) Solves() int {
	return r.session.Solves()
}

func (r *Reconstructor) markImpossible(v network.Variable, reason string) {
	r.impossible = append(r.impossible, v)
	r.conf[v] = confidence.Exclude
	r.logger.Debug("target cannot carry flux", zap.Stringer("variable", v), zap.String("reason", reason))
}

// withLevel lists variables currently at one of the levels, in column order
func (r *Reconstructor) withLevel(levels ...confidence.Level) []network.Variable {
	var out []network.Variable
	for _, v := range r.vars {
		for _, l := range levels {
			if r.conf[v] == l {
				out = append(out, v)
				break
			}
		}
	}
	return out
}
