package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gocorda/domain/confidence"
	"gocorda/domain/core"
	"gocorda/domain/network"
	"gocorda/domain/run"
	"gocorda/internal"
	"gocorda/internal/corda"
	"gocorda/internal/errors"
	"gocorda/ports"
)

// CodeVersion is folded into every run fingerprint
const CodeVersion = "gocorda/1"

// ReconstructionService runs reconstructions and keeps their records
type ReconstructionService struct {
	solver ports.LPSolver
	runs   ports.RunRepository
	logger *internal.Logger
}

// ReconstructionRequest defines the inputs of one reconstruction
type ReconstructionRequest struct {
	Network *network.Network
	// Confidence gives the level per reaction. When nil, levels are derived
	// from the gene-reaction rules of Network and GeneConfidence.
	Confidence     confidence.Map
	GeneConfidence map[string]confidence.Level
	Options        corda.Options
	// Name is used for the reduced network, defaulting to the input name
	Name string
	// Reuse returns a stored run with the same fingerprint instead of building
	Reuse bool
}

// ReconstructionResult contains the outcome of a reconstruction
type ReconstructionResult struct {
	Run     *run.Record      `json:"run"`
	Summary *corda.Summary   `json:"summary,omitempty"`
	Model   *network.Network `json:"-"`
	Cached  bool             `json:"cached"`
}

// NewReconstructionService creates a reconstruction service. runs may be nil,
// in which case nothing is persisted.
func NewReconstructionService(solver ports.LPSolver, runs ports.RunRepository, logger *internal.Logger) *ReconstructionService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ReconstructionService{
		solver: solver,
		runs:   runs,
		logger: logger,
	}
}

// Reconstruct builds the context-specific network for req and records the run
func (s *ReconstructionService) Reconstruct(ctx context.Context, req ReconstructionRequest) (*ReconstructionResult, error) {
	startTime := core.Now()

	if req.Network == nil {
		return nil, errors.InvalidInput("reconstruction requires a network")
	}
	conf, err := s.resolveConfidence(req)
	if err != nil {
		return nil, err
	}

	opts := req.Options
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	fp := Fingerprint(req.Network, conf, opts)
	logger := s.logger.With(zap.String("model", req.Network.ID), zap.String("fingerprint", fp.Fingerprint.Short()))

	if req.Reuse && s.runs != nil {
		prev, err := s.runs.FindByFingerprint(ctx, fp.Fingerprint)
		switch {
		case err == nil && prev.Status == run.StatusComplete:
			logger.Info("reusing stored run", zap.String("run_id", prev.ID.String()))
			return &ReconstructionResult{Run: prev, Cached: true}, nil
		case err != nil && !errors.HasCode(err, errors.CodeNotFound):
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := run.NewRecord(req.Network.ID, req.Network.Name, parametersOf(opts), fp)
	r, err := corda.New(req.Network, conf, s.solver, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("starting reconstruction", zap.Int("reactions", len(req.Network.Reactions)))
	if err := r.Build(); err != nil {
		rec.Status = run.StatusFailed
		rec.Error = err.Error()
		rec.DurationMS = startTime.Since().Milliseconds()
		s.save(ctx, rec, logger)
		return nil, err
	}

	summary := r.Summary()
	rec.Included = summary.Included
	rec.Total = summary.Reactions
	rec.Solves = summary.Solves
	rec.Report = r.String()
	rec.Reactions = reactionResults(r)
	rec.DurationMS = startTime.Since().Milliseconds()

	name := req.Name
	if name == "" {
		name = req.Network.Name
	}
	model := r.Reconstruction(name)

	if err := s.save(ctx, rec, logger); err != nil {
		return nil, err
	}

	logger.Info("reconstruction complete",
		zap.String("run_id", rec.ID.String()),
		zap.Int("included", rec.Included),
		zap.Int("total", rec.Total),
		zap.Int("solves", rec.Solves),
		zap.Int64("duration_ms", rec.DurationMS))

	return &ReconstructionResult{Run: rec, Summary: &summary, Model: model}, nil
}

// AssociationRequest asks for the support of selected variables
type AssociationRequest struct {
	Network    *network.Network
	Confidence confidence.Map
	Options    corda.Options
	Search     corda.SearchOptions
	// Variables are reaction ids, optionally suffixed with "_reverse"
	Variables []string
}

// Association is the support found for one target variable
type Association struct {
	Target     string   `json:"target"`
	Support    []string `json:"support"`
	Redundancy int      `json:"redundancy"`
	Impossible bool     `json:"impossible"`
}

// Associated runs a standalone support search on a fresh reconstruction
func (s *ReconstructionService) Associated(ctx context.Context, req AssociationRequest) ([]Association, error) {
	if req.Network == nil {
		return nil, errors.InvalidInput("association requires a network")
	}
	opts := req.Options
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	r, err := corda.New(req.Network, req.Confidence, s.solver, opts)
	if err != nil {
		return nil, err
	}

	targets := make([]network.Variable, 0, len(req.Variables))
	for _, name := range req.Variables {
		v, ok := r.Variable(name)
		if !ok {
			return nil, errors.NotFound(fmt.Sprintf("reaction %s", name))
		}
		targets = append(targets, v)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found, err := r.Associated(targets, req.Search)
	if err != nil {
		return nil, err
	}

	impossible := network.NewVariableSet(r.Impossible()...)
	redundancies := r.Redundancies()
	out := make([]Association, 0, len(found))
	for _, v := range network.NewVariableSet(targets...).Sorted() {
		out = append(out, Association{
			Target:     v.String(),
			Support:    found[v].Strings(),
			Redundancy: redundancies[v],
			Impossible: impossible.Has(v),
		})
	}
	return out, nil
}

// GetRun loads a stored run
func (s *ReconstructionService) GetRun(ctx context.Context, id string) (*run.Record, error) {
	if s.runs == nil {
		return nil, errors.NotFound("run store")
	}
	runID, err := core.ParseRunID(id)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return s.runs.Get(ctx, runID)
}

// ListRuns returns the newest stored runs
func (s *ReconstructionService) ListRuns(ctx context.Context, limit int) ([]*run.Record, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.List(ctx, limit)
}

func (s *ReconstructionService) resolveConfidence(req ReconstructionRequest) (confidence.Map, error) {
	if req.Confidence != nil {
		return req.Confidence, nil
	}
	if req.GeneConfidence == nil {
		return nil, errors.InvalidInput("reconstruction requires reaction or gene confidences")
	}
	conf, err := confidence.FromRules(req.Network.GeneRules(), req.GeneConfidence)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return conf, nil
}

func (s *ReconstructionService) save(ctx context.Context, rec *run.Record, logger *internal.Logger) error {
	if s.runs == nil {
		return nil
	}
	if err := s.runs.Save(ctx, rec); err != nil {
		logger.Error("failed to save run", zap.String("run_id", rec.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

// Fingerprint hashes the model, the confidences and the engine parameters
func Fingerprint(net *network.Network, conf confidence.Map, opts corda.Options) run.Fingerprint {
	model := make(map[string]string, len(net.Reactions))
	for i := range net.Reactions {
		rxn := &net.Reactions[i]
		model[rxn.ID] = fmt.Sprintf("%s|%g|%g|%g|%s", network.FormatReaction(rxn),
			rxn.LowerBound, rxn.UpperBound, rxn.ObjectiveCoefficient, rxn.GeneRule)
	}
	return run.NewFingerprint(core.ComputeMapHash(model), core.ComputeMapHash(conf.Ints()), parametersOf(opts), CodeVersion)
}

func parametersOf(opts corda.Options) run.Parameters {
	p := run.Parameters{
		N:             opts.N,
		PenaltyFactor: opts.PenaltyFactor,
		Support:       opts.Support,
		TFlux:         opts.TFlux,
	}
	for _, t := range opts.Targets {
		p.Targets = append(p.Targets, t.String())
	}
	return p
}

func reactionResults(r *corda.Reconstructor) []run.ReactionResult {
	initial := r.InitialConfidence()
	final := r.ReactionConfidence()
	included := r.Included()
	redundancies := r.Redundancies()
	impossible := network.NewVariableSet(r.Impossible()...)
	work := r.Network()

	out := make([]run.ReactionResult, 0, len(work.Reactions))
	for i := range work.Reactions {
		rxn := &work.Reactions[i]
		fwd, bwd := network.Fwd(rxn.ID), network.Bwd(rxn.ID)
		out = append(out, run.ReactionResult{
			ReactionID:  rxn.ID,
			Initial:     int(initial[rxn.ID]),
			Final:       int(final[rxn.ID]),
			Included:    included[rxn.ID],
			Redundancy:  max(redundancies[fwd], redundancies[bwd]),
			Impossible:  impossible.Has(fwd) && impossible.Has(bwd),
			IsMockEntry: rxn.IsMock(),
		})
	}
	return out
}
