package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gocorda/domain/confidence"
	"gocorda/domain/lp"
	"gocorda/domain/network"
	"gocorda/internal"
	"gocorda/internal/corda"
	"gocorda/internal/flux"
	"gocorda/ports"
)

// MinGrowth is the objective value a reduced network must reach to pass validation
const MinGrowth = 1e-6

// BenchmarkResult times the phases of a growth-only reconstruction
type BenchmarkResult struct {
	ModelID    string        `json:"model_id"`
	Setup      time.Duration `json:"setup"`
	Build      time.Duration `json:"build"`
	Validation time.Duration `json:"validation"`
	Reactions  int           `json:"reactions"`
	Included   int           `json:"included"`
	Solves     int           `json:"solves"`
	Growth     float64       `json:"growth"`
	Valid      bool          `json:"valid"`
	Report     string        `json:"report"`
	Error      string        `json:"error,omitempty"`
}

// BenchmarkService measures how fast the minimal growing network of a model is found
type BenchmarkService struct {
	solver  ports.LPSolver
	logger  *internal.Logger
	workers int
}

// NewBenchmarkService creates a benchmark service running at most workers
// models at once
func NewBenchmarkService(solver ports.LPSolver, logger *internal.Logger, workers int) *BenchmarkService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if workers < 1 {
		workers = 1
	}
	return &BenchmarkService{solver: solver, logger: logger, workers: workers}
}

// GrowthConfidence excludes every reaction except those in the objective
func GrowthConfidence(net *network.Network) confidence.Map {
	conf := make(confidence.Map, len(net.Reactions))
	for _, r := range net.Reactions {
		conf[r.ID] = confidence.Exclude
	}
	for id := range net.Objective() {
		conf[id] = confidence.High
	}
	return conf
}

// Benchmark reconstructs net keeping only what growth needs and checks that
// the result still grows
func (s *BenchmarkService) Benchmark(ctx context.Context, net *network.Network, opts corda.Options) (*BenchmarkResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := s.logger.With(zap.String("model", net.ID))
	res := &BenchmarkResult{ModelID: net.ID, Reactions: len(net.Reactions)}

	start := time.Now()
	r, err := corda.New(net, GrowthConfidence(net), s.solver, opts)
	if err != nil {
		return nil, err
	}
	res.Setup = time.Since(start)
	logger.Debug("benchmark setup done", zap.Duration("elapsed", res.Setup))

	start = time.Now()
	if err := r.Build(); err != nil {
		return nil, err
	}
	res.Build = time.Since(start)
	res.Included = r.Summary().Included
	res.Solves = r.Solves()
	res.Report = r.String()
	logger.Debug("benchmark build done", zap.Duration("elapsed", res.Build))

	start = time.Now()
	reduced := r.Reconstruction(net.Name)
	out, err := s.solver.Solve(flux.NetProgram(reduced, upperOf(opts)))
	res.Validation = time.Since(start)
	switch {
	case err != nil:
		res.Error = err.Error()
	case out.Status != lp.Optimal:
		res.Error = "reduced model " + out.Status.String()
	default:
		res.Growth = out.Objective
		res.Valid = out.Objective >= MinGrowth
		if !res.Valid {
			res.Error = "reduced model does not grow"
		}
	}

	if res.Valid {
		logger.Info("benchmark passed",
			zap.Int("included", res.Included),
			zap.Float64("growth", res.Growth),
			zap.Duration("build", res.Build))
	} else {
		logger.Warn("failed model validation", zap.String("reason", res.Error))
	}
	return res, nil
}

// BenchmarkAll benchmarks several models concurrently. Results keep the
// order of nets; the first error cancels the remaining work.
func (s *BenchmarkService) BenchmarkAll(ctx context.Context, nets []*network.Network, opts corda.Options) ([]*BenchmarkResult, error) {
	results := make([]*BenchmarkResult, len(nets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, net := range nets {
		i, net := i, net
		g.Go(func() error {
			res, err := s.Benchmark(ctx, net, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func upperOf(opts corda.Options) float64 {
	if opts.Upper > 0 {
		return opts.Upper
	}
	return corda.DefaultOptions().Upper
}
