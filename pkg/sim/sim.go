// Package sim composes one full simulation run: sample the grid, evaluate
// the zeta magnitude field, derive the potential landscape and sieve for
// zero candidates. Each call is an independent unit of work with no shared
// mutable state, so concurrent runs (e.g. dashboard requests) never
// interfere.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"qzft/pkg/config"
	"qzft/pkg/distrib"
	"qzft/pkg/field"
	"qzft/pkg/zeta"
)

// Params are the inputs of one run.
type Params struct {
	Region    field.Region
	Alpha     float64
	Threshold float64

	// Workers bounds the local evaluation pool; 0 means all CPUs.
	Workers int

	// Strict aborts on the first evaluation failure instead of degrading
	// the point to the magnitude floor.
	Strict bool

	// NATSURL switches the magnitude pass to the distributed backend.
	NATSURL      string
	ChunkRows    int
	ChunkTimeout time.Duration
}

// FromConfig builds run parameters from a config file's defaults.
func FromConfig(cfg config.Config) Params {
	return Params{
		Region: field.Region{
			ReMin: cfg.Region.ReMin,
			ReMax: cfg.Region.ReMax,
			ImMin: cfg.Region.ImMin,
			ImMax: cfg.Region.ImMax,
			Step:  cfg.Region.StepSize,
		},
		Alpha:     cfg.Simulation.Alpha,
		Threshold: cfg.Simulation.ZeroThreshold,
		Workers:   cfg.Simulation.Workers,
		Strict:    cfg.Simulation.Strict,
		NATSURL:      cfg.NATS.URL,
		ChunkRows:    cfg.NATS.ChunkRows,
		ChunkTimeout: time.Duration(cfg.NATS.ChunkTimeoutSec) * time.Second,
	}
}

// Result is everything a run produces. All arrays share the grid's shape
// and are immutable once returned.
type Result struct {
	Grid    *field.Grid
	ZetaAbs *mat.Dense
	Fields  *field.DerivedFields
	Zeros   []field.ZeroCandidate
	Report  *zeta.EvalReport
	Elapsed time.Duration
}

// Run executes a full simulation. Region validation happens before any
// computation; cancellation via ctx is honored between evaluation chunks.
func Run(ctx context.Context, p Params, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	grid, err := field.NewGrid(p.Region)
	if err != nil {
		return nil, err
	}
	rows, cols := grid.Dims()
	logger.Info("sampled grid",
		zap.Int("rows", rows), zap.Int("cols", cols),
		zap.Float64("step", p.Region.Step))

	start := time.Now()
	var (
		mag    *mat.Dense
		report *zeta.EvalReport
	)
	if p.NATSURL != "" {
		nc, err := nats.Connect(p.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("sim: connect to NATS at %s: %w", p.NATSURL, err)
		}
		defer nc.Close()
		logger.Info("evaluating on NATS worker pool", zap.String("url", p.NATSURL))
		mag, report, err = distrib.EvaluateGrid(ctx, nc, grid, distrib.Options{
			ChunkRows:    p.ChunkRows,
			ChunkTimeout: p.ChunkTimeout,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
	} else {
		mag, report, err = zeta.EvaluateGrid(ctx, grid, zeta.EvalOptions{
			Workers: p.Workers,
			Strict:  p.Strict,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
	}
	elapsed := time.Since(start)
	logger.Info("evaluated magnitude field",
		zap.Duration("elapsed", elapsed),
		zap.Int("points", rows*cols))

	fields, err := field.Derive(mag, grid.Sigma, p.Alpha)
	if err != nil {
		return nil, err
	}

	zeros := field.LocateZeros(mag, grid, p.Threshold)
	logger.Info("located zero candidates",
		zap.Int("count", len(zeros)), zap.Float64("threshold", p.Threshold))

	return &Result{
		Grid:    grid,
		ZetaAbs: mag,
		Fields:  fields,
		Zeros:   zeros,
		Report:  report,
		Elapsed: elapsed,
	}, nil
}
