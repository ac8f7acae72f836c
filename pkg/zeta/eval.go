package zeta

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"qzft/pkg/field"
)

// Point indexes one lattice position.
type Point struct {
	Row int
	Col int
}

// EvalOptions configure a grid pass. The backend choice (worker count, and
// through pkg/distrib a remote pool) is an explicit parameter here, never
// ambient process state.
type EvalOptions struct {
	// Workers is the number of concurrent row-chunk workers; <= 0 means
	// runtime.NumCPU().
	Workers int

	// Strict aborts the whole pass on the first point that fails to
	// converge. The default instead degrades the point to the magnitude
	// floor and records it in the report.
	Strict bool

	Logger *zap.Logger
}

// EvalReport carries per-pass diagnostics. Degraded lists points whose
// evaluation failed and were clamped to the floor instead of aborting the
// run; the field values there are the floor, not a zeta magnitude.
type EvalReport struct {
	Degraded []Point
}

// EvaluateGrid computes the floored magnitude field |zeta(s)| >= 1e-15 for
// every lattice point. The row index space is split into contiguous chunks
// farmed out to a fixed worker pool; chunks share nothing and results merge
// by index, so chunk completion order is irrelevant. Cancellation is
// checked between chunks, not inside a single point's evaluation.
func EvaluateGrid(ctx context.Context, g *field.Grid, opts EvalOptions) (*mat.Dense, *EvalReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	rows, cols := g.Dims()
	mag := mat.NewDense(rows, cols, nil)
	ev := NewEvaluator(g.Region.MaxAbsT())

	chunk := rows / (workers * 4)
	if chunk < 1 {
		chunk = 1
	}
	logger.Debug("starting grid evaluation",
		zap.Int("rows", rows), zap.Int("cols", cols),
		zap.Int("workers", workers), zap.Int("chunkRows", chunk))

	type span struct{ start, end int }
	spans := make(chan span)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		report   EvalReport
		firstErr error
	)
	evalCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sp := range spans {
				if err := evalCtx.Err(); err != nil {
					return
				}
				var degraded []Point
				for i := sp.start; i < sp.end; i++ {
					t := g.ImVals[i]
					for j := 0; j < cols; j++ {
						m, err := ev.Magnitude(g.ReVals[j], t)
						if err != nil {
							if opts.Strict {
								if ee, ok := err.(*EvalError); ok {
									ee.Row, ee.Col = i, j
								}
								fail(err)
								return
							}
							m = field.MagnitudeFloor
							degraded = append(degraded, Point{Row: i, Col: j})
						}
						if m < field.MagnitudeFloor {
							m = field.MagnitudeFloor
						}
						mag.Set(i, j, m)
					}
				}
				if len(degraded) > 0 {
					mu.Lock()
					report.Degraded = append(report.Degraded, degraded...)
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for start := 0; start < rows; start += chunk {
		end := start + chunk
		if end > rows {
			end = rows
		}
		select {
		case spans <- span{start, end}:
		case <-evalCtx.Done():
			break feed
		}
	}
	close(spans)
	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if n := len(report.Degraded); n > 0 {
		sort.Slice(report.Degraded, func(a, b int) bool {
			pa, pb := report.Degraded[a], report.Degraded[b]
			if pa.Row != pb.Row {
				return pa.Row < pb.Row
			}
			return pa.Col < pb.Col
		})
		logger.Warn("degraded points clamped to magnitude floor", zap.Int("count", n))
	}
	return mag, &report, nil
}
