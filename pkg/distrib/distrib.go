// Package distrib evaluates a sampling grid over a NATS worker pool.
//
// The client splits the grid's row index space into contiguous chunks and
// sends each as a request on SubjectEvalChunk. Workers join the queue group
// WorkerQueue so each chunk lands on exactly one of them, evaluate their
// rows independently, and reply with the magnitudes. The client merges
// replies by row offset; chunk completion order never matters because each
// chunk owns a disjoint index range.
package distrib

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"qzft/pkg/field"
	"qzft/pkg/zeta"
)

const (
	// SubjectEvalChunk carries chunk evaluation requests.
	SubjectEvalChunk = "qzft.eval.chunk"

	// WorkerQueue is the queue group workers subscribe with.
	WorkerQueue = "workers"
)

// ChunkRequest asks a worker to evaluate the outer product of Sigma and T.
// Coordinates are shipped explicitly so every backend samples the exact
// same lattice values.
type ChunkRequest struct {
	StartRow int       `json:"startRow"`
	Sigma    []float64 `json:"sigma"`
	T        []float64 `json:"t"`
	MaxAbsT  float64   `json:"maxAbsT"`
}

// ChunkResponse returns the floored magnitudes for one chunk, row-major,
// len(Magnitudes) == len(T)*len(Sigma). Degraded lists grid-absolute
// indices of points clamped to the floor after an evaluation failure.
type ChunkResponse struct {
	StartRow   int          `json:"startRow"`
	Magnitudes []float64    `json:"magnitudes"`
	Degraded   []zeta.Point `json:"degraded,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// DefaultChunkTimeout bounds one chunk round trip when Options carries no
// override. A chunk is at most ChunkRows full grid rows, far under a minute
// of evaluation; a request this old means its worker is gone.
const DefaultChunkTimeout = 2 * time.Minute

// Options configure the distributed pass.
type Options struct {
	// ChunkRows is the number of grid rows per request; <= 0 means 8.
	ChunkRows int

	// ChunkTimeout bounds a single chunk request; <= 0 means
	// DefaultChunkTimeout. A chunk that times out fails the run.
	ChunkTimeout time.Duration

	Logger *zap.Logger
}

func (o Options) chunkTimeout() time.Duration {
	if o.ChunkTimeout > 0 {
		return o.ChunkTimeout
	}
	return DefaultChunkTimeout
}

// EvaluateGrid runs the magnitude pass remotely. Any chunk failure fails
// the whole run; there are no retries because an identical re-evaluation is
// deterministic.
func EvaluateGrid(ctx context.Context, nc *nats.Conn, g *field.Grid, opts Options) (*mat.Dense, *zeta.EvalReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	chunkRows := opts.ChunkRows
	if chunkRows <= 0 {
		chunkRows = 8
	}

	rows, cols := g.Dims()
	mag := mat.NewDense(rows, cols, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		report   zeta.EvalReport
		firstErr error
	)
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for _, req := range chunkRequests(g, chunkRows) {
		start := req.StartRow
		end := start + len(req.T)
		wg.Add(1)
		go func(req ChunkRequest, start, end int) {
			defer wg.Done()
			data, err := json.Marshal(req)
			if err != nil {
				fail(fmt.Errorf("distrib: marshal chunk request: %w", err))
				return
			}
			chunkCtx, cancelChunk := context.WithTimeout(reqCtx, opts.chunkTimeout())
			msg, err := nc.RequestWithContext(chunkCtx, SubjectEvalChunk, data)
			cancelChunk()
			if err != nil {
				fail(fmt.Errorf("distrib: chunk rows %d-%d: %w", start, end, err))
				return
			}
			var resp ChunkResponse
			if err := json.Unmarshal(msg.Data, &resp); err != nil {
				fail(fmt.Errorf("distrib: unmarshal chunk response: %w", err))
				return
			}
			if resp.Error != "" {
				fail(fmt.Errorf("distrib: worker failed chunk rows %d-%d: %s", start, end, resp.Error))
				return
			}
			want := (end - start) * cols
			if len(resp.Magnitudes) != want {
				fail(fmt.Errorf("distrib: chunk rows %d-%d returned %d values, want %d",
					start, end, len(resp.Magnitudes), want))
				return
			}
			for i := start; i < end; i++ {
				off := (i - start) * cols
				for j := 0; j < cols; j++ {
					mag.Set(i, j, resp.Magnitudes[off+j])
				}
			}
			if len(resp.Degraded) > 0 {
				mu.Lock()
				report.Degraded = append(report.Degraded, resp.Degraded...)
				mu.Unlock()
			}
			logger.Debug("merged chunk", zap.Int("startRow", start), zap.Int("endRow", end))
		}(req, start, end)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}
	sort.Slice(report.Degraded, func(a, b int) bool {
		pa, pb := report.Degraded[a], report.Degraded[b]
		if pa.Row != pb.Row {
			return pa.Row < pb.Row
		}
		return pa.Col < pb.Col
	})
	return mag, &report, nil
}

// chunkRequests partitions the grid's rows into contiguous chunks of at most
// chunkRows rows each. Every row appears in exactly one request.
func chunkRequests(g *field.Grid, chunkRows int) []ChunkRequest {
	rows, _ := g.Dims()
	maxAbsT := g.Region.MaxAbsT()
	reqs := make([]ChunkRequest, 0, (rows+chunkRows-1)/chunkRows)
	for start := 0; start < rows; start += chunkRows {
		end := start + chunkRows
		if end > rows {
			end = rows
		}
		reqs = append(reqs, ChunkRequest{
			StartRow: start,
			Sigma:    g.ReVals,
			T:        g.ImVals[start:end],
			MaxAbsT:  maxAbsT,
		})
	}
	return reqs
}
