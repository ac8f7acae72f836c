package distrib

import (
	"testing"
	"time"

	"qzft/pkg/field"
	"qzft/pkg/zeta"
)

func TestChunkTimeoutResolution(t *testing.T) {
	if got := (Options{}).chunkTimeout(); got != DefaultChunkTimeout {
		t.Errorf("default chunk timeout %v, want %v", got, DefaultChunkTimeout)
	}
	if got := (Options{ChunkTimeout: 30 * time.Second}).chunkTimeout(); got != 30*time.Second {
		t.Errorf("chunk timeout %v, want 30s", got)
	}
	if got := (Options{ChunkTimeout: -1}).chunkTimeout(); got != DefaultChunkTimeout {
		t.Errorf("negative chunk timeout resolved to %v, want %v", got, DefaultChunkTimeout)
	}
}

func TestEvalChunkMatchesLocal(t *testing.T) {
	req := ChunkRequest{
		StartRow: 3,
		Sigma:    []float64{0.4, 0.5, 0.6},
		T:        []float64{14.0, 14.1, 14.2},
		MaxAbsT:  14.2,
	}
	resp := evalChunk(req)
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	if resp.StartRow != req.StartRow {
		t.Errorf("StartRow = %d, want %d", resp.StartRow, req.StartRow)
	}
	if want := len(req.Sigma) * len(req.T); len(resp.Magnitudes) != want {
		t.Fatalf("%d magnitudes, want %d", len(resp.Magnitudes), want)
	}

	ev := zeta.NewEvaluator(req.MaxAbsT)
	for i, tt := range req.T {
		for j, sigma := range req.Sigma {
			want, err := ev.Magnitude(sigma, tt)
			if err != nil {
				t.Fatalf("Magnitude(%g, %g): %v", sigma, tt, err)
			}
			if want < field.MagnitudeFloor {
				want = field.MagnitudeFloor
			}
			got := resp.Magnitudes[i*len(req.Sigma)+j]
			if got != want {
				t.Errorf("chunk value at (%d,%d) = %g, local = %g", i, j, got, want)
			}
			if got < field.MagnitudeFloor {
				t.Errorf("chunk value at (%d,%d) = %g below the floor", i, j, got)
			}
		}
	}
	if len(resp.Degraded) != 0 {
		t.Errorf("unexpected degraded points: %+v", resp.Degraded)
	}
}

func TestEvalChunkDegradesPole(t *testing.T) {
	// sigma=1, t=0 is the pole; the worker reports the point instead of
	// failing the chunk.
	req := ChunkRequest{
		StartRow: 5,
		Sigma:    []float64{0.9, 1.0},
		T:        []float64{0},
		MaxAbsT:  0,
	}
	resp := evalChunk(req)
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	if len(resp.Degraded) != 1 {
		t.Fatalf("degraded = %+v, want exactly the pole", resp.Degraded)
	}
	if p := resp.Degraded[0]; p.Row != 5 || p.Col != 1 {
		t.Errorf("degraded point = %+v, want row 5 col 1", p)
	}
	if got := resp.Magnitudes[1]; got != field.MagnitudeFloor {
		t.Errorf("pole magnitude = %g, want the floor", got)
	}
}

func TestEvalChunkEmpty(t *testing.T) {
	if resp := evalChunk(ChunkRequest{}); resp.Error == "" {
		t.Error("expected an error for an empty chunk")
	}
}

func TestChunkPartitionCoversGrid(t *testing.T) {
	g, err := field.NewGrid(field.Region{ReMin: 0.4, ReMax: 0.6, ImMin: 0, ImMax: 5, Step: 0.1})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	rows, _ := g.Dims()

	covered := make([]bool, rows)
	for _, req := range chunkRequests(g, 8) {
		for i := range req.T {
			row := req.StartRow + i
			if row < 0 || row >= rows {
				t.Fatalf("chunk row %d out of range", row)
			}
			if covered[row] {
				t.Fatalf("row %d assigned twice", row)
			}
			covered[row] = true
			if req.T[i] != g.ImVals[row] {
				t.Errorf("row %d t = %g, want %g", row, req.T[i], g.ImVals[row])
			}
		}
	}
	for i, ok := range covered {
		if !ok {
			t.Fatalf("row %d not covered by any chunk", i)
		}
	}
}
