package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"qzft/pkg/config"
	"qzft/pkg/field"
)

func TestRunSmallRegion(t *testing.T) {
	p := Params{
		Region:    field.Region{ReMin: 0.4, ReMax: 0.6, ImMin: 0, ImMax: 2, Step: 0.5},
		Alpha:     1.0,
		Threshold: 0.1,
	}
	res, err := Run(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	rows, cols := res.Grid.Dims()
	if rows != 5 || cols != 3 {
		t.Fatalf("grid %dx%d, want 5x3", rows, cols)
	}
	mr, mc := res.ZetaAbs.Dims()
	if mr != rows || mc != cols {
		t.Fatalf("magnitude field %dx%d, want %dx%d", mr, mc, rows, cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m := res.ZetaAbs.At(i, j)
			if m < field.MagnitudeFloor {
				t.Fatalf("magnitude(%d,%d) = %g below the floor", i, j, m)
			}
			v := res.Fields.Potential.At(i, j)
			if want := 1.0 / (m * m); v != want {
				t.Fatalf("potential(%d,%d) = %g, want %g", i, j, v, want)
			}
			total := res.Fields.Total.At(i, j)
			if total != v+res.Fields.Collapse.At(i, j) {
				t.Fatalf("total(%d,%d) is not V+C", i, j)
			}
		}
	}
	if len(res.Report.Degraded) != 0 {
		t.Errorf("unexpected degraded points: %+v", res.Report.Degraded)
	}
	// Nothing in this region dips below 0.1.
	if len(res.Zeros) != 0 {
		t.Errorf("unexpected zero candidates: %+v", res.Zeros)
	}
}

func TestRunFindsFirstZero(t *testing.T) {
	// The first nontrivial zero sits at t ~= 14.1347 on the critical line;
	// a 0.05 step across [14, 14.3] must sieve out candidates hugging it.
	p := Params{
		Region:    field.Region{ReMin: 0.4, ReMax: 0.6, ImMin: 14, ImMax: 14.3, Step: 0.05},
		Alpha:     1.0,
		Threshold: 0.1,
	}
	res, err := Run(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Zeros) == 0 {
		t.Fatal("no zero candidates near the first nontrivial zero")
	}
	onLine := false
	for _, z := range res.Zeros {
		if z.Magnitude >= 0.1 {
			t.Errorf("candidate magnitude %g not below the threshold", z.Magnitude)
		}
		if math.Abs(z.T-14.134725) > 0.2 {
			t.Errorf("candidate t = %g too far from 14.1347", z.T)
		}
		if math.Abs(z.Sigma-0.5) < 1e-9 && math.Abs(z.T-14.134725) < 0.1 {
			onLine = true
		}
	}
	if !onLine {
		t.Error("no candidate on the critical line next to the zero")
	}
}

func TestRunZeroThresholdSievesNothing(t *testing.T) {
	p := Params{
		Region:    field.Region{ReMin: 0.5, ReMax: 0.5, ImMin: 14, ImMax: 14.3, Step: 0.05},
		Alpha:     1.0,
		Threshold: 0,
	}
	res, err := Run(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Zeros) != 0 {
		t.Errorf("threshold 0 returned candidates: %+v", res.Zeros)
	}
}

func TestRunInvalidRegion(t *testing.T) {
	p := FromConfig(config.Default())
	p.Region.Step = -1
	if _, err := Run(context.Background(), p, nil); err == nil {
		t.Fatal("expected region validation error")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	p := FromConfig(cfg)
	if p.Region.Step != cfg.Region.StepSize {
		t.Errorf("step %g, want %g", p.Region.Step, cfg.Region.StepSize)
	}
	if p.Threshold != cfg.Simulation.ZeroThreshold {
		t.Errorf("threshold %g, want %g", p.Threshold, cfg.Simulation.ZeroThreshold)
	}
	if want := time.Duration(cfg.NATS.ChunkTimeoutSec) * time.Second; p.ChunkTimeout != want {
		t.Errorf("chunk timeout %v, want %v", p.ChunkTimeout, want)
	}
}
