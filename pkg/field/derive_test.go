package field

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func testGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid(Region{0.4, 0.6, 0, 1, 0.1})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

// syntheticMagnitude fills a field with deterministic values in
// [MagnitudeFloor, ~2.5], including one point pinned at the floor.
func syntheticMagnitude(g *Grid) *mat.Dense {
	rows, cols := g.Dims()
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, 0.3+2*math.Abs(math.Sin(float64(i*cols+j))))
		}
	}
	m.Set(0, 0, MagnitudeFloor)
	return m
}

func TestDeriveInvariants(t *testing.T) {
	g := testGrid(t)
	mag := syntheticMagnitude(g)

	df, err := Derive(mag, g.Sigma, 1.5)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	rows, cols := mag.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := df.Potential.At(i, j)
			c := df.Collapse.At(i, j)
			total := df.Total.At(i, j)

			if v > 1.0/(MagnitudeFloor*MagnitudeFloor) {
				t.Fatalf("potential(%d,%d) = %g exceeds the floor-imposed bound", i, j, v)
			}
			if c < 0 {
				t.Fatalf("collapse(%d,%d) = %g is negative", i, j, c)
			}
			if total != v+c {
				t.Fatalf("total(%d,%d) = %g, want exactly %g", i, j, total, v+c)
			}
		}
	}

	// the floored point reaches the potential ceiling
	if got := df.Potential.At(0, 0); math.Abs(got-1e30)/1e30 > 1e-9 {
		t.Errorf("potential at floored point = %g, want ~1e30", got)
	}
}

func TestDeriveCollapseCenteredOnCriticalLine(t *testing.T) {
	g, err := NewGrid(Region{0.3, 0.7, 0, 0, 0.1})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	rows, cols := g.Dims()
	mag := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		mag.Set(0, j, 1)
	}

	df, err := Derive(mag, g.Sigma, 2.0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	for j := 0; j < cols; j++ {
		sigma := g.Sigma.At(0, j)
		want := 2.0 * (sigma - 0.5) * (sigma - 0.5)
		if got := df.Collapse.At(0, j); math.Abs(got-want) > 1e-15 {
			t.Errorf("collapse at sigma=%v: got %g, want %g", sigma, got, want)
		}
	}
	// exactly zero on the critical line sample
	mid := 2 // sigma = 0.5
	if got := df.Collapse.At(0, mid); math.Abs(got) > 1e-28 {
		t.Errorf("collapse on critical line = %g, want ~0", got)
	}
}

func TestDeriveRecomputableWithNewAlpha(t *testing.T) {
	g := testGrid(t)
	mag := syntheticMagnitude(g)

	a, err := Derive(mag, g.Sigma, 1.0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	b, err := Derive(mag, g.Sigma, 3.0)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	rows, cols := mag.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			// potential is alpha-independent; collapse scales linearly
			if a.Potential.At(i, j) != b.Potential.At(i, j) {
				t.Fatalf("potential depends on alpha at (%d,%d)", i, j)
			}
			if math.Abs(b.Collapse.At(i, j)-3*a.Collapse.At(i, j)) > 1e-15 {
				t.Fatalf("collapse did not scale with alpha at (%d,%d)", i, j)
			}
		}
	}
}

func TestDeriveRejectsBadInputs(t *testing.T) {
	g := testGrid(t)
	mag := syntheticMagnitude(g)

	if _, err := Derive(mag, g.Sigma, -0.5); err == nil {
		t.Error("expected error for negative alpha")
	}

	small := mat.NewDense(2, 2, nil)
	_, err := Derive(small, g.Sigma, 1.0)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}
