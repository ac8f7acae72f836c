package field

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLocateZeros(t *testing.T) {
	g, err := NewGrid(Region{0.4, 0.6, 0, 1, 0.5})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	rows, cols := g.Dims()
	mag := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			mag.Set(i, j, 1.0)
		}
	}
	mag.Set(0, 1, 0.05)
	mag.Set(2, 0, 0.01)
	mag.Set(1, 1, 0.1) // exactly at threshold: excluded, sieve is strict

	zeros := LocateZeros(mag, g, 0.1)
	if len(zeros) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(zeros), zeros)
	}

	// row-major scan order, not magnitude order
	if zeros[0].Magnitude != 0.05 || zeros[1].Magnitude != 0.01 {
		t.Errorf("candidates out of scan order: %+v", zeros)
	}
	if zeros[0].Sigma != g.Sigma.At(0, 1) || zeros[0].T != g.T.At(0, 1) {
		t.Errorf("candidate 0 coordinates wrong: %+v", zeros[0])
	}
}

func TestLocateZerosEmptyResults(t *testing.T) {
	g, err := NewGrid(Region{0.4, 0.6, 0, 1, 0.5})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	rows, cols := g.Dims()
	mag := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			mag.Set(i, j, MagnitudeFloor)
		}
	}

	// threshold 0 can never match: every magnitude is at least the floor
	if zeros := LocateZeros(mag, g, 0); len(zeros) != 0 {
		t.Fatalf("threshold 0 matched %d points", len(zeros))
	}

	// no matches is a valid outcome, not an error
	if zeros := LocateZeros(mag, g, MagnitudeFloor); len(zeros) != 0 {
		t.Fatalf("threshold at the floor matched %d points (sieve must be strict)", len(zeros))
	}
}
