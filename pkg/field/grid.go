package field

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Grid is the sampling lattice: two parallel rows x cols matrices where
// Sigma holds the real part and T the imaginary part of each lattice point.
// Row i is the fixed imaginary value ImVals[i]; column j is the fixed real
// value ReVals[j].
type Grid struct {
	Region Region

	// Axis values, inclusive of both endpoints. The final value may
	// overshoot the configured max by less than one step; see axisValues.
	ReVals []float64
	ImVals []float64

	Sigma *mat.Dense
	T     *mat.Dense
}

// NewGrid validates the region and builds the lattice.
func NewGrid(r Region) (*Grid, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	re := axisValues(r.ReMin, r.ReMax, r.Step)
	im := axisValues(r.ImMin, r.ImMax, r.Step)

	rows, cols := len(im), len(re)
	sigma := mat.NewDense(rows, cols, nil)
	tg := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sigma.Set(i, j, re[j])
			tg.Set(i, j, im[i])
		}
	}

	return &Grid{
		Region: r,
		ReVals: re,
		ImVals: im,
		Sigma:  sigma,
		T:      tg,
	}, nil
}

// Dims returns rows (imaginary axis) and cols (real axis).
func (g *Grid) Dims() (rows, cols int) {
	return len(g.ImVals), len(g.ReVals)
}

// axisValues builds min, min+step, ... with ceil((max-min)/step)+1 entries,
// inclusive of both endpoints. The last value may exceed max by a fraction
// of a step; we keep the overshoot rather than clamping so the lattice
// spacing stays uniform. The small slack inside ceil absorbs float noise
// when (max-min) is an exact multiple of step.
func axisValues(min, max, step float64) []float64 {
	n := int(math.Ceil((max-min)/step-1e-9)) + 1
	if n < 1 {
		n = 1
	}
	vals := make([]float64, n)
	if n == 1 {
		vals[0] = min
		return vals
	}
	floats.Span(vals, min, min+float64(n-1)*step)
	return vals
}
