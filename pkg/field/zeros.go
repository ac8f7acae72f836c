package field

import "gonum.org/v1/gonum/mat"

// ZeroCandidate is a lattice point whose zeta magnitude fell below the
// sieve threshold, paired with that magnitude.
type ZeroCandidate struct {
	Sigma     float64
	T         float64
	Magnitude float64
}

// DefaultZeroThreshold is the sieve threshold used when callers pass no
// override.
const DefaultZeroThreshold = 0.1

// LocateZeros scans the magnitude field in row-major order and returns
// every point strictly below threshold. It is a coarse sieve over the
// sampled lattice, not a root finder: a coarse step can report several
// candidates around one true zero or skip a narrow dip entirely. An empty
// result is a valid outcome.
func LocateZeros(mag *mat.Dense, g *Grid, threshold float64) []ZeroCandidate {
	rows, cols := mag.Dims()
	var zeros []ZeroCandidate
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m := mag.At(i, j)
			if m < threshold {
				zeros = append(zeros, ZeroCandidate{
					Sigma:     g.Sigma.At(i, j),
					T:         g.T.At(i, j),
					Magnitude: m,
				})
			}
		}
	}
	return zeros
}
