// Package field holds the sampling lattice over the complex plane and the
// scalar fields derived from the zeta magnitude: the inverse-square
// potential, the collapse penalty and their sum. Grids are generated once
// per region and treated as read-only by everything downstream.
package field

import "math"

// MagnitudeFloor is the smallest magnitude the evaluator may report. It
// bounds the inverse-square potential at 1/MagnitudeFloor^2 and keeps the
// field deriver away from division by zero.
const MagnitudeFloor = 1e-15

// Region describes the rectangular sampling window in the s-plane:
// sigma = Re(s) in [ReMin, ReMax], t = Im(s) in [ImMin, ImMax], sampled
// every Step along both axes.
type Region struct {
	ReMin float64
	ReMax float64
	ImMin float64
	ImMax float64
	Step  float64
}

// Validate reports ErrInvalidRegion for a non-positive step or inverted
// bounds, before any grid memory is allocated.
func (r Region) Validate() error {
	if math.IsNaN(r.Step) || r.Step <= 0 {
		return invalidRegionf("step size must be > 0, got %g", r.Step)
	}
	if r.ReMin > r.ReMax {
		return invalidRegionf("re_min %g > re_max %g", r.ReMin, r.ReMax)
	}
	if r.ImMin > r.ImMax {
		return invalidRegionf("im_min %g > im_max %g", r.ImMin, r.ImMax)
	}
	return nil
}

// MaxAbsT returns the largest |Im(s)| in the region. The evaluator sizes
// its summation from it.
func (r Region) MaxAbsT() float64 {
	return math.Max(math.Abs(r.ImMin), math.Abs(r.ImMax))
}
