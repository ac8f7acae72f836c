package field

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DerivedFields are the three scalar fields computed from a magnitude
// field: the inverse-square potential V = |zeta|^-2, the collapse penalty
// C = alpha*(sigma-0.5)^2 and their sum. All three share the magnitude
// field's shape and are immutable once returned.
type DerivedFields struct {
	Potential *mat.Dense
	Collapse  *mat.Dense
	Total     *mat.Dense
}

// Derive computes the potential landscape from a magnitude field and the
// lattice's real-part coordinates. It is a pure function: rerunning it with
// a different alpha never requires re-evaluating zeta.
func Derive(mag, sigma *mat.Dense, alpha float64) (*DerivedFields, error) {
	if alpha < 0 {
		return nil, fmt.Errorf("collapse weight alpha must be >= 0, got %g", alpha)
	}
	mr, mc := mag.Dims()
	sr, sc := sigma.Dims()
	if mr != sr || mc != sc {
		return nil, fmt.Errorf("%w: magnitude %dx%d vs sigma %dx%d", ErrShapeMismatch, mr, mc, sr, sc)
	}

	potential := mat.NewDense(mr, mc, nil)
	collapse := mat.NewDense(mr, mc, nil)
	total := mat.NewDense(mr, mc, nil)

	for i := 0; i < mr; i++ {
		for j := 0; j < mc; j++ {
			m := mag.At(i, j)
			v := 1.0 / (m * m)
			d := sigma.At(i, j) - 0.5
			c := alpha * d * d
			potential.Set(i, j, v)
			collapse.Set(i, j, c)
			total.Set(i, j, v+c)
		}
	}

	return &DerivedFields{Potential: potential, Collapse: collapse, Total: total}, nil
}
