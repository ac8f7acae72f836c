package zeta

import (
	"errors"
	"fmt"
)

// ErrEvaluation marks a numerical failure evaluating a single point.
var ErrEvaluation = errors.New("zeta evaluation failed")

// EvalError records which point failed and why. Row/Col are set when the
// failure happened inside a grid pass.
type EvalError struct {
	Row    int
	Col    int
	Sigma  float64
	T      float64
	Reason string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s at s=%g+%gi (row %d, col %d): %s",
		ErrEvaluation.Error(), e.Sigma, e.T, e.Row, e.Col, e.Reason)
}

func (e *EvalError) Unwrap() error { return ErrEvaluation }
