package field

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRegion = errors.New("invalid region")
	ErrShapeMismatch = errors.New("field shape mismatch")
)

// RegionError wraps region validation failures so callers can test for
// ErrInvalidRegion while still seeing which bound or step was bad.
type RegionError struct {
	Msg string
}

func (e *RegionError) Error() string {
	if e.Msg == "" {
		return ErrInvalidRegion.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRegion.Error(), e.Msg)
}

func (e *RegionError) Unwrap() error { return ErrInvalidRegion }

func invalidRegionf(format string, args ...any) error {
	return &RegionError{Msg: fmt.Sprintf(format, args...)}
}
