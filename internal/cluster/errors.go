package cluster

import (
	"errors"
	"fmt"
)

// Domain errors for ensemble operations.
var (
	// ErrParameterBounds indicates a construction parameter outside its valid range.
	ErrParameterBounds = errors.New("cluster: parameter out of valid bounds")

	// ErrNonPositiveMass indicates a particle mass that is zero, negative or not finite.
	ErrNonPositiveMass = errors.New("cluster: particle mass must be positive")

	// ErrDimensionMismatch indicates vectors or matrices of the wrong shape.
	ErrDimensionMismatch = errors.New("cluster: dimension mismatch")

	// ErrInvalidStep indicates a time step that is not a positive finite number.
	ErrInvalidStep = errors.New("cluster: time step must be positive and finite")

	// ErrNotOpen indicates a save without an open recorder.
	ErrNotOpen = errors.New("cluster: no recorder open")

	// ErrAlreadyOpen indicates a second Open or Attach before Close.
	ErrAlreadyOpen = errors.New("cluster: recorder already open")
)

// StepError wraps a failure during an advance with the step context.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
