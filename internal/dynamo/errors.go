package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrDimensionMismatch indicates masses, positions and velocities of different lengths.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between masses, positions and velocities")

	// ErrNoBodies indicates an empty body set.
	ErrNoBodies = errors.New("dynamo: body set is empty")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnknownIntegrator indicates an integrator name with no registered implementation.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)

// SimulationError wraps an error with the frame and simulated time at which it surfaced.
type SimulationError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f d): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
