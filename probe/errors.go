package probe

import "errors"

// Sentinel errors for probe combinators.
var (
	// ErrTimeout is returned when a check exceeds its time budget.
	ErrTimeout = errors.New("probe: check timed out")

	// ErrCircuitOpen is returned while a circuit breaker is rejecting calls.
	ErrCircuitOpen = errors.New("probe: circuit breaker is open")
)
