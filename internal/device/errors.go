package device

import "errors"

// Domain-specific errors for device monitor construction.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNoStates is returned when a dummy monitor is configured with an
	// empty state list. A dummy with nothing to cycle through is a
	// configuration mistake, not a degenerate monitor.
	ErrNoStates = errors.New("device: dummy device must have at least one state")

	// ErrNoPeriod is returned when a dummy monitor is configured with a
	// zero or negative cycle period. A zero-delay timer fires immediately,
	// turning the cycle into a publish flood, so the misconfiguration is
	// rejected at construction.
	ErrNoPeriod = errors.New("device: dummy device period must be positive")

	// ErrNilSink is returned when a monitor is constructed without a
	// status sink.
	ErrNilSink = errors.New("device: status sink is required")
)
