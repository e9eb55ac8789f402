package task

import "errors"

// Domain-specific errors for task supervision.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrFinished is returned when Finish is called on an already-consumed
	// task handle. Finish is deliberately not idempotent: the first call
	// retrieves the result, later calls have nothing left to return.
	ErrFinished = errors.New("task: already finished")

	// ErrAborted wraps the panic value of a supervised goroutine that
	// terminated abnormally. The fault is surfaced from Finish rather than
	// silently swallowed.
	ErrAborted = errors.New("task: aborted")
)
