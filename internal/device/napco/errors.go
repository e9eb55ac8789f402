package napco

import "errors"

// Domain-specific errors for the Napco Gemini monitor.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnpairedLine is reported when a keypad line-1 frame arrives with
	// no preceding line 0, usually because the partner frame was
	// corrupted on the bus. The event cannot be paired and is dropped.
	ErrUnpairedLine = errors.New("napco: received keypad line 1 without line 0")

	// ErrPortOpen wraps serial port open failures. Construction fails
	// without starting a monitor task.
	ErrPortOpen = errors.New("napco: opening serial port")
)
