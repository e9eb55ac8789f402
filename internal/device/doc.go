// Package device defines the device monitor abstraction for Cerberus.
//
// A Monitor wraps one supervised background task (internal/task) that
// watches a physical security device and republishes its state to a
// StatusSink. Two variants exist:
//
//   - Dummy (this package): cycles through a configured list of states at
//     a fixed period. Exercises the full monitor lifecycle with no
//     hardware attached.
//   - Napco Gemini (package napco): decodes keypad traffic from the
//     panel's serial communication bus.
//
// # Identity
//
// Each monitor is assigned a process-unique ID at construction from an
// injectable Allocator. IDs are equality/hash identities only.
//
// # Lifecycle
//
// Construction is fallible (bad configuration, unopenable serial port)
// and a failed device is skipped without affecting the others. Shutdown
// is infallible by contract: errors during teardown are logged and
// swallowed so one misbehaving device cannot block orderly shutdown of
// the rest.
package device
