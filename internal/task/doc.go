// Package task provides cancellation-safe background goroutine supervision.
//
// Every long-running unit of work in Cerberus (device monitor loops, the
// notification drain loop, the status HTTP listener) is owned by a Task,
// which couples the goroutine with a cancellation Token and a drop Guard.
//
// # Cancellation model
//
// Cancellation is cooperative and level-triggered. The supervised function
// receives a *Token and must check Cancelled() each loop iteration or race
// Done() against blocking waits. Finish signals cancellation and then waits
// unboundedly for the goroutine to observe it; there is no forced timeout
// or preemption.
//
// # Drop safety
//
// The Guard guarantees the cancellation signal fires on every exit path of
// the owner, including early returns and panics, unless explicitly
// disarmed by a clean Finish:
//
//	t := task.Spawn(func(tok *task.Token) error {
//	    for !tok.Cancelled() {
//	        // poll...
//	    }
//	    return nil
//	})
//	defer t.Close() // safety net: cancels if Finish is never reached
//
//	result, err := t.Finish()
//
// # Fault surfacing
//
// A panic inside the supervised goroutine is recovered and returned from
// Finish wrapped in ErrAborted, so abnormal termination is observable
// instead of being lost with the goroutine.
package task
