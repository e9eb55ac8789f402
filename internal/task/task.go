package task

import (
	"fmt"
	"sync"
)

// Task supervises one background goroutine and its cancellation token.
//
// The goroutine starts immediately on Spawn/TrySpawn and is expected to
// observe cancellation cooperatively: check the token each iteration, or
// race Token.Done() against any blocking wait. The supervisor never
// forcibly preempts the goroutine.
//
// Lifecycle: exactly one of
//   - Finish(): cancel, wait for the goroutine, retrieve its result; or
//   - Close(): drop semantics, cancel via the guard and discard the result.
//
// Finish consumes the handle; a second Finish returns ErrFinished.
type Task[T any] struct {
	token *Token
	guard *Guard

	done   chan struct{} // closed when the goroutine exits
	result T
	abort  error // set if the goroutine panicked

	mu       sync.Mutex
	finished bool
}

// Spawn starts fn in a new goroutine and returns its supervising Task.
//
// fn receives the task's cancellation token and runs until it returns;
// its return value is retrieved with Finish. A panic inside fn is caught
// and surfaced as an ErrAborted from Finish rather than crashing the
// process.
func Spawn[T any](fn func(*Token) T) *Task[T] {
	t := newTask[T]()
	t.start(func() T { return fn(t.token) })
	return t
}

// TrySpawn runs factory before starting any goroutine.
//
// The factory receives the cancellation token and returns the work to run,
// or an error if a resource it needs is unavailable (an unopenable serial
// port, a busy listen address). On error nothing is started and the token
// and guard are discarded; on success the returned work runs exactly as
// with Spawn.
func TrySpawn[T any](factory func(*Token) (func() T, error)) (*Task[T], error) {
	t := newTask[T]()

	work, err := factory(t.token)
	if err != nil {
		return nil, err
	}

	t.start(work)
	return t, nil
}

func newTask[T any]() *Task[T] {
	token := NewToken()
	return &Task[T]{
		token: token,
		guard: NewGuard(token),
		done:  make(chan struct{}),
	}
}

// start launches the supervised goroutine with panic capture.
func (t *Task[T]) start(work func() T) {
	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.abort = fmt.Errorf("%w: %v", ErrAborted, r)
			}
		}()
		t.result = work()
	}()
}

// Finish shuts the task down and returns its result.
//
// It cancels the token, disarms the drop guard, and waits for the
// goroutine to exit. The wait is unbounded: a goroutine that never checks
// its token will block Finish forever, so every supervised loop must
// check or race cancellation each iteration.
//
// Returns:
//   - T: The goroutine's return value
//   - error: ErrFinished if the handle was already consumed, or an
//     ErrAborted-wrapped error if the goroutine panicked
func (t *Task[T]) Finish() (T, error) {
	var zero T

	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		return zero, ErrFinished
	}
	t.finished = true
	t.mu.Unlock()

	t.token.Cancel()
	t.guard.Disarm()

	<-t.done

	if t.abort != nil {
		return zero, t.abort
	}
	return t.result, nil
}

// Close implements drop semantics: it fires the guard, cancelling the
// token so the goroutine cannot outlive its owner, and discards the
// result. It does not wait for the goroutine to exit.
//
// Close is safe to call after Finish (the disarmed guard makes it a
// no-op), which allows the usual pattern:
//
//	t := task.Spawn(run)
//	defer t.Close()
//	...
//	result, err := t.Finish()
func (t *Task[T]) Close() {
	t.guard.Close()
}

// Token returns the task's cancellation token.
func (t *Task[T]) Token() *Token {
	return t.token
}
