package task

import "sync"

// Token is a shareable, one-shot cancellation signal.
//
// A Token starts active and transitions to cancelled exactly once; the
// transition is observable by any number of waiters via Done(). Copies of
// the pointer all observe the same logical state, so a Token can be handed
// to a supervised goroutine while the supervisor keeps its own reference.
//
// Thread Safety: all methods are safe for concurrent use.
type Token struct {
	done chan struct{}
	once sync.Once
}

// NewToken creates an active (not yet cancelled) Token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel transitions the token to cancelled. Idempotent: subsequent calls
// are no-ops. The transition is one-way; a cancelled token never resets.
func (t *Token) Cancel() {
	t.once.Do(func() { close(t.done) })
}

// Done returns a channel that is closed once the token is cancelled.
// Use in a select to race cancellation against other waits:
//
//	select {
//	case <-timer.C:
//	case <-tok.Done():
//	    return
//	}
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Cancelled reports whether the token has been cancelled.
// Cancellation is level-triggered: once true, it stays true.
func (t *Token) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Guard cancels its token when closed, unless disarmed first.
//
// A Guard is the safety net for supervised tasks: the owner defers Close()
// so the cancellation signal fires on every exit path. A clean shutdown
// path calls Disarm() before the deferred Close() runs, making it a no-op.
//
// Disarming is permanent; a second Disarm or a Close after Disarm is a no-op.
type Guard struct {
	token *Token
	once  sync.Once
}

// NewGuard creates an armed guard over the given token.
func NewGuard(token *Token) *Guard {
	return &Guard{token: token}
}

// Disarm permanently defuses the guard so Close() will not cancel the token.
func (g *Guard) Disarm() {
	g.once.Do(func() {})
}

// Close fires the guard: the token is cancelled unless Disarm() was called
// first. Safe to call multiple times.
func (g *Guard) Close() {
	g.once.Do(func() { g.token.Cancel() })
}
