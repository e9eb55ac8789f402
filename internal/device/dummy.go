package device

import (
	"context"
	"time"

	"github.com/calhoun-labs/cerberus/internal/task"
)

// DummyState is one entry in a dummy monitor's state cycle.
type DummyState struct {
	// Text is the status message to publish.
	Text string

	// Alarm marks the state as alarm-grade rather than routine.
	Alarm bool
}

// DummyMonitor cycles through a fixed list of states at a configured
// period, publishing each to the status sink. It exists to exercise the
// monitor lifecycle and notification plumbing without hardware attached.
type DummyMonitor struct {
	id     ID
	tk     *task.Task[struct{}]
	logger Logger
}

// NewDummy constructs and starts a dummy monitor.
//
// The monitor publishes a start bookend, then the first state
// immediately, then advances one state per period (wrapping after the
// last) until shut down, when it publishes a stop bookend.
//
// Parameters:
//   - sink: Status sink to publish to
//   - alloc: ID allocator (injectable for deterministic test IDs)
//   - states: Non-empty ordered state cycle
//   - period: Delay between state changes, must be positive
//
// Returns:
//   - *DummyMonitor: Running monitor
//   - error: ErrNoStates for an empty state list, ErrNoPeriod for a
//     non-positive period, ErrNilSink for a nil sink
func NewDummy(sink StatusSink, alloc *Allocator, states []DummyState, period time.Duration) (*DummyMonitor, error) {
	if sink == nil {
		return nil, ErrNilSink
	}
	if len(states) == 0 {
		return nil, ErrNoStates
	}
	if period <= 0 {
		return nil, ErrNoPeriod
	}

	id := alloc.Next()

	// Copy the state list so later mutation by the caller cannot race the
	// monitor goroutine.
	cycle := make([]DummyState, len(states))
	copy(cycle, states)

	tk := task.Spawn(func(tok *task.Token) struct{} {
		runDummy(tok, sink, id, cycle, period)
		return struct{}{}
	})

	return &DummyMonitor{id: id, tk: tk}, nil
}

// runDummy is the monitor's supervised loop.
func runDummy(tok *task.Token, sink StatusSink, id ID, states []DummyState, period time.Duration) {
	ctx := context.Background()

	sink.UpdateStatus(ctx, id, "Dummy device monitor started.", LevelInfo)

	current := 0
	for {
		state := states[current]
		level := LevelStatus
		if state.Alarm {
			level = LevelAlarm
		}
		sink.UpdateStatus(ctx, id, state.Text, level)

		// Race the interval timer against cancellation.
		timer := time.NewTimer(period)
		select {
		case <-timer.C:
			current++
			if current >= len(states) {
				current = 0
			}
		case <-tok.Done():
			timer.Stop()
			sink.UpdateStatus(ctx, id, "Dummy device monitor stopped.", LevelInfo)
			return
		}
	}
}

// Shutdown stops the monitor and waits for its loop to exit.
// Errors from an already-finished task are logged and swallowed.
func (m *DummyMonitor) Shutdown() {
	if _, err := m.tk.Finish(); err != nil {
		if m.logger != nil {
			m.logger.Warn("dummy monitor shutdown fault", "device", m.id, "error", err)
		}
	}
}

// ID returns the monitor's unique device ID.
func (m *DummyMonitor) ID() ID {
	return m.id
}

// SetLogger sets an optional logger for shutdown fault reporting.
func (m *DummyMonitor) SetLogger(logger Logger) {
	m.logger = logger
}
