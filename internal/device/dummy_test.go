package device

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingSink captures status updates for assertions.
type recordingSink struct {
	mu      sync.Mutex
	updates []sinkUpdate
}

type sinkUpdate struct {
	id      ID
	message string
	level   Level
}

func (s *recordingSink) UpdateStatus(_ context.Context, id ID, message string, level Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, sinkUpdate{id: id, message: message, level: level})
}

func (s *recordingSink) snapshot() []sinkUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sinkUpdate, len(s.updates))
	copy(out, s.updates)
	return out
}

// waitForUpdates polls until the sink holds at least n updates or the
// deadline passes.
func (s *recordingSink) waitForUpdates(t *testing.T, n int, deadline time.Duration) {
	t.Helper()
	stop := time.Now().Add(deadline)
	for time.Now().Before(stop) {
		s.mu.Lock()
		count := len(s.updates)
		s.mu.Unlock()
		if count >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d updates", n)
}

func TestAllocator_UniqueMonotonic(t *testing.T) {
	alloc := NewAllocator()

	if got := alloc.Next(); got != ID(1) {
		t.Errorf("first Next() = %v, want 1", got)
	}
	if got := alloc.Next(); got != ID(2) {
		t.Errorf("second Next() = %v, want 2", got)
	}

	// Separate allocators are independent (deterministic test IDs).
	if got := NewAllocator().Next(); got != ID(1) {
		t.Errorf("fresh allocator Next() = %v, want 1", got)
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelInfo, "Info"},
		{LevelStatus, "Status"},
		{LevelWarning, "Warning"},
		{LevelAlarm, "Alarm"},
		{Level(99), "Level(99)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

func TestNewDummy_EmptyStates(t *testing.T) {
	_, err := NewDummy(&recordingSink{}, NewAllocator(), nil, time.Second)
	if !errors.Is(err, ErrNoStates) {
		t.Errorf("NewDummy() error = %v, want ErrNoStates", err)
	}
}

func TestNewDummy_NonPositivePeriod(t *testing.T) {
	// A zero period would make the cycle timer fire immediately and flood
	// the sink with updates, so construction must refuse it outright.
	sink := &recordingSink{}
	states := []DummyState{{Text: "Ready"}}

	for _, period := range []time.Duration{0, -time.Second} {
		_, err := NewDummy(sink, NewAllocator(), states, period)
		if !errors.Is(err, ErrNoPeriod) {
			t.Errorf("NewDummy(period=%v) error = %v, want ErrNoPeriod", period, err)
		}
	}

	// Nothing may have started publishing.
	time.Sleep(20 * time.Millisecond)
	if got := sink.snapshot(); len(got) != 0 {
		t.Errorf("rejected monitor published %d updates, want 0", len(got))
	}
}

func TestNewDummy_NilSink(t *testing.T) {
	_, err := NewDummy(nil, NewAllocator(), []DummyState{{Text: "Ready"}}, time.Second)
	if !errors.Is(err, ErrNilSink) {
		t.Errorf("NewDummy() error = %v, want ErrNilSink", err)
	}
}

func TestDummy_CyclesAndShutdown(t *testing.T) {
	sink := &recordingSink{}
	states := []DummyState{
		{Text: "Ready", Alarm: false},
		{Text: "INTRUSION", Alarm: true},
	}

	m, err := NewDummy(sink, NewAllocator(), states, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewDummy() error = %v", err)
	}

	// started + Ready + INTRUSION + Ready: one full wrap back to state 0.
	sink.waitForUpdates(t, 4, 2*time.Second)

	m.Shutdown()
	final := sink.snapshot()

	if final[0].message != "Dummy device monitor started." || final[0].level != LevelInfo {
		t.Errorf("first update = %+v, want started bookend at Info", final[0])
	}
	if final[1].message != "Ready" || final[1].level != LevelStatus {
		t.Errorf("update[1] = %+v, want Ready at Status", final[1])
	}
	if final[2].message != "INTRUSION" || final[2].level != LevelAlarm {
		t.Errorf("update[2] = %+v, want INTRUSION at Alarm", final[2])
	}
	if final[3].message != "Ready" {
		t.Errorf("update[3] = %+v, want wrap back to Ready", final[3])
	}

	// Stop bookend published exactly once, as the final update.
	stops := 0
	for _, u := range final {
		if u.message == "Dummy device monitor stopped." {
			stops++
		}
	}
	if stops != 1 {
		t.Errorf("stop bookend published %d times, want 1", stops)
	}
	if final[len(final)-1].message != "Dummy device monitor stopped." {
		t.Errorf("last update = %q, want stop bookend", final[len(final)-1].message)
	}

	// No further publications after shutdown.
	time.Sleep(60 * time.Millisecond)
	if after := sink.snapshot(); len(after) != len(final) {
		t.Errorf("monitor published %d more updates after Shutdown()", len(after)-len(final))
	}
}

func TestDummy_ShutdownTwiceIsSafe(t *testing.T) {
	sink := &recordingSink{}
	m, err := NewDummy(sink, NewAllocator(), []DummyState{{Text: "Ready"}}, time.Minute)
	if err != nil {
		t.Fatalf("NewDummy() error = %v", err)
	}

	m.Shutdown()
	m.Shutdown() // second call must not panic or block
}

func TestDummy_ID(t *testing.T) {
	alloc := NewAllocator()
	alloc.Next() // consume ID 1

	sink := &recordingSink{}
	m, err := NewDummy(sink, alloc, []DummyState{{Text: "Ready"}}, time.Minute)
	if err != nil {
		t.Fatalf("NewDummy() error = %v", err)
	}
	defer m.Shutdown()

	if m.ID() != ID(2) {
		t.Errorf("ID() = %v, want 2", m.ID())
	}
}
