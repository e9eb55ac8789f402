package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/calhoun-labs/cerberus/internal/device"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/config"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/logging"
)

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
}

// fakeTarget records delivered messages.
type fakeTarget struct {
	name string
	mu   sync.Mutex
	sent []string
}

func (t *fakeTarget) Send(_ context.Context, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, message)
	return nil
}

func (t *fakeTarget) Name() string { return t.name }

func (t *fakeTarget) snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent...)
}

// waitForSent polls until the target has at least n messages or the
// deadline passes.
func waitForSent(t *testing.T, target *fakeTarget, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sent := target.snapshot(); len(sent) >= n {
			return sent
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("target %q received %d messages, want at least %d", target.name, len(target.snapshot()), n)
	return nil
}

func TestManager_RoutesBySeverity(t *testing.T) {
	statusTarget := &fakeTarget{name: "status"}
	alarmTarget := &fakeTarget{name: "alarm"}
	m := newManager(0, statusTarget, alarmTarget, testLogger())
	defer m.Close()

	m.Notify("Panel", "Armed", device.LevelStatus)
	m.Notify("Panel", "INTRUSION", device.LevelAlarm)
	m.Notify("Panel", "low battery", device.LevelWarning)

	status := waitForSent(t, statusTarget, 1)
	alarms := waitForSent(t, alarmTarget, 2)

	if status[0] != "Panel: Armed" {
		t.Errorf("status delivery = %q, want device-prefixed message", status[0])
	}
	if alarms[0] != "Panel: INTRUSION" || alarms[1] != "Panel: low battery" {
		t.Errorf("alarm deliveries = %v, want alarm then warning", alarms)
	}
}

func TestManager_InfoIsNeverDelivered(t *testing.T) {
	statusTarget := &fakeTarget{name: "status"}
	m := newManager(0, statusTarget, nil, testLogger())

	m.Notify("Panel", "monitor started", device.LevelInfo)
	m.Notify("Panel", "Armed", device.LevelStatus)
	m.Close()

	sent := statusTarget.snapshot()
	if len(sent) != 1 || sent[0] != "Panel: Armed" {
		t.Errorf("deliveries = %v, want only the Status update", sent)
	}
}

func TestManager_SingleTargetFallback(t *testing.T) {
	only := &fakeTarget{name: "only"}

	// Alarm falls back to the status target.
	m := newManager(0, only, nil, testLogger())
	m.Notify("Panel", "INTRUSION", device.LevelAlarm)
	m.Close()
	if sent := only.snapshot(); len(sent) != 1 {
		t.Errorf("deliveries = %v, want alarm via status target", sent)
	}

	// Status falls back to the alarm target.
	only = &fakeTarget{name: "only"}
	m = newManager(0, nil, only, testLogger())
	m.Notify("Panel", "Armed", device.LevelStatus)
	m.Close()
	if sent := only.snapshot(); len(sent) != 1 {
		t.Errorf("deliveries = %v, want status via alarm target", sent)
	}
}

func TestManager_NoTargetsIsSafe(t *testing.T) {
	m := newManager(0, nil, nil, testLogger())
	m.Notify("Panel", "Armed", device.LevelStatus)
	m.Close()
}

func TestManager_CloseFlushesQueue(t *testing.T) {
	statusTarget := &fakeTarget{name: "status"}
	m := newManager(0, statusTarget, nil, testLogger())

	for i := 0; i < 10; i++ {
		m.Notify("Panel", fmt.Sprintf("update %d", i), device.LevelStatus)
	}
	m.Close()

	if sent := statusTarget.snapshot(); len(sent) != 10 {
		t.Errorf("got %d deliveries after Close(), want all 10", len(sent))
	}
}

// blockingTarget parks deliveries until released.
type blockingTarget struct {
	fakeTarget
	release chan struct{}
}

func (t *blockingTarget) Send(ctx context.Context, message string) error {
	select {
	case <-t.release:
	case <-ctx.Done():
	}
	return t.fakeTarget.Send(ctx, message)
}

func TestManager_NotifyNeverBlocks(t *testing.T) {
	target := &blockingTarget{
		fakeTarget: fakeTarget{name: "stuck"},
		release:    make(chan struct{}),
	}
	m := newManager(0, target, nil, testLogger())
	defer func() {
		close(target.release)
		m.Close()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Far more than the queue holds; the excess must be dropped, not
		// block the caller.
		for i := 0; i < queueCap*3; i++ {
			m.Notify("Panel", fmt.Sprintf("update %d", i), device.LevelStatus)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a stuck target")
	}
}

func TestManager_Heartbeat(t *testing.T) {
	statusTarget := &fakeTarget{name: "status"}
	m := newManager(20*time.Millisecond, statusTarget, nil, testLogger())
	defer m.Close()

	sent := waitForSent(t, statusTarget, 1)
	if !strings.Contains(sent[0], "Heartbeat") {
		t.Errorf("delivery = %q, want heartbeat message", sent[0])
	}
}

func TestManager_CloseTwiceIsSafe(t *testing.T) {
	m := newManager(0, &fakeTarget{name: "status"}, nil, testLogger())
	m.Close()
	m.Close()
}
