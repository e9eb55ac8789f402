package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/calhoun-labs/cerberus/internal/device"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/config"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/logging"
	"github.com/calhoun-labs/cerberus/internal/task"
)

// queueCap bounds the notification queue. Delivery is best effort; a
// backlog this deep means the target is down, not busy.
const queueCap = 64

// sendTimeout bounds one delivery attempt from the worker.
const sendTimeout = 10 * time.Second

// notification is one queued delivery.
type notification struct {
	device  string
	message string
	level   device.Level
}

// Manager routes status updates to external targets through a bounded
// queue drained by one supervised worker.
//
// It implements status.Notifier.
type Manager struct {
	logger       *logging.Logger
	statusTarget Target
	alarmTarget  Target
	heartbeat    time.Duration

	queue chan notification
	tk    *task.Task[struct{}]
}

// NewManager creates and starts a notification manager.
//
// Either target may be nil; severities with no target are dropped
// silently. A nil alarm target falls back to the status target and vice
// versa, so a single-target setup still sees everything.
//
// Parameters:
//   - cfg: Heartbeat interval
//   - statusTarget: Routine status delivery (may be nil)
//   - alarmTarget: Warning and alarm delivery (may be nil)
//   - logger: Structured logger
//
// Returns:
//   - *Manager: Running manager; stop with Close()
func NewManager(cfg config.NotifyConfig, statusTarget, alarmTarget Target, logger *logging.Logger) *Manager {
	return newManager(cfg.GetHeartbeat(), statusTarget, alarmTarget, logger)
}

// newManager takes the heartbeat as a Duration directly so tests can use
// sub-second intervals.
func newManager(heartbeat time.Duration, statusTarget, alarmTarget Target, logger *logging.Logger) *Manager {
	m := &Manager{
		logger:       logger,
		statusTarget: statusTarget,
		alarmTarget:  alarmTarget,
		heartbeat:    heartbeat,
		queue:        make(chan notification, queueCap),
	}
	m.tk = task.Spawn(m.run)
	return m
}

// Notify queues a status update for delivery. Implements
// status.Notifier.
//
// Never blocks: when the queue is full the update is dropped and logged.
// Info-level updates are log-only and skipped entirely.
func (m *Manager) Notify(deviceName, message string, level device.Level) {
	if level == device.LevelInfo {
		return
	}

	select {
	case m.queue <- notification{device: deviceName, message: message, level: level}:
	default:
		if m.logger != nil {
			m.logger.Warn("notification queue full, dropping update",
				"device", deviceName,
				"level", level.String(),
			)
		}
	}
}

// run is the delivery worker. It drains the queue, fires heartbeats
// after quiet intervals, and flushes remaining notifications on
// cancellation.
func (m *Manager) run(tok *task.Token) struct{} {
	var heartbeatC <-chan time.Time
	var ticker *time.Ticker
	if m.heartbeat > 0 {
		ticker = time.NewTicker(m.heartbeat)
		defer ticker.Stop()
		heartbeatC = ticker.C
	}

	for {
		select {
		case <-tok.Done():
			m.flush()
			return struct{}{}

		case n := <-m.queue:
			m.deliver(n)
			// Any delivery resets the quiet interval.
			if ticker != nil {
				ticker.Reset(m.heartbeat)
			}

		case <-heartbeatC:
			m.deliver(notification{
				device:  "cerberus",
				message: fmt.Sprintf("Heartbeat: quiet for %s.", m.heartbeat),
				level:   device.LevelStatus,
			})
		}
	}
}

// flush delivers everything still queued, without blocking on an empty
// queue.
func (m *Manager) flush() {
	for {
		select {
		case n := <-m.queue:
			m.deliver(n)
		default:
			return
		}
	}
}

// deliver routes one notification to its target and sends it.
func (m *Manager) deliver(n notification) {
	target := m.route(n.level)
	if target == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	text := fmt.Sprintf("%s: %s", n.device, n.message)
	if err := target.Send(ctx, text); err != nil {
		if m.logger != nil {
			m.logger.Error("notification delivery failed",
				"target", target.Name(),
				"device", n.device,
				"level", n.level.String(),
				"error", err,
			)
		}
	}
}

// route picks the target for a severity, falling back to the other
// target when the preferred one is absent.
func (m *Manager) route(level device.Level) Target {
	if level.IsAlarmGrade() {
		if m.alarmTarget != nil {
			return m.alarmTarget
		}
		return m.statusTarget
	}
	if m.statusTarget != nil {
		return m.statusTarget
	}
	return m.alarmTarget
}

// Close stops the worker after flushing queued notifications.
func (m *Manager) Close() {
	if _, err := m.tk.Finish(); err != nil {
		if m.logger != nil {
			m.logger.Warn("notification manager shutdown fault", "error", err)
		}
	}
}
