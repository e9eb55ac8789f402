package status

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/calhoun-labs/cerberus/internal/device"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/logging"
)

// recentEventsCap bounds the in-memory event log. Oldest entries are
// dropped first.
const recentEventsCap = 100

// selfID is the reserved device ID for the manager's own announcements.
// Monitor allocators start at 1, so 0 never collides.
const selfID device.ID = 0

// selfName labels the manager's own entry in status views.
const selfName = "Log"

// Notifier receives every status update for external delivery. The
// manager never blocks on it; implementations must queue or drop.
type Notifier interface {
	Notify(deviceName, message string, level device.Level)
}

// Entry is one device's status at a point in time.
type Entry struct {
	ID      device.ID
	Device  string
	Message string
	Level   device.Level
	Updated time.Time
}

// Manager aggregates monitor updates into the current system view.
//
// It implements device.StatusSink, so monitors depend only on the
// interface and never on this package.
type Manager struct {
	logger   *logging.Logger
	notifier Notifier
	started  time.Time

	mu      sync.RWMutex
	names   map[device.ID]string
	current map[device.ID]Entry
	recent  []Entry // newest last
}

// NewManager creates a status manager.
//
// Parameters:
//   - logger: Structured logger for the per-update log line
//   - notifier: Optional external delivery hook (may be nil)
//
// Returns:
//   - *Manager: Ready to accept registrations and updates
func NewManager(logger *logging.Logger, notifier Notifier) *Manager {
	return &Manager{
		logger:   logger,
		notifier: notifier,
		started:  time.Now(),
		names:    map[device.ID]string{selfID: selfName},
		current:  make(map[device.ID]Entry),
	}
}

// RegisterDevice associates a human-readable name with a monitor's ID.
// Updates from unregistered IDs are still accepted and fall back to the
// ID's own string form.
func (m *Manager) RegisterDevice(id device.ID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[id] = name
}

// UpdateStatus records a device status update. Implements
// device.StatusSink.
//
// The update is logged, stored as the device's current status, appended
// to the recent event log, and forwarded to the notifier.
func (m *Manager) UpdateStatus(_ context.Context, id device.ID, message string, level device.Level) {
	m.record(id, message, level)
}

// Log records a system-level announcement under the manager's own
// reserved entry. Used for conditions that belong to no single monitor,
// such as startup, shutdown, or a degraded status server.
func (m *Manager) Log(message string, level device.Level) {
	m.record(selfID, message, level)
}

func (m *Manager) record(id device.ID, message string, level device.Level) {
	now := time.Now()

	m.mu.Lock()
	name := m.deviceNameLocked(id)
	entry := Entry{
		ID:      id,
		Device:  name,
		Message: message,
		Level:   level,
		Updated: now,
	}
	m.current[id] = entry

	m.recent = append(m.recent, entry)
	if len(m.recent) > recentEventsCap {
		m.recent = m.recent[len(m.recent)-recentEventsCap:]
	}
	m.mu.Unlock()

	m.log(entry)

	if m.notifier != nil {
		m.notifier.Notify(name, message, level)
	}
}

// log writes the entry to the structured log at a severity matching its
// status level.
func (m *Manager) log(e Entry) {
	if m.logger == nil {
		return
	}

	args := []any{"device", e.Device, "level", e.Level.String()}
	switch {
	case e.Level == device.LevelWarning:
		m.logger.Warn(e.Message, args...)
	case e.Level.IsAlarmGrade():
		m.logger.Error(e.Message, args...)
	default:
		m.logger.Info(e.Message, args...)
	}
}

// deviceNameLocked resolves an ID to its registered name. Caller holds
// m.mu.
func (m *Manager) deviceNameLocked(id device.ID) string {
	if name, ok := m.names[id]; ok {
		return name
	}
	return id.String()
}

// Snapshot returns every device's current status, ordered by ID.
func (m *Manager) Snapshot() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Entry, 0, len(m.current))
	for _, e := range m.current {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// Recent returns the bounded event log, oldest first.
func (m *Manager) Recent() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.recent...)
}

// DeviceCount returns the number of registered devices, excluding the
// manager's own reserved entry.
func (m *Manager) DeviceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names) - 1
}

// Uptime returns how long the manager has been running.
func (m *Manager) Uptime() time.Duration {
	return time.Since(m.started)
}

// RenderText formats the current statuses as a plain text report, one
// device per line.
func (m *Manager) RenderText() string {
	var b strings.Builder

	fmt.Fprintf(&b, "cerberus status as of %s\n\n", time.Now().Format(time.RFC3339))
	for _, e := range m.Snapshot() {
		fmt.Fprintf(&b, "%s  %-7s  %s: %s\n",
			e.Updated.Format(time.RFC3339), e.Level, e.Device, e.Message)
	}

	return b.String()
}
