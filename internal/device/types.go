package device

import (
	"context"
	"fmt"
	"sync/atomic"
)

// ID uniquely identifies a device monitor within one process.
//
// IDs are never reused and carry no meaning beyond uniqueness; they are
// suitable as map keys but their ordering is an artefact of construction
// order.
type ID uint64

// String returns the ID in "device-N" form for logs and status pages.
func (id ID) String() string {
	return fmt.Sprintf("device-%d", uint64(id))
}

// Allocator hands out process-unique monitor IDs.
//
// It is an explicit, injectable counter rather than package-level global
// state, so tests get deterministic IDs by constructing their own
// allocator. A single atomic increment suffices: the counter exists only
// for uniqueness, not for ordering with any other state.
type Allocator struct {
	next atomic.Uint64
}

// NewAllocator creates an allocator whose first ID is 1.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns a fresh, never-before-issued ID.
func (a *Allocator) Next() ID {
	return ID(a.next.Add(1))
}

// Level is the severity of a status update.
type Level int

// Status severity levels for device monitor updates.
const (
	// LevelInfo is low-priority device info, not sent to notification targets.
	LevelInfo Level = iota

	// LevelStatus is a routine non-alarm status update.
	LevelStatus

	// LevelWarning is high-priority info, routed like an alarm.
	LevelWarning

	// LevelAlarm is an alarm-grade status update.
	LevelAlarm
)

// String returns the level's display name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "Info"
	case LevelStatus:
		return "Status"
	case LevelWarning:
		return "Warning"
	case LevelAlarm:
		return "Alarm"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// IsAlarmGrade reports whether the level routes to alarm notification targets.
func (l Level) IsAlarmGrade() bool {
	return l == LevelWarning || l == LevelAlarm
}

// StatusSink receives status updates from device monitors.
//
// Implementations must not block the caller indefinitely; monitors call
// UpdateStatus from their run loops at most once per state change.
// Satisfied by *status.Manager.
type StatusSink interface {
	UpdateStatus(ctx context.Context, id ID, message string, level Level)
}

// Monitor is one supervised device monitor.
//
// The variant set is closed (dummy, Napco Gemini); the construction switch
// in cmd/cerberus matches it exhaustively.
type Monitor interface {
	// Shutdown stops the monitor's background task and waits for it to
	// exit. It never propagates errors: shutdown must be safe to call
	// during process teardown even under partial failure, so faults are
	// logged and discarded.
	Shutdown()

	// ID returns the monitor's unique device ID.
	ID() ID
}

// Logger is the optional logging interface for device monitors.
// Compatible with logging.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}
