// Package notify delivers status updates to external targets.
//
// The Manager sits behind a bounded queue: monitors and the status
// manager hand it updates without ever blocking on network I/O, and a
// single supervised worker drains the queue to the configured targets.
// When the queue is full the update is dropped with a log line; a
// security monitor must never let a slow webhook stall the device loop
// feeding it.
//
// Two optional targets are routed by severity:
//
//   - the status target receives routine Status updates
//   - the alarm target receives Warning and Alarm updates
//
// Info-level updates are log-only and are never delivered externally.
// If only one target is configured it receives both streams.
//
// Target implementations cover Discord-compatible webhooks (form POST
// with content and username fields) and MQTT topics via the
// infrastructure client.
//
// An optional heartbeat sends a note to the status target after a
// configurable quiet interval, so a silent system is distinguishable
// from a dead one.
//
// Close() flushes queued notifications before returning.
package notify
