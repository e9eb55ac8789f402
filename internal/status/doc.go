// Package status aggregates device monitor updates into the system's
// current view of itself and serves that view over HTTP.
//
// The Manager is the single StatusSink every device monitor publishes
// into. It keeps the latest status per device plus a bounded log of
// recent events, writes each update to the structured log, and forwards
// it to the notifier for external delivery.
//
// The Server exposes the Manager read-only:
//
//	GET /status.txt       plain text summary, curl friendly
//	GET /api/v1/status    full JSON view with recent events
//	GET /api/v1/health    liveness probe
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := status.NewServer(cfg, logger, manager, version)
//	server.Start(ctx)
//	defer server.Close()
//
// A status server failing to bind degrades the system (no HTTP view) but
// never stops monitoring; the caller decides how loudly to report it.
//
// Thread Safety: all Manager and Server methods are safe for concurrent
// use from multiple goroutines.
package status
