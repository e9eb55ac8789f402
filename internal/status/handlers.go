package status

import (
	"net/http"
	"time"
)

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Devices       int    `json:"devices"`
}

// DeviceStatus is one device's status in the JSON view.
type DeviceStatus struct {
	ID      string    `json:"id"`
	Device  string    `json:"device"`
	Message string    `json:"message"`
	Level   string    `json:"level"`
	Alarm   bool      `json:"alarm"`
	Updated time.Time `json:"updated"`
}

// StatusResponse is the full JSON status view.
type StatusResponse struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Devices     []DeviceStatus `json:"devices"`
	Recent      []DeviceStatus `json:"recent"`
}

// handleHealth reports liveness. Serving this at all means the process
// and its HTTP stack are up; monitors report through /status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       s.version,
		UptimeSeconds: int64(s.manager.Uptime().Seconds()),
		Devices:       s.manager.DeviceCount(),
	})
}

// handleStatus returns every device's current status plus the recent
// event log.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		GeneratedAt: time.Now(),
		Devices:     toDeviceStatuses(s.manager.Snapshot()),
		Recent:      toDeviceStatuses(s.manager.Recent()),
	})
}

// handleStatusText returns the plain text status summary.
func (s *Server) handleStatusText(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write([]byte(s.manager.RenderText()))
}

func toDeviceStatuses(entries []Entry) []DeviceStatus {
	out := make([]DeviceStatus, 0, len(entries))
	for _, e := range entries {
		out = append(out, DeviceStatus{
			ID:      e.ID.String(),
			Device:  e.Device,
			Message: e.Message,
			Level:   e.Level.String(),
			Alarm:   e.Level.IsAlarmGrade(),
			Updated: e.Updated,
		})
	}
	return out
}
