package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/calhoun-labs/cerberus/internal/device"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/config"
)

// testServer creates a Server over a manager seeded with one device.
func testServer(t *testing.T) (*Server, *Manager) {
	t.Helper()

	m := NewManager(testLogger(), nil)
	m.RegisterDevice(device.ID(1), "Front Panel")
	m.UpdateStatus(context.Background(), device.ID(1), `Armed "READY"`, device.LevelStatus)

	srv, err := NewServer(config.StatusConfig{
		Host: "127.0.0.1",
		Port: 0,
		Timeouts: config.StatusTimeoutConfig{
			Read:  5,
			Write: 5,
			Idle:  5,
		},
	}, testLogger(), m, "test")
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}

	return srv, m
}

func TestNewServer_MissingDependencies(t *testing.T) {
	if _, err := NewServer(config.StatusConfig{}, nil, NewManager(testLogger(), nil), "test"); err == nil {
		t.Error("NewServer(nil logger) error = nil, want error")
	}
	if _, err := NewServer(config.StatusConfig{}, testLogger(), nil, "test"); err == nil {
		t.Error("NewServer(nil manager) error = nil, want error")
	}
}

func TestServer_Health(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var health HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if health.Status != "ok" || health.Version != "test" {
		t.Errorf("health = %+v, want ok/test", health)
	}
	if health.Devices != 1 {
		t.Errorf("Devices = %d, want 1", health.Devices)
	}
}

func TestServer_Status(t *testing.T) {
	srv, m := testServer(t)
	m.UpdateStatus(context.Background(), device.ID(1), "INTRUSION", device.LevelAlarm)

	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding status response: %v", err)
	}

	if len(resp.Devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(resp.Devices))
	}
	d := resp.Devices[0]
	if d.Device != "Front Panel" || d.Message != "INTRUSION" || !d.Alarm {
		t.Errorf("device = %+v, want latest alarm status", d)
	}
	if len(resp.Recent) != 2 {
		t.Errorf("got %d recent events, want 2", len(resp.Recent))
	}
}

func TestServer_StatusText(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status.txt", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Front Panel") {
		t.Errorf("body = %q, want device line", body)
	}
}

func TestServer_RequestIDHeader(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	// Generated when absent.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing, want generated ID")
	}

	// Echoed when provided.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "test-id-123")
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "test-id-123" {
		t.Errorf("X-Request-ID = %q, want echoed test-id-123", got)
	}
}

func TestServer_StartAndClose(t *testing.T) {
	srv, _ := testServer(t)

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer srv.Close()

	resp, err := http.Get("http://" + srv.Addr() + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if err := srv.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
