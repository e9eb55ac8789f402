// Cerberus - Physical Security Device Monitor
//
// This is the main entry point for the Cerberus monitoring daemon.
// Cerberus watches physical security devices (alarm panels on their
// proprietary buses, plus synthetic dummy devices for testing), keeps a
// live status view served over HTTP, and pushes notable updates to
// notification targets (webhook, MQTT).
//
// The process is designed to run unattended for months: a failing
// device degrades the status view but never brings the daemon down.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/calhoun-labs/cerberus/internal/device"
	"github.com/calhoun-labs/cerberus/internal/device/napco"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/config"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/logging"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/mqtt"
	"github.com/calhoun-labs/cerberus/internal/notify"
	"github.com/calhoun-labs/cerberus/internal/status"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Cerberus",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker (only when an mqtt notification target can
	// use it)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Build notification targets
	statusTarget, err := buildTarget(cfg.Notifications.StatusTarget, mqttClient)
	if err != nil {
		return fmt.Errorf("building status notification target: %w", err)
	}
	alarmTarget, err := buildTarget(cfg.Notifications.AlarmTarget, mqttClient)
	if err != nil {
		return fmt.Errorf("building alarm notification target: %w", err)
	}

	// Start the notification manager
	notifier := notify.NewManager(cfg.Notifications, statusTarget, alarmTarget, log)
	defer func() {
		log.Info("stopping notification manager")
		notifier.Close()
	}()
	log.Info("notification manager started",
		"status_target", targetName(statusTarget),
		"alarm_target", targetName(alarmTarget),
		"heartbeat", cfg.Notifications.GetHeartbeat(),
	)

	// Status manager aggregates every monitor's updates
	statusManager := status.NewManager(log, notifier)
	reportMissingTargets(statusManager, statusTarget, alarmTarget)

	// Status server: a bind failure degrades the HTTP view but never
	// stops monitoring
	statusServer, err := status.NewServer(cfg.Status, log, statusManager, version)
	if err != nil {
		return fmt.Errorf("creating status server: %w", err)
	}
	if startErr := statusServer.Start(ctx); startErr != nil {
		log.Warn("status server unavailable", "error", startErr)
		statusManager.Log(fmt.Sprintf("Status server unavailable: %v", startErr), device.LevelWarning)
	} else {
		defer func() {
			log.Info("stopping status server")
			if closeErr := statusServer.Close(); closeErr != nil {
				log.Error("error closing status server", "error", closeErr)
			}
		}()
	}

	// Construct device monitors. A device that fails to start is
	// reported as an alarm and skipped; the rest keep running.
	alloc := device.NewAllocator()
	var monitors []device.Monitor
	for _, devCfg := range cfg.Devices {
		monitor, err := createDeviceMonitor(devCfg, statusManager, alloc, log)
		if err != nil {
			log.Error("device monitor failed to start",
				"device", devCfg.Name,
				"type", devCfg.Type,
				"error", err,
			)
			statusManager.Log(
				fmt.Sprintf("Device %q failed to start: %v", devCfg.Name, err),
				device.LevelAlarm,
			)
			continue
		}
		statusManager.RegisterDevice(monitor.ID(), devCfg.Name)
		monitors = append(monitors, monitor)
		log.Info("device monitor started",
			"device", devCfg.Name,
			"type", devCfg.Type,
			"id", monitor.ID(),
		)
	}
	defer func() {
		for _, m := range monitors {
			m.Shutdown()
		}
		log.Info("device monitors stopped", "count", len(monitors))
	}()

	statusManager.Log(
		fmt.Sprintf("Cerberus started, watching %d device(s).", len(monitors)),
		device.LevelStatus,
	)

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	statusManager.Log("Cerberus shutting down.", device.LevelStatus)

	// Deferred Close() calls will run in reverse order:
	// 1. Device monitors
	// 2. Status server
	// 3. Notification manager (flushes the queue)
	// 4. MQTT (if enabled)

	log.Info("Cerberus stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CERBERUS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CERBERUS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildTarget constructs an optional notification target.
func buildTarget(cfg *config.TargetConfig, mqttClient *mqtt.Client) (notify.Target, error) {
	if cfg == nil {
		return nil, nil
	}
	return notify.NewTarget(*cfg, mqttClient)
}

// reportMissingTargets records a Warning in the status view for each
// notification target left unconfigured. A single configured target must
// not hide the other one's absence, so each gap is reported on its own.
func reportMissingTargets(sm *status.Manager, statusTarget, alarmTarget notify.Target) {
	if statusTarget == nil {
		sm.Log("No status notification target configured, routine status updates will not be sent.", device.LevelWarning)
	}
	if alarmTarget == nil {
		sm.Log("No alarm notification target configured, alarm notifications will not be sent.", device.LevelWarning)
	}
}

// targetName names a possibly-nil target for the startup log.
func targetName(t notify.Target) string {
	if t == nil {
		return "none"
	}
	return t.Name()
}

// createDeviceMonitor constructs and starts one monitor from its config.
//
// The switch is exhaustive over the supported device types; an
// unrecognised type is a config error surfaced per device.
func createDeviceMonitor(cfg config.DeviceConfig, sink device.StatusSink, alloc *device.Allocator, log *logging.Logger) (device.Monitor, error) {
	switch cfg.Type {
	case config.DeviceDummy:
		states := make([]device.DummyState, 0, len(cfg.States))
		for _, s := range cfg.States {
			states = append(states, device.DummyState{Text: s.Text, Alarm: s.Alarm})
		}
		monitor, err := device.NewDummy(sink, alloc, states, cfg.GetPeriod())
		if err != nil {
			return nil, err
		}
		monitor.SetLogger(log)
		return monitor, nil

	case config.DeviceNapcoGemini:
		return napco.New(sink, alloc, cfg.Port, log)

	default:
		return nil, fmt.Errorf("unknown device type %q", cfg.Type)
	}
}
