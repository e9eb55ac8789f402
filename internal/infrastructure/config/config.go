package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Cerberus monitor.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Logging       LoggingConfig  `yaml:"logging"`
	Status        StatusConfig   `yaml:"status"`
	MQTT          MQTTConfig     `yaml:"mqtt"`
	Notifications NotifyConfig   `yaml:"notifications"`
	Devices       []DeviceConfig `yaml:"devices"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// StatusConfig contains HTTP status server settings.
type StatusConfig struct {
	Host     string              `yaml:"host"`
	Port     int                 `yaml:"port"`
	Timeouts StatusTimeoutConfig `yaml:"timeouts"`
}

// StatusTimeoutConfig contains HTTP timeout settings in seconds.
type StatusTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// MQTTConfig contains MQTT broker connection settings.
// The broker is only used when a notification target of type "mqtt" is configured.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// NotifyConfig contains outbound notification settings.
type NotifyConfig struct {
	// HeartbeatSeconds is the quiet interval after which a heartbeat
	// notification is sent to the status target. 0 disables heartbeats.
	HeartbeatSeconds int `yaml:"heartbeat_seconds"`

	// StatusTarget receives routine status updates. Optional.
	StatusTarget *TargetConfig `yaml:"status_target"`

	// AlarmTarget receives warnings and alarms. Optional.
	AlarmTarget *TargetConfig `yaml:"alarm_target"`
}

// Notification target types.
const (
	TargetWebhook = "webhook"
	TargetMQTT    = "mqtt"
)

// TargetConfig describes one notification target.
type TargetConfig struct {
	// Type selects the delivery mechanism: "webhook" or "mqtt".
	Type string `yaml:"type"`

	// URL is the webhook endpoint (webhook targets only).
	URL string `yaml:"url"`

	// Username optionally overrides the webhook's default username.
	Username string `yaml:"username"`

	// Topic is the MQTT topic to publish to (mqtt targets only).
	Topic string `yaml:"topic"`
}

// Device monitor types.
const (
	DeviceDummy       = "dummy"
	DeviceNapcoGemini = "napco_gemini"
)

// DeviceConfig describes one device monitor to construct.
// Fields beyond Type and Name are variant-specific.
type DeviceConfig struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`

	// Dummy: ordered states to cycle through and the cycle period.
	States        []DummyState `yaml:"states"`
	PeriodSeconds int          `yaml:"period_seconds"`

	// NapcoGemini: serial port connected to the panel's communication bus.
	Port string `yaml:"port"`
}

// DummyState is one entry in a dummy device's state cycle.
type DummyState struct {
	Text  string `yaml:"text"`
	Alarm bool   `yaml:"alarm"`
}

// Load reads configuration from a YAML file with environment overrides.
//
// Precedence (highest to lowest):
//  1. Environment variables (CERBERUS_SECTION_KEY)
//  2. YAML file values
//  3. Built-in defaults
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Status: StatusConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: StatusTimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "cerberus-monitor",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CERBERUS_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Status server
	if v := os.Getenv("CERBERUS_STATUS_HOST"); v != "" {
		cfg.Status.Host = v
	}
	if v := os.Getenv("CERBERUS_STATUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Status.Port = port
		}
	}

	// MQTT
	if v := os.Getenv("CERBERUS_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("CERBERUS_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("CERBERUS_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// Validate checks the configuration for errors.
//
// Per-device validation is deliberately NOT performed here: a malformed
// device descriptor fails at monitor construction and is skipped, so one
// bad device cannot prevent the remaining devices from being monitored.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Status server validation
	if c.Status.Port < 1 || c.Status.Port > 65535 {
		errs = append(errs, "status.port must be between 1 and 65535")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Notification validation
	if c.Notifications.HeartbeatSeconds < 0 {
		errs = append(errs, "notifications.heartbeat_seconds must not be negative")
	}
	if err := c.Notifications.StatusTarget.validate("notifications.status_target", &c.MQTT); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Notifications.AlarmTarget.validate("notifications.alarm_target", &c.MQTT); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validate checks one notification target. A nil target is valid (not configured).
func (t *TargetConfig) validate(section string, mqtt *MQTTConfig) error {
	if t == nil {
		return nil
	}

	switch t.Type {
	case TargetWebhook:
		if t.URL == "" {
			return fmt.Errorf("%s.url is required for webhook targets", section)
		}
	case TargetMQTT:
		if t.Topic == "" {
			return fmt.Errorf("%s.topic is required for mqtt targets", section)
		}
		if !mqtt.Enabled {
			return fmt.Errorf("%s uses mqtt but mqtt.enabled is false", section)
		}
	default:
		return fmt.Errorf("%s.type must be %q or %q", section, TargetWebhook, TargetMQTT)
	}

	return nil
}

// GetReadTimeout returns the status server read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Status.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the status server write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Status.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the status server idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.Status.Timeouts.Idle) * time.Second
}

// GetPeriod returns a dummy device's cycle period as a Duration.
func (d *DeviceConfig) GetPeriod() time.Duration {
	return time.Duration(d.PeriodSeconds) * time.Second
}

// GetHeartbeat returns the notification heartbeat interval as a Duration.
// Returns 0 when heartbeats are disabled.
func (n *NotifyConfig) GetHeartbeat() time.Duration {
	return time.Duration(n.HeartbeatSeconds) * time.Second
}
