package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the SmartIR dispatch tools.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Device  DeviceConfig  `yaml:"device"`
	Codes   CodesConfig   `yaml:"codes"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
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
// Both fields are optional; anonymous access is used when empty.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// DeviceConfig describes the target IR blaster: which controller variant
// speaks to it, the command encoding its code file uses, and where
// commands are published.
type DeviceConfig struct {
	// Controller is the controller kind ("MQTT" or "UFOR11").
	Controller string `yaml:"controller"`

	// Encoding is the code representation used by the command table
	// ("Raw", "Hex", "Base64", "Pronto"). Validated against the
	// controller's supported set at resolve time.
	Encoding string `yaml:"encoding"`

	// Topic is the MQTT topic commands are published to.
	Topic string `yaml:"topic"`

	// SendDelayMs is the pause between consecutive commands in a batch
	// run, in milliseconds. 0 disables the pause.
	SendDelayMs int `yaml:"send_delay_ms"`
}

// CodesConfig locates the device code file.
type CodesConfig struct {
	// Path is the filesystem path to the JSON code file whose
	// top-level "commands" key holds the nested command table.
	Path string `yaml:"path"`
}

// HistoryConfig contains run-history persistence settings.
type HistoryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing config file is not an error: the tool is usable from
// environment variables alone, which is how it is driven on headless
// test rigs. Any other read or parse failure is fatal.
//
// Environment variables follow the pattern: SMARTIR_SECTION_KEY
// For example: SMARTIR_MQTT_HOST, SMARTIR_CODES_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file (may not exist)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be parsed or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parsing config file: %w", unmarshalErr)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults plus environment only.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
//
// The MQTT and device defaults match the values the batch tester has
// always assumed: a local anonymous broker and the shared
// smartir/send_command topic.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "smartir-send",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Device: DeviceConfig{
			Controller: "UFOR11",
			Encoding:   "Raw",
			Topic:      "smartir/send_command",
		},
		Codes: CodesConfig{
			Path: "codes/climate/toshiba.json",
		},
		History: HistoryConfig{
			Enabled:     false,
			Path:        "./data/smartir-runs.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SMARTIR_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("SMARTIR_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SMARTIR_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("SMARTIR_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SMARTIR_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Device
	if v := os.Getenv("SMARTIR_MQTT_TOPIC"); v != "" {
		cfg.Device.Topic = v
	}
	if v := os.Getenv("SMARTIR_CONTROLLER"); v != "" {
		cfg.Device.Controller = v
	}
	if v := os.Getenv("SMARTIR_ENCODING"); v != "" {
		cfg.Device.Encoding = v
	}

	// Codes
	if v := os.Getenv("SMARTIR_CODES_PATH"); v != "" {
		cfg.Codes.Path = v
	}

	// History
	if v := os.Getenv("SMARTIR_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Device.Controller == "" {
		errs = append(errs, "device.controller is required")
	}
	if c.Device.Encoding == "" {
		errs = append(errs, "device.encoding is required")
	}
	if c.Device.Topic == "" {
		errs = append(errs, "device.topic is required")
	}
	if c.Device.SendDelayMs < 0 {
		errs = append(errs, "device.send_delay_ms must not be negative")
	}

	if c.Codes.Path == "" {
		errs = append(errs, "codes.path is required")
	}

	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path is required when history is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetSendDelay returns the inter-command delay as a Duration.
func (c *Config) GetSendDelay() time.Duration {
	return time.Duration(c.Device.SendDelayMs) * time.Millisecond
}
