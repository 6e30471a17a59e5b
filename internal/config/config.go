// Package config loads the daemon configuration from a YAML file and holds
// it behind a process-wide singleton.
package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/inertialab/tiltd/internal/estimator"
)

// MQTTConfig names the broker and the topics the daemon publishes and
// listens on.
type MQTTConfig struct {
	Broker       string `yaml:"broker"`
	ClientID     string `yaml:"client_id"`
	TopicTilt    string `yaml:"topic_tilt"`
	TopicRecord  string `yaml:"topic_record"`
	TopicControl string `yaml:"topic_control"`
}

// SerialConfig configures the serial sample source.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud uint   `yaml:"baud"`
}

// MPU9250Config configures the SPI-attached sensor source. Ranges use the
// sensor's register encoding: accel 0=±2g..3=±16g, gyro 0=±250°/s..3=±2000°/s.
type MPU9250Config struct {
	SPIDevice  string `yaml:"spi_device"`
	CSPin      string `yaml:"cs_pin"`
	AccelRange int    `yaml:"accel_range"`
	GyroRange  int    `yaml:"gyro_range"`
}

// SourceConfig selects where samples come from.
type SourceConfig struct {
	Type    string        `yaml:"type"` // mock, serial, or mpu9250
	Serial  SerialConfig  `yaml:"serial"`
	MPU9250 MPU9250Config `yaml:"mpu9250"`
}

// TickConfig controls the estimation cadence and the starting algorithm.
type TickConfig struct {
	IntervalMs int     `yaml:"interval_ms"`
	Algorithm  string  `yaml:"algorithm"`
	Gain       float64 `yaml:"gain"`
}

// RecordingConfig controls session recording and export.
type RecordingConfig struct {
	ExportDir string `yaml:"export_dir"`
	AutoStart bool   `yaml:"auto_start"`
}

// WebConfig configures the dashboard server.
type WebConfig struct {
	Port int `yaml:"port"`
}

// Config is the top-level structure of tiltd.yaml.
type Config struct {
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Source    SourceConfig    `yaml:"source"`
	Tick      TickConfig      `yaml:"tick"`
	Recording RecordingConfig `yaml:"recording"`
	Web       WebConfig       `yaml:"web"`
}

// Load reads and validates the configuration file. Missing optional fields
// receive defaults; a missing file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MQTT.Broker == "" {
		c.MQTT.Broker = "tcp://localhost:1883"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "tiltd"
	}
	if c.MQTT.TopicTilt == "" {
		c.MQTT.TopicTilt = "tilt/estimate"
	}
	if c.MQTT.TopicRecord == "" {
		c.MQTT.TopicRecord = "tilt/record"
	}
	if c.MQTT.TopicControl == "" {
		c.MQTT.TopicControl = "tilt/control"
	}
	if c.Source.Type == "" {
		c.Source.Type = "mock"
	}
	if c.Source.Serial.Baud == 0 {
		c.Source.Serial.Baud = 115200
	}
	if c.Tick.IntervalMs == 0 {
		c.Tick.IntervalMs = 20 // 50 Hz
	}
	if c.Tick.Algorithm == "" {
		c.Tick.Algorithm = estimator.ComplementaryFilter.String()
	}
	if c.Tick.Gain == 0 {
		c.Tick.Gain = estimator.DefaultGain
	}
	if c.Recording.ExportDir == "" {
		c.Recording.ExportDir = "."
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8080
	}
}

func (c *Config) validate() error {
	switch c.Source.Type {
	case "mock":
	case "serial":
		if c.Source.Serial.Port == "" {
			return fmt.Errorf("source.serial.port is required for serial source")
		}
	case "mpu9250":
		if c.Source.MPU9250.SPIDevice == "" {
			return fmt.Errorf("source.mpu9250.spi_device is required for mpu9250 source")
		}
		if c.Source.MPU9250.CSPin == "" {
			return fmt.Errorf("source.mpu9250.cs_pin is required for mpu9250 source")
		}
		if r := c.Source.MPU9250.AccelRange; r < 0 || r > 3 {
			return fmt.Errorf("source.mpu9250.accel_range must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", r)
		}
		if r := c.Source.MPU9250.GyroRange; r < 0 || r > 3 {
			return fmt.Errorf("source.mpu9250.gyro_range must be 0-3 (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s), got %d", r)
		}
	default:
		return fmt.Errorf("unknown source.type %q (want mock, serial, or mpu9250)", c.Source.Type)
	}

	if c.Tick.IntervalMs < 0 {
		return fmt.Errorf("tick.interval_ms must be positive, got %d", c.Tick.IntervalMs)
	}
	if _, err := estimator.ParseAlgorithm(c.Tick.Algorithm); err != nil {
		return fmt.Errorf("tick.algorithm: %w", err)
	}
	if c.Tick.Gain < 0 || c.Tick.Gain >= 1 {
		return fmt.Errorf("tick.gain must be in (0, 1), got %g", c.Tick.Gain)
	}
	return nil
}

// Package-level singleton guarded the same way the rest of the daemon
// expects: InitGlobal once at startup, Get everywhere else.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// InitGlobal loads the global configuration from file. Only the first call
// has any effect.
func InitGlobal(path string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(path)
	})
	return err
}

// Get returns the global configuration, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
