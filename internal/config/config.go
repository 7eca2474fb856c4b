package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete moodcam configuration
type Config struct {
	Skip             int    `yaml:"skip"`   // frames skipped between analyses
	Device           string `yaml:"device"` // camera index or stream URL
	Input            string `yaml:"input"`  // video file, takes precedence over device
	RecordEmptyTicks bool   `yaml:"record_empty_ticks"`
	LogLevel         string `yaml:"log_level"`

	Capture  CaptureConfig       `yaml:"capture"`
	Outputs  OutputsConfig       `yaml:"outputs"`
	Colors   map[string][3]uint8 `yaml:"colors"` // label -> RGB
	Worker   WorkerConfig        `yaml:"worker"`
	Display  DisplayConfig       `yaml:"display"`
	MQTT     MQTTConfig          `yaml:"mqtt"`
	Database DatabaseConfig      `yaml:"database"`
}

// CaptureConfig contains frame source settings
type CaptureConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FallbackFPS float64 `yaml:"fps_fallback"` // used when the device reports 0
}

// OutputsConfig names the files written by a session
type OutputsConfig struct {
	Video string `yaml:"video"`
	Codec string `yaml:"codec"` // fourcc
	Chart string `yaml:"chart"`
	Trend string `yaml:"trend"`
}

// WorkerConfig controls the Python emotion worker
type WorkerConfig struct {
	Python  string        `yaml:"python"`
	Script  string        `yaml:"script"`
	MTCNN   bool          `yaml:"mtcnn"`
	Timeout time.Duration `yaml:"timeout"` // e.g. "10s"; 0 disables
}

// DisplayConfig contains live window settings
type DisplayConfig struct {
	Headless  bool `yaml:"headless"`
	PanelSize int  `yaml:"panel_size"`
}

// MQTTConfig contains MQTT broker settings. An empty broker disables publishing.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
	ClientID string `yaml:"client_id"`
}

// DatabaseConfig holds the Postgres URL. Empty falls back to POSTGRES_* variables.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Skip:     4,
		Device:   "0",
		LogLevel: "info",
		Capture: CaptureConfig{
			Width:       640,
			Height:      480,
			FallbackFPS: 30,
		},
		Outputs: OutputsConfig{
			Video: "emotion_video.avi",
			Codec: "XVID",
			Chart: "emotion_chart.gif",
			Trend: "cumulative_emotions.jpg",
		},
		Worker: WorkerConfig{
			Python:  "python3",
			Script:  "python/emotion_worker.py",
			MTCNN:   true,
			Timeout: 30 * time.Second,
		},
		Display: DisplayConfig{
			PanelSize: 300,
		},
		MQTT: MQTTConfig{
			Topic: "moodcam/samples",
		},
	}
}

// Load reads a YAML configuration file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
