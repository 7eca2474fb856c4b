package config

import (
	"fmt"

	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/rs/zerolog"
)

// Validate checks if the configuration is valid
func Validate(cfg *Config) error {
	if cfg.Skip < 0 {
		return fmt.Errorf("skip must be >= 0")
	}
	if cfg.Device == "" && cfg.Input == "" {
		return fmt.Errorf("either device or input is required")
	}

	if cfg.Capture.Width <= 0 || cfg.Capture.Height <= 0 {
		return fmt.Errorf("capture.width and capture.height must be > 0")
	}
	if cfg.Capture.FallbackFPS <= 0 {
		return fmt.Errorf("capture.fps_fallback must be > 0")
	}

	if cfg.Outputs.Video == "" || cfg.Outputs.Chart == "" || cfg.Outputs.Trend == "" {
		return fmt.Errorf("outputs.video, outputs.chart and outputs.trend are required")
	}
	if len(cfg.Outputs.Codec) != 4 {
		return fmt.Errorf("outputs.codec must be a four character code, got %q", cfg.Outputs.Codec)
	}

	// Labels are checked here so a typo fails at startup, not mid-session
	if _, err := emotion.NewColorMap(cfg.Colors); err != nil {
		return err
	}

	if cfg.Worker.Script == "" {
		return fmt.Errorf("worker.script is required")
	}
	if cfg.Worker.Python == "" {
		cfg.Worker.Python = "python3"
	}
	if cfg.Worker.Timeout < 0 {
		return fmt.Errorf("worker.timeout must be >= 0")
	}

	if cfg.Display.PanelSize <= 0 {
		return fmt.Errorf("display.panel_size must be > 0")
	}

	if cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}
	if cfg.MQTT.Broker != "" && cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "moodcam/samples"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	return nil
}
