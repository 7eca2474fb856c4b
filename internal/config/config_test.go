package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moodcam.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Default config should validate, got %v", err)
	}
	if cfg.Skip != 4 {
		t.Errorf("Expected default skip 4, got %d", cfg.Skip)
	}
	if cfg.Capture.Width != 640 || cfg.Capture.Height != 480 {
		t.Errorf("Expected 640x480, got %dx%d", cfg.Capture.Width, cfg.Capture.Height)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
skip: 9
input: clip.mp4
colors:
  happy: [10, 20, 30]
worker:
  timeout: 5s
  mtcnn: false
mqtt:
  broker: localhost:1883
  qos: 1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Skip != 9 {
		t.Errorf("Expected skip 9, got %d", cfg.Skip)
	}
	if cfg.Input != "clip.mp4" {
		t.Errorf("Expected input clip.mp4, got %q", cfg.Input)
	}
	if cfg.Colors["happy"] != [3]uint8{10, 20, 30} {
		t.Errorf("Unexpected happy color %v", cfg.Colors["happy"])
	}
	if cfg.Worker.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %s", cfg.Worker.Timeout)
	}
	if cfg.Worker.MTCNN {
		t.Error("Expected mtcnn disabled")
	}
	// Keys absent from the file keep their defaults
	if cfg.Outputs.Video != "emotion_video.avi" {
		t.Errorf("Expected default video output, got %q", cfg.Outputs.Video)
	}
	if cfg.MQTT.Topic != "moodcam/samples" {
		t.Errorf("Expected default topic, got %q", cfg.MQTT.Topic)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"negative skip", "skip: -1", "skip"},
		{"unknown color", "colors:\n  bored: [1, 2, 3]", "bored"},
		{"bad codec", "outputs:\n  codec: MJPEG", "codec"},
		{"bad qos", "mqtt:\n  qos: 3", "qos"},
		{"zero panel", "display:\n  panel_size: 0", "panel_size"},
		{"bad level", "log_level: loud", "log_level"},
		{"malformed", "skip: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
