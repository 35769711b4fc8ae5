package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	valid := func() *Config { return Default() }

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{
			name:        "default configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "unsupported sample rate",
			mutate:      func(c *Config) { c.Capture.SampleRate = 12345 },
			expectError: true,
		},
		{
			name:        "stereo capture rejected",
			mutate:      func(c *Config) { c.Capture.Channels = 2 },
			expectError: true,
		},
		{
			name:        "clip duration too short",
			mutate:      func(c *Config) { c.Audio.ClipDuration = 0.1 },
			expectError: true,
		},
		{
			name:        "pause threshold above phrase limit",
			mutate:      func(c *Config) { c.Audio.PauseThreshold = 10 },
			expectError: true,
		},
		{
			name:        "unknown provider",
			mutate:      func(c *Config) { c.Recognition.Provider = "azure" },
			expectError: true,
		},
		{
			name:        "unknown language",
			mutate:      func(c *Config) { c.Recognition.Language = "fr-FR" },
			expectError: true,
		},
		{
			name:        "whisper requires model",
			mutate:      func(c *Config) { c.Recognition.Provider = "whisper"; c.Recognition.Model = "" },
			expectError: true,
		},
		{
			name:        "zero max concurrent",
			mutate:      func(c *Config) { c.Recognition.MaxConcurrent = 0 },
			expectError: true,
		},
		{
			name:        "disabled store skips path check",
			mutate:      func(c *Config) { c.Store.Enabled = false; c.Store.Path = "" },
			expectError: false,
		},
		{
			name:        "enabled store requires path",
			mutate:      func(c *Config) { c.Store.Path = "" },
			expectError: true,
		},
		{
			name:        "http port out of range",
			mutate:      func(c *Config) { c.HTTP.Enabled = true; c.HTTP.Port = 70000 },
			expectError: true,
		},
		{
			name:        "disabled http skips port check",
			mutate:      func(c *Config) { c.HTTP.Enabled = false; c.HTTP.Port = 0 },
			expectError: false,
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
		},
		{
			name:        "calibration multiplier below one",
			mutate:      func(c *Config) { c.Calibration.Multiplier = 0.5 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
capture:
  sample_rate: 44100
  channels: 1
  frames_per_buffer: 2048
  system_device_hint: "loopback"
recognition:
  provider: google
  language: auto
  timeout: 30
  max_retries: 2
  max_concurrent: 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Capture.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", cfg.Capture.SampleRate)
	}
	if cfg.Recognition.Language != "auto" {
		t.Errorf("language = %q, want auto", cfg.Recognition.Language)
	}
	// Sections absent from the file keep defaults.
	if cfg.Audio.ClipDuration != 3.0 {
		t.Errorf("clip duration = %g, want default 3.0", cfg.Audio.ClipDuration)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want default info", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("capture: [not a mapping"), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestDurationGetters(t *testing.T) {
	cfg := Default()

	if got := cfg.Audio.GetClipDuration(); got != 3*time.Second {
		t.Errorf("clip duration = %v, want 3s", got)
	}
	if got := cfg.Audio.GetPauseThreshold(); got != 500*time.Millisecond {
		t.Errorf("pause threshold = %v, want 500ms", got)
	}
	if got := cfg.Calibration.GetDuration(); got != time.Second {
		t.Errorf("calibration duration = %v, want 1s", got)
	}
	if got := cfg.Recognition.GetTimeoutDuration(); got != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", got)
	}
	if got := cfg.Store.GetRetention(); got != 30*24*time.Hour {
		t.Errorf("retention = %v, want 720h", got)
	}
}

func TestAPIKeyEnvOverride(t *testing.T) {
	t.Setenv("SPEECH_API_KEY", "from-env")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Recognition.APIKey != "from-env" {
		t.Errorf("api key = %q, want from-env", cfg.Recognition.APIKey)
	}

	// An explicit key wins over the environment.
	cfg = Default()
	cfg.Recognition.APIKey = "explicit"
	cfg.ApplyEnvOverrides()
	if cfg.Recognition.APIKey != "explicit" {
		t.Errorf("api key = %q, want explicit", cfg.Recognition.APIKey)
	}

	t.Setenv("OPENAI_API_KEY", "openai-env")
	cfg = Default()
	cfg.Recognition.Provider = "whisper"
	cfg.ApplyEnvOverrides()
	if cfg.Recognition.APIKey != "openai-env" {
		t.Errorf("api key = %q, want openai-env", cfg.Recognition.APIKey)
	}
}
