package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Capture     CaptureConfig     `yaml:"capture"`
	Audio       AudioConfig       `yaml:"audio"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Store       StoreConfig       `yaml:"store"`
	HTTP        HTTPConfig        `yaml:"http"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CaptureConfig contains audio capture device parameters
type CaptureConfig struct {
	SampleRate       int    `yaml:"sample_rate"`
	Channels         int    `yaml:"channels"`
	FramesPerBuffer  int    `yaml:"frames_per_buffer"`
	SystemDeviceHint string `yaml:"system_device_hint"` // substring matched against device names
}

// AudioConfig contains buffering and segmentation parameters
type AudioConfig struct {
	ClipDuration      float64 `yaml:"clip_duration"`       // seconds, system source
	PhraseMaxDuration float64 `yaml:"phrase_max_duration"` // seconds, mic source
	PauseThreshold    float64 `yaml:"pause_threshold"`     // seconds of silence ending a phrase
	MinPhraseDuration float64 `yaml:"min_phrase_duration"` // seconds, shorter phrases are dropped
	QueueSize         int     `yaml:"queue_size"`          // pending clips per source
}

// CalibrationConfig contains ambient noise calibration parameters
type CalibrationConfig struct {
	Duration   float64 `yaml:"duration"`   // seconds of ambient audio to sample
	Multiplier float64 `yaml:"multiplier"` // threshold = ambient level * multiplier
	Dynamic    bool    `yaml:"dynamic"`    // keep adjusting the threshold while running
}

// RecognitionConfig contains speech-to-text service configuration
type RecognitionConfig struct {
	Provider      string `yaml:"provider"` // "google" or "whisper"
	Language      string `yaml:"language"` // "zh-CN", "en-US" or "auto"
	Endpoint      string `yaml:"endpoint"` // optional endpoint override
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"` // whisper model name
	Timeout       int    `yaml:"timeout"` // seconds
	MaxRetries    int    `yaml:"max_retries"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// StoreConfig contains transcript history storage configuration
type StoreConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// HTTPConfig contains monitoring HTTP server configuration
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the built-in configuration used when no config file exists.
// The values mirror the interactive assistant defaults: 16 kHz mono capture,
// 3 second system clips, 5 second phrase limit, 0.5 second pause threshold.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			SampleRate:       16000,
			Channels:         1,
			FramesPerBuffer:  1024,
			SystemDeviceHint: "monitor",
		},
		Audio: AudioConfig{
			ClipDuration:      3.0,
			PhraseMaxDuration: 5.0,
			PauseThreshold:    0.5,
			MinPhraseDuration: 0.3,
			QueueSize:         16,
		},
		Calibration: CalibrationConfig{
			Duration:   1.0,
			Multiplier: 1.5,
			Dynamic:    true,
		},
		Recognition: RecognitionConfig{
			Provider:      "google",
			Language:      "zh-CN",
			Model:         "whisper-1",
			Timeout:       15,
			MaxRetries:    3,
			MaxConcurrent: 4,
		},
		Store: StoreConfig{
			Enabled:       true,
			Path:          "data/transcripts.db",
			RetentionDays: 30,
		},
		HTTP: HTTPConfig{
			Enabled: false,
			Address: "127.0.0.1",
			Port:    8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads and parses the configuration file. Values missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.ApplyEnvOverrides()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// ApplyEnvOverrides fills the API key from the environment when the config file
// leaves it empty. OPENAI_API_KEY covers the whisper provider, SPEECH_API_KEY
// everything else.
func (c *Config) ApplyEnvOverrides() {
	if c.Recognition.APIKey != "" {
		return
	}
	if c.Recognition.Provider == "whisper" {
		c.Recognition.APIKey = os.Getenv("OPENAI_API_KEY")
		return
	}
	c.Recognition.APIKey = os.Getenv("SPEECH_API_KEY")
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Calibration.Validate(); err != nil {
		return fmt.Errorf("calibration config: %w", err)
	}

	if err := c.Recognition.Validate(); err != nil {
		return fmt.Errorf("recognition config: %w", err)
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates capture configuration
func (cc *CaptureConfig) Validate() error {
	switch cc.SampleRate {
	case 8000, 16000, 22050, 44100, 48000:
	default:
		return fmt.Errorf("unsupported sample_rate %d", cc.SampleRate)
	}

	if cc.Channels != 1 {
		return fmt.Errorf("channels must be 1 (mono), got %d", cc.Channels)
	}

	if cc.FramesPerBuffer < 64 || cc.FramesPerBuffer > 65536 {
		return fmt.Errorf("frames_per_buffer must be between 64 and 65536, got %d", cc.FramesPerBuffer)
	}

	if cc.SystemDeviceHint == "" {
		return fmt.Errorf("system_device_hint cannot be empty")
	}

	return nil
}

// Validate validates audio buffering configuration
func (a *AudioConfig) Validate() error {
	if a.ClipDuration < 0.5 || a.ClipDuration > 30 {
		return fmt.Errorf("clip_duration must be between 0.5 and 30 seconds, got %g", a.ClipDuration)
	}

	if a.PhraseMaxDuration < 1 || a.PhraseMaxDuration > 60 {
		return fmt.Errorf("phrase_max_duration must be between 1 and 60 seconds, got %g", a.PhraseMaxDuration)
	}

	if a.PauseThreshold <= 0 || a.PauseThreshold >= a.PhraseMaxDuration {
		return fmt.Errorf("pause_threshold must be positive and below phrase_max_duration, got %g", a.PauseThreshold)
	}

	if a.MinPhraseDuration < 0 || a.MinPhraseDuration > a.PhraseMaxDuration {
		return fmt.Errorf("min_phrase_duration must be between 0 and phrase_max_duration, got %g", a.MinPhraseDuration)
	}

	if a.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1, got %d", a.QueueSize)
	}

	return nil
}

// Validate validates calibration configuration
func (c *CalibrationConfig) Validate() error {
	if c.Duration < 0.1 || c.Duration > 10 {
		return fmt.Errorf("duration must be between 0.1 and 10 seconds, got %g", c.Duration)
	}

	if c.Multiplier < 1 {
		return fmt.Errorf("multiplier must be at least 1, got %g", c.Multiplier)
	}

	return nil
}

// Validate validates recognition configuration
func (r *RecognitionConfig) Validate() error {
	switch r.Provider {
	case "google", "whisper":
	default:
		return fmt.Errorf("provider must be \"google\" or \"whisper\", got %q", r.Provider)
	}

	switch r.Language {
	case "zh-CN", "en-US", "auto":
	default:
		return fmt.Errorf("language must be \"zh-CN\", \"en-US\" or \"auto\", got %q", r.Language)
	}

	if r.Provider == "whisper" && r.Model == "" {
		return fmt.Errorf("model cannot be empty for the whisper provider")
	}

	if r.Timeout < 1 || r.Timeout > 300 {
		return fmt.Errorf("timeout must be between 1 and 300 seconds, got %d", r.Timeout)
	}

	if r.MaxRetries < 0 || r.MaxRetries > 10 {
		return fmt.Errorf("max_retries must be between 0 and 10, got %d", r.MaxRetries)
	}

	if r.MaxConcurrent < 1 || r.MaxConcurrent > 100 {
		return fmt.Errorf("max_concurrent must be between 1 and 100, got %d", r.MaxConcurrent)
	}

	return nil
}

// Validate validates store configuration
func (s *StoreConfig) Validate() error {
	if !s.Enabled {
		return nil
	}

	if s.Path == "" {
		return fmt.Errorf("path cannot be empty when the store is enabled")
	}

	if s.RetentionDays < 0 {
		return fmt.Errorf("retention_days cannot be negative, got %d", s.RetentionDays)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if !h.Enabled {
		return nil
	}

	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}

	if h.Address == "" {
		return fmt.Errorf("address cannot be empty when HTTP is enabled")
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of debug, info, warn, error, got %q", l.Level)
	}

	switch l.Format {
	case "json", "text":
	default:
		return fmt.Errorf("format must be \"json\" or \"text\", got %q", l.Format)
	}

	return nil
}

// GetClipDuration returns the system clip duration as time.Duration
func (a *AudioConfig) GetClipDuration() time.Duration {
	return time.Duration(a.ClipDuration * float64(time.Second))
}

// GetPhraseMaxDuration returns the phrase limit as time.Duration
func (a *AudioConfig) GetPhraseMaxDuration() time.Duration {
	return time.Duration(a.PhraseMaxDuration * float64(time.Second))
}

// GetPauseThreshold returns the pause threshold as time.Duration
func (a *AudioConfig) GetPauseThreshold() time.Duration {
	return time.Duration(a.PauseThreshold * float64(time.Second))
}

// GetMinPhraseDuration returns the minimum phrase duration as time.Duration
func (a *AudioConfig) GetMinPhraseDuration() time.Duration {
	return time.Duration(a.MinPhraseDuration * float64(time.Second))
}

// GetDuration returns the calibration duration as time.Duration
func (c *CalibrationConfig) GetDuration() time.Duration {
	return time.Duration(c.Duration * float64(time.Second))
}

// GetTimeoutDuration returns the recognition request timeout as time.Duration
func (r *RecognitionConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(r.Timeout) * time.Second
}

// GetRetention returns the store retention period as time.Duration
func (s *StoreConfig) GetRetention() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}
