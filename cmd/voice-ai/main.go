package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kizkdaisuki/voice-ai/internal/config"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "voice-ai"
	serviceVersion    = "1.0.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Voice recognition assistant for microphone and system audio",
		Long: `voice-ai captures audio from the microphone or the system output,
detects speech and prints timestamped transcripts from a remote
speech-to-text service.`,
		Example: `  voice-ai listen
  voice-ai listen --source system
  voice-ai listen --source mixed --language auto
  voice-ai transcribe recording.wav
  voice-ai history --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Path to configuration file")

	cmd.AddCommand(newListenCmd(&configPath))
	cmd.AddCommand(newDevicesCmd())
	cmd.AddCommand(newTranscribeCmd(&configPath))
	cmd.AddCommand(newHistoryCmd(&configPath))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", serviceName, serviceVersion, runtime.Version())
			return nil
		},
	}
}

// loadConfig reads the configuration file. A missing file at the default path
// is not an error, the built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && path == defaultConfigPath {
		cfg := config.Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
		return cfg, nil
	}

	return config.Load(path)
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Transcripts go to stdout, logs default to stderr so the two streams
	// stay separable.
	var output *os.File
	switch cfg.Output {
	case "stderr", "":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stderr\n", cfg.Output, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
