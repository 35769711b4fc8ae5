package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kizkdaisuki/voice-ai/internal/capture"
	"github.com/kizkdaisuki/voice-ai/internal/config"
	"github.com/kizkdaisuki/voice-ai/internal/metrics"
	"github.com/kizkdaisuki/voice-ai/internal/recognize"
	"github.com/kizkdaisuki/voice-ai/internal/server"
	"github.com/kizkdaisuki/voice-ai/internal/session"
	"github.com/kizkdaisuki/voice-ai/internal/transcript"
)

func newListenCmd(configPath *string) *cobra.Command {
	var sourceName string
	var language string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Listen to an audio source and print live transcripts",
		Long: `Listen captures audio from the selected source, calibrates against the
ambient noise level and prints a timestamped transcript line for every
recognized phrase until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if language != "" {
				cfg.Recognition.Language = language
				if err := cfg.Recognition.Validate(); err != nil {
					return fmt.Errorf("recognition config: %w", err)
				}
			}

			return runListen(cfg, sourceName)
		},
	}

	cmd.Flags().StringVar(&sourceName, "source", "mic", "Audio source: mic, system or mixed")
	cmd.Flags().StringVar(&language, "language", "", "Recognition language override: zh-CN, en-US or auto")

	return cmd
}

// buildSources constructs the capture sources for the selected mode.
func buildSources(cfg *config.Config, sourceName string) ([]capture.Source, error) {
	captureConfig := capture.Config{
		SampleRate:      cfg.Capture.SampleRate,
		FramesPerBuffer: cfg.Capture.FramesPerBuffer,
	}

	switch sourceName {
	case "mic":
		return []capture.Source{capture.NewMicSource(captureConfig)}, nil
	case "system":
		return []capture.Source{capture.NewSystemSource(captureConfig, cfg.Capture.SystemDeviceHint)}, nil
	case "mixed":
		return []capture.Source{
			capture.NewMicSource(captureConfig),
			capture.NewSystemSource(captureConfig, cfg.Capture.SystemDeviceHint),
		}, nil
	default:
		return nil, fmt.Errorf("unknown source %q, want mic, system or mixed", sourceName)
	}
}

func runListen(cfg *config.Config, sourceName string) error {
	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("source", sourceName),
	)
	logger.Info("Configuration loaded",
		slog.Int("sample_rate", cfg.Capture.SampleRate),
		slog.Float64("clip_duration", cfg.Audio.ClipDuration),
		slog.Float64("phrase_max_duration", cfg.Audio.PhraseMaxDuration),
		slog.Float64("pause_threshold", cfg.Audio.PauseThreshold),
		slog.String("provider", cfg.Recognition.Provider),
		slog.String("language", cfg.Recognition.Language),
		slog.String("log_level", cfg.Logging.Level),
	)

	sources, err := buildSources(cfg, sourceName)
	if err != nil {
		return err
	}

	if err := capture.Initialize(); err != nil {
		return err
	}
	defer capture.Terminate()

	recognizer, err := recognize.New(cfg.Recognition)
	if err != nil {
		return fmt.Errorf("failed to create recognizer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store *transcript.Store
	var sessionStore session.TranscriptStore
	var historyReader server.TranscriptReader
	if cfg.Store.Enabled {
		store, err = transcript.OpenStore(ctx, cfg.Store.Path, cfg.Store.GetRetention(), logger)
		if err != nil {
			return fmt.Errorf("failed to open transcript store: %w", err)
		}
		defer store.Close()
		sessionStore = store
		historyReader = store
	}

	appMetrics := metrics.NewMetrics()
	printer := transcript.NewPrinter(os.Stdout)

	mgr, err := session.NewManager(logger, cfg, sources, recognizer, printer, sessionStore, appMetrics)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	var httpServer *server.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = server.NewHTTPServer(cfg.HTTP, logger, cfg, mgr, historyReader, appMetrics)
		if err := httpServer.Start(); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}

	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Listening, press Ctrl+C to stop",
		slog.String("session_id", mgr.ID()),
	)

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		}
	}

	mgr.Stop()

	logger.Info("Service stopped")
	return nil
}
