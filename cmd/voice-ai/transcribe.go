package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kizkdaisuki/voice-ai/internal/audio"
	"github.com/kizkdaisuki/voice-ai/internal/recognize"
	"github.com/kizkdaisuki/voice-ai/internal/transcript"
)

func newTranscribeCmd(configPath *string) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "transcribe <file.wav> [file.wav...]",
		Short: "Transcribe WAV files",
		Long: `Transcribe sends one or more WAV files to the configured speech-to-text
service and prints a transcript line per file. Multi-channel and 24/32-bit
PCM files are downmixed to 16-bit mono first.`,
		Args: cobra.MinimumNArgs(1),
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

			recognizer, err := recognize.New(cfg.Recognition)
			if err != nil {
				return fmt.Errorf("failed to create recognizer: %w", err)
			}
			defer recognizer.Close()

			printer := transcript.NewPrinter(os.Stdout)
			ctx := context.Background()

			var firstErr error
			for _, path := range args {
				if err := transcribeFile(ctx, recognizer, printer, cfg.Recognition.Language, path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					if firstErr == nil {
						firstErr = err
					}
				}
			}

			return firstErr
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "Recognition language override: zh-CN, en-US or auto")

	return cmd
}

func transcribeFile(ctx context.Context, recognizer recognize.Recognizer,
	printer *transcript.Printer, language, path string) error {

	samples, sampleRate, err := audio.ReadWAVFile(path)
	if err != nil {
		return err
	}

	duration := time.Duration(float64(len(samples)) / float64(sampleRate) * float64(time.Second))
	now := time.Now()
	clip := audio.NewClip("file", sampleRate, samples, now.Add(-duration), now)

	result, err := recognizer.Recognize(ctx, clip, language)
	if err != nil {
		return err
	}

	printer.Print(&transcript.Transcript{
		ClipID:     clip.ID,
		Source:     "file",
		Language:   result.Language,
		Label:      recognize.LanguageLabel(result.Language),
		Text:       result.Text,
		Confidence: result.Confidence,
		Duration:   duration,
		CreatedAt:  now,
	})

	return nil
}
