package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kizkdaisuki/voice-ai/internal/recognize"
	"github.com/kizkdaisuki/voice-ai/internal/transcript"
)

func newHistoryCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transcripts from the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if !cfg.Store.Enabled {
				return fmt.Errorf("transcript store is disabled in the configuration")
			}

			logger := initLogger(cfg.Logging)
			ctx := context.Background()

			store, err := transcript.OpenStore(ctx, cfg.Store.Path, cfg.Store.GetRetention(), logger)
			if err != nil {
				return fmt.Errorf("failed to open transcript store: %w", err)
			}
			defer store.Close()

			transcripts, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}

			// Recent returns newest first, the terminal reads better oldest
			// first.
			for i := len(transcripts) - 1; i >= 0; i-- {
				t := transcripts[i]
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s [%s] %s\n",
					t.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					transcript.SourceMarker(t.Source),
					recognize.LanguageLabel(t.Language),
					t.Text,
				)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of transcripts to show")

	return cmd
}
