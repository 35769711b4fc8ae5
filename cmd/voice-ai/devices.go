package main

import (
	"github.com/spf13/cobra"

	"github.com/kizkdaisuki/voice-ai/internal/capture"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio host APIs and devices",
		Long: `Devices prints every audio host API and device PortAudio can see,
useful for picking the system loopback device hint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := capture.Initialize(); err != nil {
				return err
			}
			defer capture.Terminate()

			info, err := capture.Info()
			if err != nil {
				return err
			}

			cmd.Print(info)
			return nil
		},
	}
}
