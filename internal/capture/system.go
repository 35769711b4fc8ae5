package capture

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// SystemSource captures the system output through a loopback input device.
type SystemSource struct {
	config Config
	hint   string
}

// NewSystemSource creates a system audio capture source. The hint is matched
// against device names to find the loopback device.
func NewSystemSource(config Config, hint string) *SystemSource {
	return &SystemSource{config: config, hint: hint}
}

// Name implements Source.
func (s *SystemSource) Name() string { return "system" }

// Run opens the loopback device and reads frames until ctx is cancelled.
func (s *SystemSource) Run(ctx context.Context, frames chan<- []int16) error {
	device, err := loopbackDevice(s.hint)
	if err != nil {
		return err
	}

	buf := make([]int16, s.config.FramesPerBuffer)

	params := portaudio.LowLatencyParameters(device, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(s.config.SampleRate)
	params.FramesPerBuffer = len(buf)

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return fmt.Errorf("failed to open loopback stream on %q: %w", device.Name, err)
	}

	return runStream(ctx, stream, buf, frames)
}
