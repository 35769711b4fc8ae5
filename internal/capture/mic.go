package capture

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// MicSource captures audio from the default input device.
type MicSource struct {
	config Config
}

// NewMicSource creates a microphone capture source.
func NewMicSource(config Config) *MicSource {
	return &MicSource{config: config}
}

// Name implements Source.
func (s *MicSource) Name() string { return "mic" }

// Run opens the default input stream and reads frames until ctx is cancelled.
func (s *MicSource) Run(ctx context.Context, frames chan<- []int16) error {
	buf := make([]int16, s.config.FramesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(s.config.SampleRate), len(buf), buf)
	if err != nil {
		return fmt.Errorf("failed to open default input stream: %w", err)
	}

	return runStream(ctx, stream, buf, frames)
}
