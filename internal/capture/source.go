package capture

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Source delivers PCM-16 frames from an audio device. Run blocks until the
// context is cancelled or the device fails, sending one frame per read on the
// frames channel.
type Source interface {
	// Name identifies the source in transcripts and logs ("mic" or "system").
	Name() string
	Run(ctx context.Context, frames chan<- []int16) error
}

// Config contains shared capture parameters for all sources
type Config struct {
	SampleRate      int
	FramesPerBuffer int
}

// runStream drives the portaudio read loop shared by all sources. The stream
// must be open but not started.
func runStream(ctx context.Context, stream *portaudio.Stream, buf []int16, frames chan<- []int16) error {
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start stream: %w", err)
	}
	defer func() {
		stream.Stop()
		stream.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := stream.Read(); err != nil {
			// Input overflow means the host dropped samples while we were
			// busy. The stream is still usable, keep reading.
			if err == portaudio.InputOverflowed {
				continue
			}
			return fmt.Errorf("failed to read from stream: %w", err)
		}

		frame := make([]int16, len(buf))
		copy(frame, buf)

		select {
		case frames <- frame:
		case <-ctx.Done():
			return nil
		}
	}
}
