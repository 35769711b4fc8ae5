package audio

import (
	"testing"
	"time"
)

func TestClipBufferProducesFixedClips(t *testing.T) {
	// 100 samples per clip at 100 Hz = 1 second clips.
	buf := NewClipBuffer("system", 100, time.Second)

	frame := make([]int16, 30)
	for i := range frame {
		frame[i] = 1000
	}

	var clips []*Clip
	for i := 0; i < 11; i++ {
		if clip := buf.Add(frame); clip != nil {
			clips = append(clips, clip)
		}
	}

	// 330 samples consumed -> 3 complete clips of 100 samples each.
	if len(clips) != 3 {
		t.Fatalf("clips produced = %d, want 3", len(clips))
	}

	for i, clip := range clips {
		if len(clip.Samples) != 100 {
			t.Errorf("clip %d samples = %d, want 100", i, len(clip.Samples))
		}
		if clip.Source != "system" {
			t.Errorf("clip %d source = %q, want system", i, clip.Source)
		}
		if clip.SampleRate != 100 {
			t.Errorf("clip %d sample rate = %d, want 100", i, clip.SampleRate)
		}
		if clip.ID == "" {
			t.Errorf("clip %d has empty ID", i)
		}
	}

	if buf.Pending() != 30 {
		t.Errorf("pending = %d, want 30 leftover samples", buf.Pending())
	}
}

func TestClipBufferFlush(t *testing.T) {
	buf := NewClipBuffer("system", 16000, 3*time.Second)

	if clip := buf.Flush(); clip != nil {
		t.Error("flush of empty buffer should return nil")
	}

	frame := make([]int16, 160)
	buf.Add(frame)

	clip := buf.Flush()
	if clip == nil {
		t.Fatal("flush should return the partial clip")
	}
	if len(clip.Samples) != 160 {
		t.Errorf("flushed samples = %d, want 160", len(clip.Samples))
	}
	if buf.Pending() != 0 {
		t.Errorf("pending after flush = %d, want 0", buf.Pending())
	}
}

func TestNewClipLevels(t *testing.T) {
	samples := []int16{16384, -16384, 16384, -16384}
	start := time.Now()
	end := start.Add(time.Second)

	clip := NewClip("mic", 16000, samples, start, end)

	if clip.Duration != time.Second {
		t.Errorf("duration = %v, want 1s", clip.Duration)
	}
	if clip.Peak < 0.49 || clip.Peak > 0.51 {
		t.Errorf("peak = %g, want ~0.5", clip.Peak)
	}
	if clip.RMS < 0.49 || clip.RMS > 0.51 {
		t.Errorf("rms = %g, want ~0.5", clip.RMS)
	}
}
