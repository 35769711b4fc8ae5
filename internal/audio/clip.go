package audio

import (
	"time"

	"github.com/google/uuid"
)

// Clip represents a discrete piece of captured audio ready for recognition
type Clip struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"` // "mic" or "system"
	SampleRate int           `json:"sample_rate"`
	Samples    []int16       `json:"-"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
	Peak       float64       `json:"peak"`
	RMS        float64       `json:"rms"`
}

// NewClip builds a clip from accumulated samples and computes its levels.
func NewClip(source string, sampleRate int, samples []int16, start, end time.Time) *Clip {
	return &Clip{
		ID:         uuid.NewString(),
		Source:     source,
		SampleRate: sampleRate,
		Samples:    samples,
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Sub(start),
		Peak:       PeakLevel(samples),
		RMS:        RMSLevel(samples),
	}
}

// ClipBuffer accumulates fixed-duration clips from a continuous frame stream.
// It is the buffering strategy of the system audio path: every clipDuration
// worth of samples becomes one clip regardless of content.
type ClipBuffer struct {
	source     string
	sampleRate int
	target     int // samples per clip
	samples    []int16
	startTime  time.Time
	clock      func() time.Time
}

// NewClipBuffer creates a clip buffer producing clips of the given duration.
func NewClipBuffer(source string, sampleRate int, clipDuration time.Duration) *ClipBuffer {
	target := int(float64(sampleRate) * clipDuration.Seconds())
	if target < 1 {
		target = 1
	}
	return &ClipBuffer{
		source:     source,
		sampleRate: sampleRate,
		target:     target,
		samples:    make([]int16, 0, target),
		clock:      time.Now,
	}
}

// Add appends a captured frame and returns a completed clip once the buffer
// reaches the target duration, or nil while still accumulating.
func (b *ClipBuffer) Add(frame []int16) *Clip {
	if len(b.samples) == 0 {
		b.startTime = b.clock()
	}

	b.samples = append(b.samples, frame...)
	if len(b.samples) < b.target {
		return nil
	}

	samples := b.samples[:b.target]
	rest := b.samples[b.target:]

	clip := NewClip(b.source, b.sampleRate, samples, b.startTime, b.clock())

	b.samples = make([]int16, 0, b.target)
	if len(rest) > 0 {
		b.samples = append(b.samples, rest...)
		b.startTime = b.clock()
	}

	return clip
}

// Flush returns any partially accumulated audio as a final clip, or nil if
// the buffer is empty.
func (b *ClipBuffer) Flush() *Clip {
	if len(b.samples) == 0 {
		return nil
	}

	clip := NewClip(b.source, b.sampleRate, b.samples, b.startTime, b.clock())
	b.samples = make([]int16, 0, b.target)

	return clip
}

// Pending returns the number of samples currently buffered.
func (b *ClipBuffer) Pending() int {
	return len(b.samples)
}
