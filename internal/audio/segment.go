package audio

import (
	"sync"
	"time"
)

// SegmentState represents the current state of the phrase segmentation process
type SegmentState int

const (
	StateIdle SegmentState = iota
	StateCollecting
)

// SegmenterConfig contains configuration for phrase segmentation
type SegmenterConfig struct {
	Source            string
	SampleRate        int
	PauseThreshold    time.Duration // silence that ends a phrase
	MinPhraseDuration time.Duration // shorter phrases are discarded
	MaxPhraseDuration time.Duration // phrases are cut at this length even mid-speech
}

// Segmenter turns a continuous frame stream into pause-delimited phrase clips.
// It drives the microphone path: a phrase starts on the first voiced frame,
// ends after PauseThreshold of silence, and is force-split at
// MaxPhraseDuration.
type Segmenter struct {
	config SegmenterConfig
	state  SegmentState

	samples     []int16
	phraseStart time.Time
	lastVoice   time.Time
	silenceFrom time.Time

	// Statistics
	phrasesCreated uint64
	phrasesDropped uint64
	totalDuration  time.Duration

	clock func() time.Time
	mu    sync.Mutex
}

// SegmenterStats represents segmenter statistics
type SegmenterStats struct {
	State          string        `json:"state"`
	PhrasesCreated uint64        `json:"phrases_created"`
	PhrasesDropped uint64        `json:"phrases_dropped"`
	TotalDuration  time.Duration `json:"total_duration"`
	PendingSamples int           `json:"pending_samples"`
}

// NewSegmenter creates a new phrase segmenter
func NewSegmenter(config SegmenterConfig) *Segmenter {
	return &Segmenter{
		config: config,
		state:  StateIdle,
		clock:  time.Now,
	}
}

// Push processes one captured frame together with its voice decision and
// returns a completed phrase clip, or nil while the phrase is still open.
func (s *Segmenter) Push(frame []int16, hasVoice bool) *Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()

	switch s.state {
	case StateIdle:
		if !hasVoice {
			return nil
		}
		// First voiced frame opens a phrase.
		s.state = StateCollecting
		s.phraseStart = now
		s.lastVoice = now
		s.silenceFrom = time.Time{}
		s.samples = append(s.samples[:0], frame...)
		return nil

	case StateCollecting:
		s.samples = append(s.samples, frame...)

		if hasVoice {
			s.lastVoice = now
			s.silenceFrom = time.Time{}
		} else if s.silenceFrom.IsZero() {
			s.silenceFrom = now
		}

		phraseDuration := now.Sub(s.phraseStart)
		if phraseDuration >= s.config.MaxPhraseDuration {
			return s.finalize(now)
		}

		if !s.silenceFrom.IsZero() && now.Sub(s.silenceFrom) >= s.config.PauseThreshold {
			return s.finalize(now)
		}
	}

	return nil
}

// ForceFinalize closes any open phrase, used on shutdown so trailing speech
// is not lost.
func (s *Segmenter) ForceFinalize() *Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return nil
	}

	return s.finalize(s.clock())
}

// finalize builds a clip from the collected phrase and resets the state.
// Caller must hold s.mu.
func (s *Segmenter) finalize(now time.Time) *Clip {
	speechDuration := s.lastVoice.Sub(s.phraseStart)

	var clip *Clip
	if speechDuration >= s.config.MinPhraseDuration {
		samples := make([]int16, len(s.samples))
		copy(samples, s.samples)

		clip = NewClip(s.config.Source, s.config.SampleRate, samples, s.phraseStart, now)

		s.phrasesCreated++
		s.totalDuration += clip.Duration
	} else {
		s.phrasesDropped++
	}

	s.state = StateIdle
	s.samples = s.samples[:0]
	s.phraseStart = time.Time{}
	s.lastVoice = time.Time{}
	s.silenceFrom = time.Time{}

	return clip
}

// IsIdle returns whether no phrase is currently open.
func (s *Segmenter) IsIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateIdle
}

// GetStats returns current segmenter statistics
func (s *Segmenter) GetStats() SegmenterStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stateStr := "idle"
	if s.state == StateCollecting {
		stateStr = "collecting"
	}

	return SegmenterStats{
		State:          stateStr,
		PhrasesCreated: s.phrasesCreated,
		PhrasesDropped: s.phrasesDropped,
		TotalDuration:  s.totalDuration,
		PendingSamples: len(s.samples),
	}
}
