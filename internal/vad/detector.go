package vad

import (
	"fmt"
	"sync"
	"time"

	"github.com/kizkdaisuki/voice-ai/internal/audio"
)

const (
	// DefaultThreshold is the normalized RMS level used before calibration.
	// It corresponds to the classic energy threshold of 300 on the 16-bit
	// sample scale.
	DefaultThreshold = 300.0 / 32768.0

	// minThreshold is the floor below which dynamic adjustment never drops
	// the threshold, so dead-quiet rooms do not turn breathing into speech.
	minThreshold = 0.003

	// ambientSmoothing controls how fast the tracked background level follows
	// new silent frames during dynamic adjustment.
	ambientSmoothing = 0.1
)

// Config contains detector configuration
type Config struct {
	Multiplier float64 // threshold = ambient level * multiplier
	Dynamic    bool    // keep tracking background noise while running
}

// Decision represents the result of processing one frame
type Decision struct {
	Level     float64   `json:"level"`      // normalized RMS level of the frame
	Threshold float64   `json:"threshold"`  // threshold the level was compared against
	HasVoice  bool      `json:"has_voice"`  // whether the frame is above the threshold
	Timestamp time.Time `json:"timestamp"`
}

// Stats represents detector statistics
type Stats struct {
	Calibrated      bool    `json:"calibrated"`
	Threshold       float64 `json:"threshold"`
	AmbientLevel    float64 `json:"ambient_level"`
	TotalFrames     uint64  `json:"total_frames"`
	VoiceFrames     uint64  `json:"voice_frames"`
	VoicePercentage float64 `json:"voice_percentage"`
}

// Detector decides whether audio frames contain speech by comparing their
// RMS level against a calibrated silence threshold.
type Detector struct {
	config     Config
	threshold  float64
	ambient    float64
	calibrated bool

	totalFrames uint64
	voiceFrames uint64

	mu sync.RWMutex
}

// NewDetector creates a detector with the default threshold. Call Calibrate
// with ambient audio before processing for a threshold matched to the room.
func NewDetector(config Config) (*Detector, error) {
	if config.Multiplier < 1 {
		return nil, fmt.Errorf("multiplier must be at least 1, got %g", config.Multiplier)
	}

	return &Detector{
		config:    config,
		threshold: DefaultThreshold,
	}, nil
}

// Calibrate measures the ambient noise level from the given samples and sets
// the silence threshold. This is the one-time ambient calibration performed
// at session start.
func (d *Detector) Calibrate(samples []int16) error {
	if len(samples) == 0 {
		return fmt.Errorf("cannot calibrate from empty samples")
	}

	level := audio.RMSLevel(samples)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.ambient = level
	d.threshold = clampThreshold(level * d.config.Multiplier)
	d.calibrated = true

	return nil
}

// Process classifies one frame. Silent frames feed the dynamic background
// estimate when dynamic adjustment is enabled.
func (d *Detector) Process(frame []int16) Decision {
	level := audio.RMSLevel(frame)

	d.mu.Lock()
	defer d.mu.Unlock()

	hasVoice := level >= d.threshold

	d.totalFrames++
	if hasVoice {
		d.voiceFrames++
	} else if d.config.Dynamic {
		d.ambient = (1-ambientSmoothing)*d.ambient + ambientSmoothing*level
		d.threshold = clampThreshold(d.ambient * d.config.Multiplier)
	}

	return Decision{
		Level:     level,
		Threshold: d.threshold,
		HasVoice:  hasVoice,
		Timestamp: time.Now(),
	}
}

// IsSilentClip reports whether a whole clip should be dropped without a
// recognition request. The peak is used rather than RMS so a short burst of
// speech inside a mostly quiet clip still goes through.
func (d *Detector) IsSilentClip(samples []int16) bool {
	d.mu.RLock()
	threshold := d.threshold
	d.mu.RUnlock()

	return audio.PeakLevel(samples) < threshold
}

// Threshold returns the current silence threshold.
func (d *Detector) Threshold() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threshold
}

// IsCalibrated returns whether Calibrate has run.
func (d *Detector) IsCalibrated() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.calibrated
}

// GetStats returns current detector statistics
func (d *Detector) GetStats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	voicePercentage := float64(0)
	if d.totalFrames > 0 {
		voicePercentage = float64(d.voiceFrames) / float64(d.totalFrames) * 100
	}

	return Stats{
		Calibrated:      d.calibrated,
		Threshold:       d.threshold,
		AmbientLevel:    d.ambient,
		TotalFrames:     d.totalFrames,
		VoiceFrames:     d.voiceFrames,
		VoicePercentage: voicePercentage,
	}
}

// Reset clears counters and restores the default threshold.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.threshold = DefaultThreshold
	d.ambient = 0
	d.calibrated = false
	d.totalFrames = 0
	d.voiceFrames = 0
}

func clampThreshold(v float64) float64 {
	if v < minThreshold {
		return minThreshold
	}
	if v > 1 {
		return 1
	}
	return v
}
