package audio

import (
	"testing"
	"time"
)

// fakeClock advances a fixed step on every call, so segmentation decisions
// are deterministic regardless of test host speed.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) next() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func newTestSegmenter(t *testing.T, step time.Duration) (*Segmenter, *fakeClock) {
	t.Helper()

	seg := NewSegmenter(SegmenterConfig{
		Source:            "mic",
		SampleRate:        16000,
		PauseThreshold:    500 * time.Millisecond,
		MinPhraseDuration: 200 * time.Millisecond,
		MaxPhraseDuration: 5 * time.Second,
	})

	clock := &fakeClock{now: time.Unix(1700000000, 0), step: step}
	seg.clock = clock.next

	return seg, clock
}

func TestSegmenterPhraseEndsOnPause(t *testing.T) {
	// Each frame advances the clock by 100ms.
	seg, _ := newTestSegmenter(t, 100*time.Millisecond)

	frame := make([]int16, 1600)

	// Silence before speech keeps the segmenter idle.
	for i := 0; i < 5; i++ {
		if clip := seg.Push(frame, false); clip != nil {
			t.Fatal("silence should not produce a clip")
		}
	}
	if !seg.IsIdle() {
		t.Fatal("segmenter should stay idle during silence")
	}

	// 1 second of speech opens a phrase.
	for i := 0; i < 10; i++ {
		if clip := seg.Push(frame, true); clip != nil {
			t.Fatal("phrase should not close while speech continues")
		}
	}
	if seg.IsIdle() {
		t.Fatal("segmenter should be collecting during speech")
	}

	// Silence: the phrase closes once the pause threshold is reached.
	var clip *Clip
	for i := 0; i < 10 && clip == nil; i++ {
		clip = seg.Push(frame, false)
	}

	if clip == nil {
		t.Fatal("expected a clip after sustained silence")
	}
	if clip.Source != "mic" {
		t.Errorf("source = %q, want mic", clip.Source)
	}
	if len(clip.Samples) == 0 {
		t.Error("clip has no samples")
	}
	if !seg.IsIdle() {
		t.Error("segmenter should be idle after the phrase closed")
	}

	stats := seg.GetStats()
	if stats.PhrasesCreated != 1 {
		t.Errorf("phrases created = %d, want 1", stats.PhrasesCreated)
	}
}

func TestSegmenterMaxDurationSplit(t *testing.T) {
	seg, _ := newTestSegmenter(t, 100*time.Millisecond)

	frame := make([]int16, 1600)

	// Continuous speech must be cut at MaxPhraseDuration (5s = 50 frames).
	var clip *Clip
	frames := 0
	for frames < 200 && clip == nil {
		clip = seg.Push(frame, true)
		frames++
	}

	if clip == nil {
		t.Fatal("expected a forced split during continuous speech")
	}
	if frames > 60 {
		t.Errorf("split after %d frames, want around 50", frames)
	}
	if clip.Duration > 6*time.Second {
		t.Errorf("clip duration = %v, want <= ~5s", clip.Duration)
	}
}

func TestSegmenterDropsShortPhrases(t *testing.T) {
	seg, _ := newTestSegmenter(t, 100*time.Millisecond)

	frame := make([]int16, 1600)

	// One voiced frame (100ms) is below MinPhraseDuration.
	seg.Push(frame, true)

	var clip *Clip
	for i := 0; i < 10 && clip == nil; i++ {
		clip = seg.Push(frame, false)
	}

	if clip != nil {
		t.Error("sub-minimum phrase should be dropped, not emitted")
	}

	stats := seg.GetStats()
	if stats.PhrasesDropped != 1 {
		t.Errorf("phrases dropped = %d, want 1", stats.PhrasesDropped)
	}
	if stats.PhrasesCreated != 0 {
		t.Errorf("phrases created = %d, want 0", stats.PhrasesCreated)
	}
}

func TestSegmenterForceFinalize(t *testing.T) {
	seg, _ := newTestSegmenter(t, 100*time.Millisecond)

	if clip := seg.ForceFinalize(); clip != nil {
		t.Error("force finalize on idle segmenter should return nil")
	}

	frame := make([]int16, 1600)
	for i := 0; i < 10; i++ {
		seg.Push(frame, true)
	}

	clip := seg.ForceFinalize()
	if clip == nil {
		t.Fatal("expected the open phrase to be flushed")
	}
	if !seg.IsIdle() {
		t.Error("segmenter should be idle after force finalize")
	}
}
