package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kizkdaisuki/voice-ai/internal/audio"
	"github.com/kizkdaisuki/voice-ai/internal/capture"
	"github.com/kizkdaisuki/voice-ai/internal/config"
	"github.com/kizkdaisuki/voice-ai/internal/metrics"
	"github.com/kizkdaisuki/voice-ai/internal/recognize"
	"github.com/kizkdaisuki/voice-ai/internal/transcript"
	"github.com/kizkdaisuki/voice-ai/internal/vad"
)

// TranscriptStore persists recognized transcripts. Satisfied by
// transcript.Store, nil disables persistence.
type TranscriptStore interface {
	Save(ctx context.Context, t *transcript.Transcript) error
}

// SourceStats represents the pipeline statistics of one capture source
type SourceStats struct {
	Name      string                `json:"name"`
	Detector  vad.Stats             `json:"detector"`
	Segmenter *audio.SegmenterStats `json:"segmenter,omitempty"`
}

// Stats represents aggregated session statistics
type Stats struct {
	SessionID          string        `json:"session_id"`
	Uptime             time.Duration `json:"uptime"`
	Sources            []SourceStats `json:"sources"`
	ClipsDispatched    uint64        `json:"clips_dispatched"`
	ClipsDroppedSilent uint64        `json:"clips_dropped_silent"`
	ClipsDroppedQueue  uint64        `json:"clips_dropped_queue"`
	Transcripts        uint64        `json:"transcripts"`
	RecognitionErrors  uint64        `json:"recognition_errors"`
	NoSpeechClips      uint64        `json:"no_speech_clips"`
	QueueSize          int           `json:"queue_size"`
}

// Manager runs one listening session: it drives the capture sources, routes
// their frames through voice detection and segmentation, and hands completed
// clips to the recognition workers.
type Manager struct {
	id     string
	logger *slog.Logger
	cfg    *config.Config

	sources    []capture.Source
	recognizer recognize.Recognizer
	printer    *transcript.Printer
	store      TranscriptStore
	metrics    *metrics.Metrics

	clips chan *audio.Clip

	// Capture pipelines stop when captureCancel fires. Workers keep draining
	// the clip queue afterwards so trailing phrases still get recognized.
	captureCtx    context.Context
	captureCancel context.CancelFunc
	workerCtx     context.Context
	workerCancel  context.CancelFunc

	sourceWg sync.WaitGroup
	workerWg sync.WaitGroup

	startTime time.Time
	pipelines []*pipeline

	clipsDispatched    uint64
	clipsDroppedSilent uint64
	clipsDroppedQueue  uint64
	transcripts        uint64
	recognitionErrors  uint64
	noSpeechClips      uint64
	mu                 sync.RWMutex
}

// pipeline holds the per-source processing state. The mic source segments by
// pauses, the system source cuts fixed-length clips and drops silent ones.
type pipeline struct {
	source    capture.Source
	detector  *vad.Detector
	segmenter *audio.Segmenter
	buffer    *audio.ClipBuffer

	calSamples []int16
	calTarget  int
}

// NewManager creates a session manager for the given sources. The store and
// metrics may be nil.
func NewManager(logger *slog.Logger, cfg *config.Config, sources []capture.Source,
	recognizer recognize.Recognizer, printer *transcript.Printer,
	store TranscriptStore, m *metrics.Metrics) (*Manager, error) {

	mgr := &Manager{
		id:         uuid.NewString(),
		logger:     logger,
		cfg:        cfg,
		sources:    sources,
		recognizer: recognizer,
		printer:    printer,
		store:      store,
		metrics:    m,
		clips:      make(chan *audio.Clip, cfg.Audio.QueueSize),
	}

	calTarget := int(float64(cfg.Capture.SampleRate) * cfg.Calibration.Duration)
	if calTarget < 1 {
		calTarget = 1
	}

	for _, src := range sources {
		detector, err := vad.NewDetector(vad.Config{
			Multiplier: cfg.Calibration.Multiplier,
			Dynamic:    cfg.Calibration.Dynamic,
		})
		if err != nil {
			return nil, err
		}

		p := &pipeline{
			source:    src,
			detector:  detector,
			calTarget: calTarget,
		}

		if src.Name() == "mic" {
			p.segmenter = audio.NewSegmenter(audio.SegmenterConfig{
				Source:            src.Name(),
				SampleRate:        cfg.Capture.SampleRate,
				PauseThreshold:    cfg.Audio.GetPauseThreshold(),
				MinPhraseDuration: cfg.Audio.GetMinPhraseDuration(),
				MaxPhraseDuration: cfg.Audio.GetPhraseMaxDuration(),
			})
		} else {
			p.buffer = audio.NewClipBuffer(src.Name(), cfg.Capture.SampleRate,
				cfg.Audio.GetClipDuration())
		}

		mgr.pipelines = append(mgr.pipelines, p)
	}

	return mgr, nil
}

// ID returns the session identifier.
func (m *Manager) ID() string {
	return m.id
}

// Start launches the capture pipelines and recognition workers.
func (m *Manager) Start(ctx context.Context) error {
	m.captureCtx, m.captureCancel = context.WithCancel(ctx)
	m.workerCtx, m.workerCancel = context.WithCancel(context.Background())
	m.startTime = time.Now()

	for i := 0; i < m.cfg.Recognition.MaxConcurrent; i++ {
		m.workerWg.Add(1)
		go m.recognitionWorker()
	}

	for _, p := range m.pipelines {
		m.sourceWg.Add(1)
		go m.runPipeline(p)
	}

	if m.metrics != nil {
		m.metrics.SetActiveSources(len(m.pipelines))
	}

	m.logger.Info("Session started",
		slog.String("session_id", m.id),
		slog.Int("sources", len(m.pipelines)),
		slog.String("language", m.cfg.Recognition.Language),
		slog.String("provider", m.cfg.Recognition.Provider),
	)

	return nil
}

// Wait blocks until all capture pipelines have stopped.
func (m *Manager) Wait() {
	m.sourceWg.Wait()
}

// Stop shuts the session down: capture stops first, then the workers drain
// the remaining clips so trailing speech is still recognized.
func (m *Manager) Stop() {
	m.logger.Info("Stopping session", slog.String("session_id", m.id))

	m.captureCancel()
	m.sourceWg.Wait()

	close(m.clips)
	m.workerWg.Wait()
	m.workerCancel()

	if err := m.recognizer.Close(); err != nil {
		m.logger.Warn("Recognizer close failed", slog.String("error", err.Error()))
	}

	if m.metrics != nil {
		m.metrics.SetActiveSources(0)
	}

	stats := m.GetStats()
	m.logger.Info("Session stopped",
		slog.String("session_id", m.id),
		slog.Duration("uptime", stats.Uptime),
		slog.Uint64("clips_dispatched", stats.ClipsDispatched),
		slog.Uint64("clips_dropped_silent", stats.ClipsDroppedSilent),
		slog.Uint64("clips_dropped_queue", stats.ClipsDroppedQueue),
		slog.Uint64("transcripts", stats.Transcripts),
		slog.Uint64("recognition_errors", stats.RecognitionErrors),
	)
}

// runPipeline consumes frames from one capture source until it stops, then
// flushes any partial clip so trailing audio is not lost.
func (m *Manager) runPipeline(p *pipeline) {
	defer m.sourceWg.Done()

	name := p.source.Name()
	frames := make(chan []int16, 8)

	go func() {
		defer close(frames)
		if err := p.source.Run(m.captureCtx, frames); err != nil {
			m.logger.Error("Capture source failed",
				slog.String("source", name),
				slog.String("error", err.Error()),
			)
			if m.metrics != nil {
				m.metrics.RecordCaptureError(name)
			}
		}
	}()

	m.logger.Info("Calibrating ambient noise level",
		slog.String("source", name),
		slog.Float64("seconds", m.cfg.Calibration.Duration),
	)

	for frame := range frames {
		if m.metrics != nil {
			m.metrics.RecordFrameCaptured(name)
		}

		if !p.detector.IsCalibrated() {
			p.calSamples = append(p.calSamples, frame...)
			if len(p.calSamples) < p.calTarget {
				continue
			}
			if err := p.detector.Calibrate(p.calSamples); err != nil {
				m.logger.Warn("Calibration failed, using default threshold",
					slog.String("source", name),
					slog.String("error", err.Error()),
				)
			} else {
				m.logger.Info("Calibration complete",
					slog.String("source", name),
					slog.Float64("threshold", p.detector.Threshold()),
				)
			}
			p.calSamples = nil
			continue
		}

		m.processFrame(p, frame)
	}

	// Source stopped, finish whatever phrase or clip is open.
	if p.segmenter != nil {
		if clip := p.segmenter.ForceFinalize(); clip != nil {
			m.dispatch(clip)
		}
	}
	if p.buffer != nil {
		if clip := p.buffer.Flush(); clip != nil {
			m.handleSystemClip(p, clip)
		}
	}

	m.logger.Info("Capture pipeline stopped", slog.String("source", name))
}

func (m *Manager) processFrame(p *pipeline, frame []int16) {
	decision := p.detector.Process(frame)
	if m.metrics != nil {
		m.metrics.RecordVADFrame(decision.HasVoice, decision.Threshold)
	}

	if p.segmenter != nil {
		if clip := p.segmenter.Push(frame, decision.HasVoice); clip != nil {
			m.dispatch(clip)
		}
		return
	}

	if clip := p.buffer.Add(frame); clip != nil {
		m.handleSystemClip(p, clip)
	}
}

// handleSystemClip drops fixed-length system clips that contain no audible
// peak, everything else goes to recognition.
func (m *Manager) handleSystemClip(p *pipeline, clip *audio.Clip) {
	if p.detector.IsSilentClip(clip.Samples) {
		m.mu.Lock()
		m.clipsDroppedSilent++
		m.mu.Unlock()

		if m.metrics != nil {
			m.metrics.RecordClipDroppedSilent()
		}

		m.logger.Debug("Dropped silent clip",
			slog.String("source", clip.Source),
			slog.Float64("peak", clip.Peak),
		)
		return
	}

	m.dispatch(clip)
}

// dispatch queues a clip for recognition without ever blocking the capture
// path. When the queue is full the oldest waiting clip is discarded first.
func (m *Manager) dispatch(clip *audio.Clip) {
	select {
	case m.clips <- clip:
	default:
		select {
		case dropped := <-m.clips:
			m.mu.Lock()
			m.clipsDroppedQueue++
			m.mu.Unlock()

			if m.metrics != nil {
				m.metrics.RecordClipDroppedQueue()
			}

			m.logger.Warn("Recognition queue full, dropping oldest clip",
				slog.String("clip_id", dropped.ID),
				slog.String("source", dropped.Source),
			)
		default:
		}

		select {
		case m.clips <- clip:
		default:
			return
		}
	}

	m.mu.Lock()
	m.clipsDispatched++
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordClipGenerated(clip.Source, clip.Duration.Seconds())
		m.metrics.SetClipQueueSize(len(m.clips))
	}
}

// recognitionWorker pulls clips off the queue and turns them into transcript
// lines. A failed request never stops the session.
func (m *Manager) recognitionWorker() {
	defer m.workerWg.Done()

	for clip := range m.clips {
		m.recognizeClip(clip)
	}
}

func (m *Manager) recognizeClip(clip *audio.Clip) {
	if m.metrics != nil {
		m.metrics.RecordRecognitionRequest()
		m.metrics.SetClipQueueSize(len(m.clips))
	}

	startTime := time.Now()
	result, err := m.recognizer.Recognize(m.workerCtx, clip, m.cfg.Recognition.Language)
	elapsed := time.Since(startTime)

	if err != nil {
		if err == recognize.ErrNoSpeech {
			m.mu.Lock()
			m.noSpeechClips++
			m.mu.Unlock()

			if m.metrics != nil {
				m.metrics.RecordRecognitionNoSpeech()
			}

			m.logger.Debug("No speech in clip",
				slog.String("clip_id", clip.ID),
				slog.String("source", clip.Source),
			)
			return
		}

		m.mu.Lock()
		m.recognitionErrors++
		m.mu.Unlock()

		if m.metrics != nil {
			m.metrics.RecordRecognitionFailure(elapsed.Seconds())
		}

		m.logger.Warn("Recognition failed",
			slog.String("clip_id", clip.ID),
			slog.String("source", clip.Source),
			slog.Duration("clip_duration", clip.Duration),
			slog.String("error", err.Error()),
		)
		return
	}

	if m.metrics != nil {
		m.metrics.RecordRecognitionSuccess(elapsed.Seconds())
	}

	t := &transcript.Transcript{
		SessionID:  m.id,
		ClipID:     clip.ID,
		Source:     clip.Source,
		Language:   result.Language,
		Label:      recognize.LanguageLabel(result.Language),
		Text:       result.Text,
		Confidence: result.Confidence,
		Duration:   clip.Duration,
		CreatedAt:  clip.EndTime,
	}

	m.printer.Print(t)

	m.mu.Lock()
	m.transcripts++
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Save(m.workerCtx, t); err != nil {
			m.logger.Warn("Failed to persist transcript",
				slog.String("clip_id", clip.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// GetStats returns a snapshot of the session statistics.
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	stats := Stats{
		SessionID:          m.id,
		Uptime:             time.Since(m.startTime),
		ClipsDispatched:    m.clipsDispatched,
		ClipsDroppedSilent: m.clipsDroppedSilent,
		ClipsDroppedQueue:  m.clipsDroppedQueue,
		Transcripts:        m.transcripts,
		RecognitionErrors:  m.recognitionErrors,
		NoSpeechClips:      m.noSpeechClips,
		QueueSize:          len(m.clips),
	}
	m.mu.RUnlock()

	for _, p := range m.pipelines {
		src := SourceStats{
			Name:     p.source.Name(),
			Detector: p.detector.GetStats(),
		}
		if p.segmenter != nil {
			segStats := p.segmenter.GetStats()
			src.Segmenter = &segStats
		}
		stats.Sources = append(stats.Sources, src)
	}

	return stats
}
