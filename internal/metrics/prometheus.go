package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the voice assistant
type Metrics struct {
	// Capture metrics
	FramesCaptured *prometheus.CounterVec
	CaptureErrors  *prometheus.CounterVec
	ActiveSources  prometheus.Gauge

	// VAD metrics
	VADFramesProcessed prometheus.Counter
	VADVoiceDetected   prometheus.Counter
	VADThreshold       prometheus.Gauge

	// Clip metrics
	ClipsGenerated     *prometheus.CounterVec
	ClipsDroppedSilent prometheus.Counter
	ClipsDroppedQueue  prometheus.Counter
	ClipDuration       prometheus.Histogram
	ClipQueueSize      prometheus.Gauge

	// Recognition metrics
	RecognitionRequests  prometheus.Counter
	RecognitionSuccesses prometheus.Counter
	RecognitionFailures  prometheus.Counter
	RecognitionNoSpeech  prometheus.Counter
	RecognitionRetries   prometheus.Counter
	RecognitionDuration  prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Capture metrics
		FramesCaptured: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voiceai_frames_captured_total",
			Help: "Total number of audio frames captured per source",
		}, []string{"source"}),
		CaptureErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voiceai_capture_errors_total",
			Help: "Total number of capture stream errors per source",
		}, []string{"source"}),
		ActiveSources: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "voiceai_active_sources",
			Help: "Current number of running capture sources",
		}),

		// VAD metrics
		VADFramesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voiceai_vad_frames_processed_total",
			Help: "Total number of frames run through voice activity detection",
		}),
		VADVoiceDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voiceai_vad_voice_detected_total",
			Help: "Total number of frames with voice detected",
		}),
		VADThreshold: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "voiceai_vad_threshold",
			Help: "Current normalized energy threshold",
		}),

		// Clip metrics
		ClipsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voiceai_clips_generated_total",
			Help: "Total number of audio clips generated per source",
		}, []string{"source"}),
		ClipsDroppedSilent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voiceai_clips_dropped_silent_total",
			Help: "Total number of clips discarded as silence",
		}),
		ClipsDroppedQueue: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voiceai_clips_dropped_queue_total",
			Help: "Total number of clips dropped because the recognition queue was full",
		}),
		ClipDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voiceai_clip_duration_seconds",
			Help:    "Duration of generated audio clips",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 0.25s to ~1 minute
		}),
		ClipQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "voiceai_clip_queue_size",
			Help: "Current number of clips waiting for recognition",
		}),

		// Recognition metrics
		RecognitionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voiceai_recognition_requests_total",
			Help: "Total number of recognition requests sent",
		}),
		RecognitionSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voiceai_recognition_successes_total",
			Help: "Total number of successful recognition requests",
		}),
		RecognitionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voiceai_recognition_failures_total",
			Help: "Total number of failed recognition requests",
		}),
		RecognitionNoSpeech: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voiceai_recognition_no_speech_total",
			Help: "Total number of clips the service found no speech in",
		}),
		RecognitionRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voiceai_recognition_retries_total",
			Help: "Total number of recognition request retries",
		}),
		RecognitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voiceai_recognition_duration_seconds",
			Help:    "Duration of recognition requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voiceai_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voiceai_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// RecordFrameCaptured increments the captured frame counter for a source
func (m *Metrics) RecordFrameCaptured(source string) {
	m.FramesCaptured.WithLabelValues(source).Inc()
}

// RecordCaptureError increments the capture error counter for a source
func (m *Metrics) RecordCaptureError(source string) {
	m.CaptureErrors.WithLabelValues(source).Inc()
}

// SetActiveSources sets the current number of running capture sources
func (m *Metrics) SetActiveSources(count int) {
	m.ActiveSources.Set(float64(count))
}

// RecordVADFrame increments VAD frames processed and optionally voice detected
func (m *Metrics) RecordVADFrame(hasVoice bool, threshold float64) {
	m.VADFramesProcessed.Inc()
	if hasVoice {
		m.VADVoiceDetected.Inc()
	}
	m.VADThreshold.Set(threshold)
}

// RecordClipGenerated records a generated audio clip
func (m *Metrics) RecordClipGenerated(source string, durationSeconds float64) {
	m.ClipsGenerated.WithLabelValues(source).Inc()
	m.ClipDuration.Observe(durationSeconds)
}

// RecordClipDroppedSilent increments the silent-clip counter
func (m *Metrics) RecordClipDroppedSilent() {
	m.ClipsDroppedSilent.Inc()
}

// RecordClipDroppedQueue increments the queue-overflow drop counter
func (m *Metrics) RecordClipDroppedQueue() {
	m.ClipsDroppedQueue.Inc()
}

// SetClipQueueSize sets the current recognition queue depth
func (m *Metrics) SetClipQueueSize(size int) {
	m.ClipQueueSize.Set(float64(size))
}

// RecordRecognitionRequest increments the recognition requests counter
func (m *Metrics) RecordRecognitionRequest() {
	m.RecognitionRequests.Inc()
}

// RecordRecognitionSuccess records a successful recognition
func (m *Metrics) RecordRecognitionSuccess(durationSeconds float64) {
	m.RecognitionSuccesses.Inc()
	m.RecognitionDuration.Observe(durationSeconds)
}

// RecordRecognitionFailure records a failed recognition
func (m *Metrics) RecordRecognitionFailure(durationSeconds float64) {
	m.RecognitionFailures.Inc()
	m.RecognitionDuration.Observe(durationSeconds)
}

// RecordRecognitionNoSpeech increments the no-speech counter
func (m *Metrics) RecordRecognitionNoSpeech() {
	m.RecognitionNoSpeech.Inc()
}

// RecordRecognitionRetry increments the retry counter
func (m *Metrics) RecordRecognitionRetry() {
	m.RecognitionRetries.Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}
