package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kizkdaisuki/voice-ai/internal/config"
	"github.com/kizkdaisuki/voice-ai/internal/metrics"
	"github.com/kizkdaisuki/voice-ai/internal/session"
	"github.com/kizkdaisuki/voice-ai/internal/transcript"
)

// TranscriptReader serves recent transcript history. Satisfied by
// transcript.Store, nil disables the /transcripts endpoint.
type TranscriptReader interface {
	Recent(ctx context.Context, limit int) ([]transcript.Transcript, error)
}

// HTTPServer provides HTTP endpoints for monitoring a running session
type HTTPServer struct {
	server  *http.Server
	logger  *slog.Logger
	config  *config.Config
	session *session.Manager
	store   TranscriptReader
	metrics *metrics.Metrics

	startTime time.Time
}

// NewHTTPServer creates the monitoring server for one session.
func NewHTTPServer(cfg config.HTTPConfig, logger *slog.Logger,
	appConfig *config.Config, sess *session.Manager, store TranscriptReader, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:    logger,
		config:    appConfig,
		session:   sess,
		store:     store,
		metrics:   m,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))
	mux.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats))
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))
	mux.HandleFunc("/transcripts", h.withMetrics("/transcripts", h.handleTranscripts))

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: 200}
		handler(ww, r)

		if h.metrics != nil {
			duration := time.Since(startTime).Seconds()
			h.metrics.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(ww.statusCode), duration)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting monitoring HTTP server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping monitoring HTTP server...")

	return h.server.Shutdown(ctx)
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := h.session.GetStats()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
		"session": map[string]interface{}{
			"id":               stats.SessionID,
			"sources":          len(stats.Sources),
			"clips_dispatched": stats.ClipsDispatched,
			"transcripts":      stats.Transcripts,
			"queue_size":       stats.QueueSize,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleStats implements the /stats endpoint
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := map[string]interface{}{
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC(),
		"session":   h.session.GetStats(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleConfig implements the /config endpoint. The API key is omitted.
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sanitizedConfig := map[string]interface{}{
		"capture": map[string]interface{}{
			"sample_rate":        h.config.Capture.SampleRate,
			"channels":           h.config.Capture.Channels,
			"frames_per_buffer":  h.config.Capture.FramesPerBuffer,
			"system_device_hint": h.config.Capture.SystemDeviceHint,
		},
		"audio": map[string]interface{}{
			"clip_duration":       h.config.Audio.ClipDuration,
			"phrase_max_duration": h.config.Audio.PhraseMaxDuration,
			"pause_threshold":     h.config.Audio.PauseThreshold,
			"min_phrase_duration": h.config.Audio.MinPhraseDuration,
			"queue_size":          h.config.Audio.QueueSize,
		},
		"calibration": map[string]interface{}{
			"duration":   h.config.Calibration.Duration,
			"multiplier": h.config.Calibration.Multiplier,
			"dynamic":    h.config.Calibration.Dynamic,
		},
		"recognition": map[string]interface{}{
			"provider":       h.config.Recognition.Provider,
			"language":       h.config.Recognition.Language,
			"model":          h.config.Recognition.Model,
			"timeout":        h.config.Recognition.Timeout,
			"max_retries":    h.config.Recognition.MaxRetries,
			"max_concurrent": h.config.Recognition.MaxConcurrent,
		},
		"store": map[string]interface{}{
			"enabled":        h.config.Store.Enabled,
			"path":           h.config.Store.Path,
			"retention_days": h.config.Store.RetentionDays,
		},
		"logging": map[string]interface{}{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizedConfig)
}

// handleTranscripts implements the /transcripts endpoint
func (h *HTTPServer) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.store == nil {
		http.Error(w, "Transcript history disabled", http.StatusNotFound)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 1000 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	transcripts, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to read transcript history", slog.String("error", err.Error()))
		http.Error(w, "Failed to read transcripts", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"count":       len(transcripts),
		"timestamp":   time.Now().UTC(),
		"transcripts": transcripts,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "voice-ai",
		"endpoints": map[string]interface{}{
			"GET /":            "API documentation",
			"GET /health":      "Session health check",
			"GET /stats":       "Session statistics",
			"GET /config":      "Effective configuration",
			"GET /transcripts": "Recent transcript history",
			"GET /metrics":     "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiDoc)
}
