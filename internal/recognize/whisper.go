package recognize

import (
	"bytes"
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kizkdaisuki/voice-ai/internal/audio"
)

// WhisperConfig contains OpenAI whisper client configuration
type WhisperConfig struct {
	Endpoint      string // optional base URL override for compatible servers
	APIKey        string
	Model         string
	Timeout       time.Duration
	MaxRetries    int
	MaxConcurrent int
}

// WhisperRecognizer transcribes clips through the OpenAI audio transcription
// API. Clips are encoded to WAV in memory and streamed in the request.
type WhisperRecognizer struct {
	config WhisperConfig
	client *openai.Client
	guard  *guard
}

// NewWhisperRecognizer creates a whisper API client.
func NewWhisperRecognizer(config WhisperConfig) (*WhisperRecognizer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("whisper provider requires an API key")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("whisper provider requires a model name")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.Endpoint != "" {
		clientConfig.BaseURL = config.Endpoint
	}

	return &WhisperRecognizer{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		guard:  newGuard(config.MaxConcurrent, config.MaxRetries),
	}, nil
}

// Recognize implements Recognizer.
func (r *WhisperRecognizer) Recognize(ctx context.Context, clip *audio.Clip, language string) (*Result, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, fmt.Errorf("cannot recognize empty clip")
	}

	return r.guard.do(ctx, func(ctx context.Context) (*Result, error) {
		return r.doRequest(ctx, clip, language)
	})
}

func (r *WhisperRecognizer) doRequest(ctx context.Context, clip *audio.Clip, language string) (*Result, error) {
	startTime := time.Now()

	wavData, err := audio.EncodeWAV(clip.Samples, clip.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to encode clip: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	resp, err := r.client.CreateTranscription(reqCtx, openai.AudioRequest{
		Model:    r.config.Model,
		Reader:   bytes.NewReader(wavData),
		FilePath: clip.ID + ".wav",
		Language: whisperLanguage(language),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}

	if resp.Text == "" {
		return nil, ErrNoSpeech
	}

	return &Result{
		ClipID:   clip.ID,
		Text:     resp.Text,
		Language: language,
		Elapsed:  time.Since(startTime),
	}, nil
}

// whisperLanguage maps BCP-47 tags to the ISO-639-1 codes whisper expects.
func whisperLanguage(language string) string {
	switch language {
	case LanguageChinese:
		return "zh"
	case LanguageEnglish:
		return "en"
	default:
		return ""
	}
}

// GetStats returns current client statistics
func (r *WhisperRecognizer) GetStats() ClientStats {
	return r.guard.stats()
}

// Close waits for in-flight requests to finish.
func (r *WhisperRecognizer) Close() error {
	r.guard.close()
	return nil
}
