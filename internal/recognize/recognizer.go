package recognize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kizkdaisuki/voice-ai/internal/audio"
	"github.com/kizkdaisuki/voice-ai/internal/config"
)

// Supported recognition languages. LanguageAuto is resolved by the auto
// wrapper, the providers only ever see concrete languages.
const (
	LanguageChinese = "zh-CN"
	LanguageEnglish = "en-US"
	LanguageAuto    = "auto"
)

// ErrNoSpeech indicates the service processed the clip but found no
// recognizable speech in it. It is not retryable.
var ErrNoSpeech = errors.New("no speech recognized")

// Result represents one recognized clip
type Result struct {
	ClipID     string        `json:"clip_id"`
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Language   string        `json:"language"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Recognizer submits one clip to a speech-to-text service. The language must
// be a concrete language, never LanguageAuto.
type Recognizer interface {
	Recognize(ctx context.Context, clip *audio.Clip, language string) (*Result, error)
	Close() error
}

// LanguageLabel returns the transcript display label for a language
// ("中文" / "英文").
func LanguageLabel(language string) string {
	switch language {
	case LanguageChinese:
		return "中文"
	case LanguageEnglish:
		return "英文"
	default:
		return language
	}
}

// New builds the recognizer stack from configuration: the configured provider
// wrapped for auto language fallback when requested.
func New(cfg config.RecognitionConfig) (Recognizer, error) {
	var inner Recognizer
	var err error

	switch cfg.Provider {
	case "google":
		inner, err = NewGoogleRecognizer(GoogleConfig{
			Endpoint:      cfg.Endpoint,
			APIKey:        cfg.APIKey,
			Timeout:       cfg.GetTimeoutDuration(),
			MaxRetries:    cfg.MaxRetries,
			MaxConcurrent: cfg.MaxConcurrent,
		})
	case "whisper":
		inner, err = NewWhisperRecognizer(WhisperConfig{
			Endpoint:      cfg.Endpoint,
			APIKey:        cfg.APIKey,
			Model:         cfg.Model,
			Timeout:       cfg.GetTimeoutDuration(),
			MaxRetries:    cfg.MaxRetries,
			MaxConcurrent: cfg.MaxConcurrent,
		})
	default:
		return nil, fmt.Errorf("unknown recognition provider %q", cfg.Provider)
	}

	if err != nil {
		return nil, err
	}

	if cfg.Language == LanguageAuto {
		return NewAutoRecognizer(inner), nil
	}

	return inner, nil
}
