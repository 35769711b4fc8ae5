package recognize

import (
	"context"

	"github.com/kizkdaisuki/voice-ai/internal/audio"
)

// AutoRecognizer resolves the "auto" language setting by trying Chinese
// first and falling back to English.
type AutoRecognizer struct {
	inner Recognizer
}

// NewAutoRecognizer wraps a recognizer with auto language fallback.
func NewAutoRecognizer(inner Recognizer) *AutoRecognizer {
	return &AutoRecognizer{inner: inner}
}

// Recognize tries zh-CN, then en-US. The language argument is ignored
// unless it names a concrete language, in which case no fallback happens.
func (r *AutoRecognizer) Recognize(ctx context.Context, clip *audio.Clip, language string) (*Result, error) {
	if language != "" && language != LanguageAuto {
		return r.inner.Recognize(ctx, clip, language)
	}

	result, err := r.inner.Recognize(ctx, clip, LanguageChinese)
	if err == nil {
		return result, nil
	}

	return r.inner.Recognize(ctx, clip, LanguageEnglish)
}

// Close implements Recognizer.
func (r *AutoRecognizer) Close() error {
	return r.inner.Close()
}
