package recognize

import (
	"context"
	"errors"
	"testing"

	"github.com/kizkdaisuki/voice-ai/internal/audio"
)

// fakeRecognizer returns canned results per language.
type fakeRecognizer struct {
	results map[string]*Result
	errs    map[string]error
	calls   []string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, clip *audio.Clip, language string) (*Result, error) {
	f.calls = append(f.calls, language)
	if err, ok := f.errs[language]; ok {
		return nil, err
	}
	return f.results[language], nil
}

func (f *fakeRecognizer) Close() error { return nil }

func TestAutoRecognizerChineseFirst(t *testing.T) {
	fake := &fakeRecognizer{
		results: map[string]*Result{
			LanguageChinese: {Text: "中文结果", Language: LanguageChinese},
		},
	}
	auto := NewAutoRecognizer(fake)

	result, err := auto.Recognize(context.Background(), testClip(), LanguageAuto)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if result.Text != "中文结果" {
		t.Errorf("text = %q, want 中文结果", result.Text)
	}
	if len(fake.calls) != 1 || fake.calls[0] != LanguageChinese {
		t.Errorf("calls = %v, want [zh-CN] only", fake.calls)
	}
}

func TestAutoRecognizerFallsBackToEnglish(t *testing.T) {
	fake := &fakeRecognizer{
		results: map[string]*Result{
			LanguageEnglish: {Text: "english result", Language: LanguageEnglish},
		},
		errs: map[string]error{
			LanguageChinese: ErrNoSpeech,
		},
	}
	auto := NewAutoRecognizer(fake)

	result, err := auto.Recognize(context.Background(), testClip(), LanguageAuto)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if result.Text != "english result" {
		t.Errorf("text = %q, want english result", result.Text)
	}
	if len(fake.calls) != 2 || fake.calls[1] != LanguageEnglish {
		t.Errorf("calls = %v, want [zh-CN en-US]", fake.calls)
	}
}

func TestAutoRecognizerBothFail(t *testing.T) {
	fake := &fakeRecognizer{
		errs: map[string]error{
			LanguageChinese: ErrNoSpeech,
			LanguageEnglish: ErrNoSpeech,
		},
	}
	auto := NewAutoRecognizer(fake)

	_, err := auto.Recognize(context.Background(), testClip(), LanguageAuto)
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech", err)
	}
}

func TestAutoRecognizerConcreteLanguagePassthrough(t *testing.T) {
	fake := &fakeRecognizer{
		results: map[string]*Result{
			LanguageEnglish: {Text: "direct", Language: LanguageEnglish},
		},
	}
	auto := NewAutoRecognizer(fake)

	result, err := auto.Recognize(context.Background(), testClip(), LanguageEnglish)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if result.Text != "direct" {
		t.Errorf("text = %q, want direct", result.Text)
	}
	if len(fake.calls) != 1 || fake.calls[0] != LanguageEnglish {
		t.Errorf("calls = %v, want [en-US] only", fake.calls)
	}
}

func TestLanguageLabel(t *testing.T) {
	tests := []struct {
		language string
		want     string
	}{
		{LanguageChinese, "中文"},
		{LanguageEnglish, "英文"},
		{"ja-JP", "ja-JP"},
	}

	for _, tt := range tests {
		if got := LanguageLabel(tt.language); got != tt.want {
			t.Errorf("LanguageLabel(%q) = %q, want %q", tt.language, got, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no speech", err: ErrNoSpeech, want: false},
		{name: "cancelled", err: context.Canceled, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "server error", err: errors.New("HTTP error 503: unavailable"), want: true},
		{name: "rate limited", err: errors.New("HTTP error 429: slow down"), want: true},
		{name: "client error", err: errors.New("HTTP error 400: bad audio"), want: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
