package recognize

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kizkdaisuki/voice-ai/internal/audio"
)

func testClip() *audio.Clip {
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(i % 5000)
	}
	return audio.NewClip("mic", 16000, samples, time.Now(), time.Now().Add(time.Second))
}

func newTestGoogle(t *testing.T, endpoint string, maxRetries int) *GoogleRecognizer {
	t.Helper()

	r, err := NewGoogleRecognizer(GoogleConfig{
		Endpoint:      endpoint,
		APIKey:        "test-key",
		Timeout:       5 * time.Second,
		MaxRetries:    maxRetries,
		MaxConcurrent: 2,
	})
	if err != nil {
		t.Fatalf("NewGoogleRecognizer failed: %v", err)
	}
	return r
}

func TestGoogleRecognize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.URL.Query().Get("lang"); got != LanguageChinese {
			t.Errorf("lang = %q, want %q", got, LanguageChinese)
		}
		if got := r.URL.Query().Get("client"); got != "chromium" {
			t.Errorf("client = %q, want chromium", got)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "audio/l16") {
			t.Errorf("content type = %q, want audio/l16 prefix", ct)
		}

		// The API emits an empty result line before the final one.
		w.Write([]byte(`{"result":[]}` + "\n"))
		w.Write([]byte(`{"result":[{"alternative":[{"transcript":"你好世界","confidence":0.92},{"transcript":"你好","confidence":0.41}],"final":true}],"result_index":0}` + "\n"))
	}))
	defer server.Close()

	r := newTestGoogle(t, server.URL, 0)
	defer r.Close()

	result, err := r.Recognize(context.Background(), testClip(), LanguageChinese)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if result.Text != "你好世界" {
		t.Errorf("text = %q, want 你好世界", result.Text)
	}
	if result.Confidence != 0.92 {
		t.Errorf("confidence = %g, want 0.92", result.Confidence)
	}
	if result.Language != LanguageChinese {
		t.Errorf("language = %q, want %q", result.Language, LanguageChinese)
	}

	stats := r.GetStats()
	if stats.TotalRequests != 1 || stats.SuccessRequests != 1 {
		t.Errorf("stats = %+v, want 1 total / 1 success", stats)
	}
}

func TestGoogleRecognizeNoSpeech(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[]}` + "\n"))
	}))
	defer server.Close()

	r := newTestGoogle(t, server.URL, 3)
	defer r.Close()

	_, err := r.Recognize(context.Background(), testClip(), LanguageEnglish)
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech", err)
	}

	// No-speech answers are final, they must not burn retries.
	if stats := r.GetStats(); stats.TotalRetries != 0 {
		t.Errorf("retries = %d, want 0", stats.TotalRetries)
	}
}

func TestGoogleRecognizeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"result":[{"alternative":[{"transcript":"hello","confidence":0.8}],"final":true}]}` + "\n"))
	}))
	defer server.Close()

	r := newTestGoogle(t, server.URL, 3)
	defer r.Close()

	result, err := r.Recognize(context.Background(), testClip(), LanguageEnglish)
	if err != nil {
		t.Fatalf("Recognize failed after retries: %v", err)
	}
	if result.Text != "hello" {
		t.Errorf("text = %q, want hello", result.Text)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
	if stats := r.GetStats(); stats.TotalRetries != 2 {
		t.Errorf("retries = %d, want 2", stats.TotalRetries)
	}
}

func TestGoogleRecognizeGivesUpAfterMaxRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	r := newTestGoogle(t, server.URL, 1)
	defer r.Close()

	_, err := r.Recognize(context.Background(), testClip(), LanguageEnglish)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	stats := r.GetStats()
	if stats.FailedRequests != 1 {
		t.Errorf("failed requests = %d, want 1", stats.FailedRequests)
	}
}

func TestGoogleRecognizeEmptyClip(t *testing.T) {
	r := newTestGoogle(t, "http://127.0.0.1:1", 0)
	defer r.Close()

	if _, err := r.Recognize(context.Background(), nil, LanguageEnglish); err == nil {
		t.Error("expected error for nil clip")
	}
}

func TestParseGoogleResponse(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantText    string
		wantErr     error
		expectError bool
	}{
		{
			name:     "single final line",
			body:     `{"result":[{"alternative":[{"transcript":"test","confidence":0.5}],"final":true}]}`,
			wantText: "test",
		},
		{
			name:     "empty line before result",
			body:     "{\"result\":[]}\n{\"result\":[{\"alternative\":[{\"transcript\":\"later\"}]}]}",
			wantText: "later",
		},
		{
			name:    "only empty results",
			body:    `{"result":[]}`,
			wantErr: ErrNoSpeech,
		},
		{
			name:    "blank body",
			body:    "\n\n",
			wantErr: ErrNoSpeech,
		},
		{
			name:        "malformed json",
			body:        `{"result":`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, _, err := parseGoogleResponse(strings.NewReader(tt.body))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
		})
	}
}
