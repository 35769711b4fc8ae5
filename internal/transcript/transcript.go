package transcript

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Transcript represents one recognized clip
type Transcript struct {
	ID         int64         `json:"id"`
	SessionID  string        `json:"session_id"`
	ClipID     string        `json:"clip_id"`
	Source     string        `json:"source"` // "mic", "system" or "file"
	Language   string        `json:"language"`
	Label      string        `json:"label"` // display label for the language
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Duration   time.Duration `json:"duration"` // clip duration
	CreatedAt  time.Time     `json:"created_at"`
}

// SourceMarker returns the marker printed in front of each transcript line:
// a microphone for mic audio, a speaker for system audio.
func SourceMarker(source string) string {
	switch source {
	case "mic":
		return "🎤"
	case "system":
		return "🔊"
	default:
		return "📄"
	}
}

// Printer writes timestamped transcript lines to an output stream. It is safe
// for concurrent use by multiple recognition workers.
type Printer struct {
	out io.Writer
	mu  sync.Mutex
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Print writes one transcript line: [HH:MM:SS] <marker> [<language>] <text>
func (p *Printer) Print(t *Transcript) {
	p.mu.Lock()
	defer p.mu.Unlock()

	timestamp := t.CreatedAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	fmt.Fprintf(p.out, "[%s] %s [%s] %s\n",
		timestamp.Format("15:04:05"), SourceMarker(t.Source), t.Label, t.Text)
}
