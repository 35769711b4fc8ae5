package transcript

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestPrinterFormat(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	created := time.Date(2024, 5, 1, 14, 30, 5, 0, time.Local)

	tests := []struct {
		name string
		in   *Transcript
		want string
	}{
		{
			name: "mic chinese",
			in:   &Transcript{Source: "mic", Label: "中文", Text: "你好", CreatedAt: created},
			want: "[14:30:05] 🎤 [中文] 你好\n",
		},
		{
			name: "system english",
			in:   &Transcript{Source: "system", Label: "英文", Text: "hello there", CreatedAt: created},
			want: "[14:30:05] 🔊 [英文] hello there\n",
		},
		{
			name: "file source",
			in:   &Transcript{Source: "file", Label: "英文", Text: "from disk", CreatedAt: created},
			want: "[14:30:05] 📄 [英文] from disk\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			p.Print(tt.in)
			if got := buf.String(); got != tt.want {
				t.Errorf("printed %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrinterZeroTimestampUsesNow(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Print(&Transcript{Source: "mic", Label: "英文", Text: "x"})

	out := buf.String()
	if !strings.HasPrefix(out, "[") || !strings.Contains(out, "] 🎤 [英文] x") {
		t.Errorf("unexpected output %q", out)
	}
}
