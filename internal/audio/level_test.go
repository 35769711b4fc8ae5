package audio

import (
	"math"
	"testing"
)

func TestRMSLevel(t *testing.T) {
	tests := []struct {
		name    string
		samples []int16
		want    float64
	}{
		{name: "empty", samples: nil, want: 0},
		{name: "silence", samples: make([]int16, 512), want: 0},
		{name: "full scale", samples: []int16{32767, -32767, 32767, -32767}, want: 32767.0 / 32768.0},
		{name: "constant", samples: []int16{3277, 3277, 3277, 3277}, want: 3277.0 / 32768.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RMSLevel(tt.samples)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RMSLevel = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestPeakLevel(t *testing.T) {
	tests := []struct {
		name    string
		samples []int16
		want    float64
	}{
		{name: "empty", samples: nil, want: 0},
		{name: "silence", samples: make([]int16, 512), want: 0},
		{name: "negative peak", samples: []int16{100, -20000, 300}, want: 20000.0 / 32768.0},
		{name: "min int16", samples: []int16{-32768}, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeakLevel(tt.samples)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PeakLevel = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestSampleByteConversion(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}

	data := SamplesToBytes(samples)
	if len(data) != len(samples)*2 {
		t.Fatalf("byte length = %d, want %d", len(data), len(samples)*2)
	}

	back := BytesToSamples(data)
	if len(back) != len(samples) {
		t.Fatalf("sample length = %d, want %d", len(back), len(samples))
	}

	for i := range samples {
		if back[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, back[i], samples[i])
		}
	}
}

func TestBytesToSamplesOddLength(t *testing.T) {
	samples := BytesToSamples([]byte{0x01, 0x02, 0x03})
	if len(samples) != 1 {
		t.Fatalf("sample length = %d, want 1 (trailing byte ignored)", len(samples))
	}
}
