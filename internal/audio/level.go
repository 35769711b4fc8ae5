package audio

import "math"

// maxSampleValue is the largest magnitude of a 16-bit PCM sample, used to
// normalize levels into the 0.0 - 1.0 range.
const maxSampleValue = 32768.0

// RMSLevel computes the root-mean-square level of a PCM-16 frame,
// normalized to 0.0 - 1.0.
func RMSLevel(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var energy float64
	for _, sample := range samples {
		v := float64(sample)
		energy += v * v
	}

	return math.Sqrt(energy/float64(len(samples))) / maxSampleValue
}

// PeakLevel computes the peak absolute level of a PCM-16 frame,
// normalized to 0.0 - 1.0.
func PeakLevel(samples []int16) float64 {
	var peak int32
	for _, sample := range samples {
		v := int32(sample)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}

	return float64(peak) / maxSampleValue
}

// SamplesToBytes converts PCM-16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, sample := range samples {
		data[i*2] = byte(sample)
		data[i*2+1] = byte(sample >> 8)
	}
	return data
}

// BytesToSamples converts little-endian PCM-16 bytes to samples.
// A trailing odd byte is ignored.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples
}
