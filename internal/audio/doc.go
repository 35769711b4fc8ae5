// Package audio handles audio level measurement, clip buffering, and format
// conversion. It accumulates captured PCM frames into fixed-duration clips or
// pause-delimited phrases and encodes them to WAV for recognition requests.
package audio
