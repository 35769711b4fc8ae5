// Package capture reads PCM audio from local devices through PortAudio.
// It provides a microphone source and a system output (loopback) source, each
// delivering int16 frames on a channel from its own goroutine.
package capture
