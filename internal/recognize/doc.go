// Package recognize submits audio clips to remote speech-to-text services.
// It provides a Google speech client and an OpenAI whisper client behind a
// common interface, with retries, concurrency limiting, and auto language
// fallback.
package recognize
