// Package transcript formats recognized text for output and persists the
// transcript history in SQLite.
package transcript
