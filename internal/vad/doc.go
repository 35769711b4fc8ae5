// Package vad provides threshold-based voice activity detection. The threshold
// is set once by ambient noise calibration and optionally tracks background
// noise while running.
package vad
