// Package session orchestrates a listening session: capture sources, voice
// detection, phrase segmentation and the recognition worker pool.
package session
