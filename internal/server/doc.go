// Package server implements the optional HTTP monitoring endpoints for a
// running listening session: health, statistics, configuration and recent
// transcript history, plus Prometheus metrics.
package server
