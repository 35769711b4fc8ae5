package recognize

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// ClientStats represents recognition client statistics
type ClientStats struct {
	TotalRequests   uint64        `json:"total_requests"`
	SuccessRequests uint64        `json:"success_requests"`
	FailedRequests  uint64        `json:"failed_requests"`
	SuccessRate     float64       `json:"success_rate"`
	TotalRetries    uint64        `json:"total_retries"`
	AvgResponseTime time.Duration `json:"avg_response_time"`
	ActiveRequests  int           `json:"active_requests"`
}

// guard enforces the concurrency limit and retry policy shared by all
// recognition clients, and tracks request statistics.
type guard struct {
	semaphore  chan struct{}
	maxRetries int

	totalRequests   uint64
	successRequests uint64
	failedRequests  uint64
	totalRetries    uint64
	avgResponseTime time.Duration

	mu sync.RWMutex
}

func newGuard(maxConcurrent, maxRetries int) *guard {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &guard{
		semaphore:  make(chan struct{}, maxConcurrent),
		maxRetries: maxRetries,
	}
}

// do runs one recognition request under the concurrency limit, retrying
// retryable failures with exponential backoff.
func (g *guard) do(ctx context.Context, fn func(ctx context.Context) (*Result, error)) (*Result, error) {
	select {
	case g.semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-g.semaphore }()

	g.mu.Lock()
	g.totalRequests++
	g.mu.Unlock()

	startTime := time.Now()

	var result *Result
	var err error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			g.mu.Lock()
			g.totalRetries++
			g.mu.Unlock()

			backoff := time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				g.recordFailure(time.Since(startTime))
				return nil, ctx.Err()
			}
		}

		result, err = fn(ctx)
		if err == nil {
			g.recordSuccess(time.Since(startTime))
			return result, nil
		}

		if !isRetryable(err) {
			break
		}
	}

	g.recordFailure(time.Since(startTime))
	return nil, err
}

// isRetryable reports whether a failed request is worth retrying. A clip with
// no recognizable speech is a final answer, and context cancellation means
// the caller gave up.
func isRetryable(err error) bool {
	if errors.Is(err, ErrNoSpeech) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := err.Error()

	// 5xx server errors and rate limiting are retryable.
	if strings.Contains(errStr, "HTTP error 5") || strings.Contains(errStr, "HTTP error 429") {
		return true
	}

	// Network level failures.
	if strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "refused") {
		return true
	}

	return false
}

func (g *guard) recordSuccess(elapsed time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.successRequests++
	g.updateAvgResponseTime(elapsed)
}

func (g *guard) recordFailure(elapsed time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failedRequests++
	g.updateAvgResponseTime(elapsed)
}

// updateAvgResponseTime keeps a simple moving average. Caller must hold g.mu.
func (g *guard) updateAvgResponseTime(elapsed time.Duration) {
	if g.avgResponseTime == 0 {
		g.avgResponseTime = elapsed
	} else {
		g.avgResponseTime = (g.avgResponseTime + elapsed) / 2
	}
}

// stats returns a snapshot of the guard counters.
func (g *guard) stats() ClientStats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	successRate := float64(0)
	if g.totalRequests > 0 {
		successRate = float64(g.successRequests) / float64(g.totalRequests) * 100
	}

	return ClientStats{
		TotalRequests:   g.totalRequests,
		SuccessRequests: g.successRequests,
		FailedRequests:  g.failedRequests,
		SuccessRate:     successRate,
		TotalRetries:    g.totalRetries,
		AvgResponseTime: g.avgResponseTime,
		ActiveRequests:  len(g.semaphore),
	}
}

// close waits for all active requests to complete.
func (g *guard) close() {
	for i := 0; i < cap(g.semaphore); i++ {
		g.semaphore <- struct{}{}
	}
}
