package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces requests by a fixed delay. The first request waits too,
// so every call to Wait is preceded by at least one delay since the
// previous call or since construction.
type Throttle struct {
	limiter *rate.Limiter
	delay   time.Duration
	metrics *Metrics
}

// Metrics tracks statistics about throttle usage.
type Metrics struct {
	totalRequests   atomic.Int64
	allowedRequests atomic.Int64
	deniedRequests  atomic.Int64
}

// New creates a Throttle enforcing delay between requests. A non-positive
// delay yields a throttle that never blocks.
func New(delay time.Duration) *Throttle {
	t := &Throttle{
		delay:   delay,
		metrics: &Metrics{},
	}
	if delay > 0 {
		t.limiter = rate.NewLimiter(rate.Every(delay), 1)
		// drain the initial token
		t.limiter.Allow()
	}
	return t
}

// Wait blocks until the delay since the previous request has elapsed or
// the context is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	t.metrics.totalRequests.Add(1)
	if t.limiter == nil {
		if err := ctx.Err(); err != nil {
			t.metrics.deniedRequests.Add(1)
			return err
		}
		t.metrics.allowedRequests.Add(1)
		return nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		t.metrics.deniedRequests.Add(1)
		return err
	}
	t.metrics.allowedRequests.Add(1)
	return nil
}

// Delay returns the configured spacing.
func (t *Throttle) Delay() time.Duration {
	return t.delay
}

// Metrics returns a snapshot of the current throttle statistics.
func (t *Throttle) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:   t.metrics.totalRequests.Load(),
		AllowedRequests: t.metrics.allowedRequests.Load(),
		DeniedRequests:  t.metrics.deniedRequests.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of throttle statistics.
type MetricsSnapshot struct {
	// TotalRequests is the number of Wait calls.
	TotalRequests int64
	// AllowedRequests is the number of Wait calls that proceeded.
	AllowedRequests int64
	// DeniedRequests is the number of Wait calls aborted by their context.
	DeniedRequests int64
}
