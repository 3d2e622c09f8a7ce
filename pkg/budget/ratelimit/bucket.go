package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"atlas-hq/creditgate/pkg/config"
)

// ErrCostExceedsCapacity is returned when a single acquire asks for more
// tokens than the bucket can ever hold. Such a request would wait forever,
// so it fails fast as a configuration error instead.
var ErrCostExceedsCapacity = errors.New("cost exceeds bucket capacity")

// Bucket is the pacing token bucket governing low-level outbound calls.
//
// The bucket is independent of the provider-reported credit balance; it
// exists purely to smooth request pacing. Tokens refill continuously at a
// constant per-minute rate up to capacity. Acquire prefers making callers
// wait over hard failure: when the bucket runs low it pauses and retries
// rather than refusing.
//
// The refill-then-debit sequence is a single atomic unit under the mutex,
// so two concurrent acquirers can never both debit against the same
// pre-refill count. A caller cancelled mid-wait leaves the bucket
// undebited; the debit happens only together with the decision to proceed.
//
// Monotonic time (time.Since) drives the refill so wall clock adjustments
// cannot mint or destroy tokens.
type Bucket struct {
	thresholds *config.Thresholds
	refillRate float64 // tokens per minute
	cooldown   time.Duration
	logger     *slog.Logger

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewBucket creates a pacing bucket starting at full capacity.
// The thresholds object is shared with the admission guard; the bucket
// consults its capacity, warning, and critical levels on every operation so
// runtime threshold updates take effect immediately.
func NewBucket(thresholds *config.Thresholds, refillPerMinute float64, cooldown time.Duration, logger *slog.Logger) (*Bucket, error) {
	if refillPerMinute <= 0 {
		return nil, fmt.Errorf("refill rate must be positive (got %g)", refillPerMinute)
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Bucket{
		thresholds: thresholds,
		refillRate: refillPerMinute,
		cooldown:   cooldown,
		logger:     logger.With("component", "budget.pacer"),
		tokens:     thresholds.Capacity(),
		lastRefill: time.Now(),
	}, nil
}

// Acquire blocks until cost tokens have been debited, then returns nil.
//
// A zero cost succeeds immediately without touching the bucket; a negative
// cost is treated as zero (acquire is never a way to top the bucket up).
// A cost above capacity fails immediately with ErrCostExceedsCapacity.
//
// While the bucket sits below the critical threshold, Acquire pauses for
// the configured cooldown before re-checking, regardless of how cheap the
// request is. Otherwise, if the bucket holds too few tokens, Acquire waits
// just long enough for the refill to cover the deficit.
//
// All waits honor ctx; bound the total wait with a context deadline. On
// cancellation or timeout Acquire returns the context error with no tokens
// debited.
func (b *Bucket) Acquire(ctx context.Context, cost float64) error {
	if cost <= 0 {
		return nil
	}
	if capacity := b.thresholds.Capacity(); cost > capacity {
		return fmt.Errorf("%w: %g > %g", ErrCostExceedsCapacity, cost, capacity)
	}

	for {
		b.mu.Lock()
		b.refillLocked()

		if critical := b.thresholds.Critical(); b.tokens < critical {
			available := b.tokens
			b.mu.Unlock()

			b.logger.Warn("bucket below critical threshold, cooling down",
				"available", available,
				"critical", critical,
				"cooldown", b.cooldown,
			)
			if err := sleepCtx(ctx, b.cooldown); err != nil {
				return err
			}
			continue
		}

		if b.tokens >= cost {
			b.tokens -= cost
			b.mu.Unlock()
			return nil
		}

		// Wait for the refill to cover the deficit, then re-check.
		// Another caller may win the race for the refilled tokens; the
		// loop keeps the refill-check-debit unit atomic per attempt.
		deficit := cost - b.tokens
		b.mu.Unlock()

		wait := time.Duration(deficit / b.refillRate * float64(time.Minute))
		b.logger.Debug("waiting for token refill",
			"deficit", deficit,
			"wait", wait,
		)
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
}

// Available returns the number of tokens currently available, clamped to
// non-negative for external observers.
func (b *Bucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()
	if b.tokens < 0 {
		return 0
	}
	return b.tokens
}

// Capacity returns the bucket capacity.
func (b *Bucket) Capacity() float64 {
	return b.thresholds.Capacity()
}

// Healthy reports whether the bucket sits above the warning threshold.
func (b *Bucket) Healthy() bool {
	return b.Available() > b.thresholds.Warning()
}

// HealthCheck returns a readiness check function reporting the bucket
// level against the warning threshold.
func (b *Bucket) HealthCheck() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		available := b.Available()
		if warning := b.thresholds.Warning(); available <= warning {
			return fmt.Errorf("pacing tokens low: %g available, warning threshold %g", available, warning)
		}
		return nil
	}
}

// SetTokens is an administrative override of the bucket level. Negative
// values clamp to zero and values above capacity clamp to capacity. The
// refill clock restarts from now.
func (b *Bucket) SetTokens(value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := b.thresholds.Capacity()
	switch {
	case value < 0:
		value = 0
	case value > capacity:
		value = capacity
	}

	b.logger.Info("bucket level overridden", "tokens", value)
	b.tokens = value
	b.lastRefill = time.Now()
}

// refillLocked adds tokens for the time elapsed since the last refill,
// capped at capacity. Caller must hold the mutex.
func (b *Bucket) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}

	b.tokens += elapsed.Minutes() * b.refillRate
	if capacity := b.thresholds.Capacity(); b.tokens > capacity {
		b.tokens = capacity
	}
	b.lastRefill = now
}

// sleepCtx sleeps for d or until ctx is done, returning the context error
// on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
