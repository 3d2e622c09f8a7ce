package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// BalanceClient is the provider-side balance-check operation consumed by the
// oracle. It is supplied by the data-provider client; the oracle does not
// own it.
type BalanceClient interface {
	// RemainingBalance returns the provider's current remaining credit
	// balance. It may block on a network round trip and must honor ctx.
	RemainingBalance(ctx context.Context) (int64, error)
}

// ErrBalanceUnavailable is returned when the provider balance endpoint
// cannot be reached. It is distinct from a reported balance of zero;
// callers fail closed rather than trusting a stale value.
var ErrBalanceUnavailable = errors.New("provider balance unavailable")

// Snapshot is the oracle's most recent successful observation.
type Snapshot struct {
	// Balance is the remaining credit balance as last reported.
	Balance int64

	// ObservedAt is when the provider reported it.
	ObservedAt time.Time
}

// Oracle is a thin accessor over the provider's balance endpoint.
//
// The provider is the sole authority on consumption: the oracle never
// decrements locally and never caches beyond remembering the most recent
// successful observation for health reporting and metrics. Every admission
// check re-observes.
type Oracle struct {
	client BalanceClient
	logger *slog.Logger

	mu       sync.RWMutex
	last     Snapshot
	observed bool
}

// New creates an oracle over the given balance client.
func New(client BalanceClient, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{
		client: client,
		logger: logger.With("component", "budget.oracle"),
	}
}

// CurrentBalance queries the provider and returns the remaining balance.
// A provider failure returns an error wrapping ErrBalanceUnavailable and
// leaves the last snapshot untouched.
func (o *Oracle) CurrentBalance(ctx context.Context) (int64, error) {
	balance, err := o.client.RemainingBalance(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBalanceUnavailable, err)
	}

	o.mu.Lock()
	o.last = Snapshot{Balance: balance, ObservedAt: time.Now()}
	o.observed = true
	o.mu.Unlock()

	return balance, nil
}

// LastSnapshot returns the most recent successful observation.
// The second return is false until the first successful observation.
func (o *Oracle) LastSnapshot() (Snapshot, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last, o.observed
}

// HealthCheck returns a health check function probing the provider balance
// endpoint, for registration with the readiness checker.
func (o *Oracle) HealthCheck() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if _, err := o.CurrentBalance(ctx); err != nil {
			return err
		}
		return nil
	}
}
