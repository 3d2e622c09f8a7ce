package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Poller observes the provider balance on a cron schedule.
//
// Polled observations feed metrics and health reporting only. Admission
// checks never read the polled value; they always re-observe through the
// oracle so decisions are made against fresh data.
type Poller struct {
	oracle    *Oracle
	schedule  string
	timeout   time.Duration
	onObserve func(balance int64)

	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewPoller creates a balance poller. onObserve is invoked after each
// successful observation (typically to update the balance gauge); it may be
// nil. An empty schedule disables polling.
func NewPoller(o *Oracle, schedule string, timeout time.Duration, onObserve func(balance int64)) *Poller {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Poller{
		oracle:    o,
		schedule:  schedule,
		timeout:   timeout,
		onObserve: onObserve,
		cron:      cron.New(),
		logger:    slog.Default().With("component", "budget.poller"),
	}
}

// Start begins scheduled polling. It performs one immediate observation so
// the gauge and health state are populated before the first tick, then runs
// on the configured schedule until the context is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" {
		p.logger.Info("balance poll schedule not configured, skipping poller")
		return nil
	}

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", p.schedule, err)
	}

	if _, err := p.cron.AddFunc(p.schedule, func() {
		p.observe(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule balance polling: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("balance poller started", "schedule", p.schedule)

	go p.observe(ctx)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// Stop stops the scheduler. Safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.cron.Stop()
	p.running = false
	p.logger.Info("balance poller stopped")
}

// observe performs one balance observation.
func (p *Poller) observe(ctx context.Context) {
	obsCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	balance, err := p.oracle.CurrentBalance(obsCtx)
	if err != nil {
		p.logger.Warn("scheduled balance observation failed", "error", err)
		return
	}

	p.logger.Debug("balance observed", "balance", balance)

	if p.onObserve != nil {
		p.onObserve(balance)
	}
}
