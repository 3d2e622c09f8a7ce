package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler prunes old refusal records on a cron schedule
// (e.g. daily at 3 AM with "0 3 * * *").
type Scheduler struct {
	backend   Backend
	retention time.Duration
	schedule  string

	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a retention scheduler over the given backend.
// Records older than retention are deleted on each run. An empty schedule
// disables scheduled pruning.
func NewScheduler(backend Backend, retention time.Duration, schedule string) *Scheduler {
	return &Scheduler{
		backend:   backend,
		retention: retention,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    slog.Default().With("component", "audit.scheduler"),
	}
}

// Start begins scheduled pruning. It returns immediately; pruning runs in
// the cron goroutine until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}
	if s.retention <= 0 {
		s.logger.Info("retention not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runPruning(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("audit retention scheduler started",
		"schedule", s.schedule,
		"retention", s.retention,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("audit retention scheduler stopped")
}

// runPruning executes one pruning cycle.
func (s *Scheduler) runPruning(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)

	deleted, err := s.backend.Prune(ctx, cutoff)
	if err != nil {
		s.logger.Error("scheduled audit pruning failed", "error", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("audit records pruned",
			"deleted_count", deleted,
			"older_than", cutoff,
		)
	}
}
