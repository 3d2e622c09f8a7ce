package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"atlas-hq/creditgate/pkg/budget/admission"
	"atlas-hq/creditgate/pkg/budget/audit"
	"atlas-hq/creditgate/pkg/budget/costs"
	"atlas-hq/creditgate/pkg/budget/oracle"
	"atlas-hq/creditgate/pkg/budget/ratelimit"
	"atlas-hq/creditgate/pkg/config"
	"atlas-hq/creditgate/pkg/telemetry/health"
)

// Admission check results used as metric labels.
const (
	resultAdmitted    = "admitted"
	resultRefused     = "refused"
	resultError       = "error"
	resultUnavailable = "unavailable"
)

// Manager wires the cost registry, balance oracle, admission guard, pacing
// bucket, and audit trail into one front door for callers.
//
// The Manager is the primary interface for admitting and pacing outbound
// provider calls. A typical call site wraps its work in hard or soft mode:
//
//	manager, err := budget.NewManager(cfg, thresholds, client)
//
//	// Interactive path: abort before side effects when refused.
//	err = manager.Require(ctx, "market_scan", func(ctx context.Context) error {
//	    return scanner.Run(ctx)
//	})
//
//	// Batch path: skip the item, keep the batch alive.
//	outcome := manager.Attempt(ctx, "product_lookup", item.Process)
type Manager struct {
	registry   *costs.Registry
	oracle     *oracle.Oracle
	guard      *admission.Guard
	bucket     *ratelimit.Bucket
	auditor    audit.Backend
	metrics    *Metrics
	thresholds *config.Thresholds
	logger     *slog.Logger

	poller    *oracle.Poller
	scheduler *audit.Scheduler
}

// Options carries optional Manager dependencies.
type Options struct {
	// Registerer receives the subsystem's Prometheus collectors.
	// Nil uses the default registerer.
	Registerer prometheus.Registerer
}

// NewManager creates a Manager from validated configuration. The client is
// the provider balance transport; thresholds is the shared runtime view of
// the configured pacing and circuit breaker levels.
func NewManager(cfg *config.Config, thresholds *config.Thresholds, client oracle.BalanceClient) (*Manager, error) {
	return NewManagerWithOptions(cfg, thresholds, client, Options{})
}

// NewManagerWithOptions creates a Manager with explicit options.
func NewManagerWithOptions(cfg *config.Config, thresholds *config.Thresholds, client oracle.BalanceClient, opts Options) (*Manager, error) {
	registry := costs.NewRegistry()
	for _, ac := range cfg.Costs {
		err := registry.Register(costs.ActionCost{
			Name:        ac.Name,
			Cost:        ac.Cost,
			Description: ac.Description,
			Category:    costs.Category(ac.Category),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to register action %q: %w", ac.Name, err)
		}
	}

	logger := slog.Default().With("component", "budget.manager")

	bucket, err := ratelimit.NewBucket(thresholds, cfg.Pacing.RefillPerMinute, cfg.Pacing.Cooldown, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create pacing bucket: %w", err)
	}

	auditor, err := newAuditBackend(cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit backend: %w", err)
	}

	balanceOracle := oracle.New(client, nil)
	guard := admission.NewGuard(registry, balanceOracle, thresholds, cfg.Budget.ReplenishPerHour, nil)
	metrics := NewMetrics(opts.Registerer)
	metrics.RegisterTokenGauge(bucket.Available)

	m := &Manager{
		registry:   registry,
		oracle:     balanceOracle,
		guard:      guard,
		bucket:     bucket,
		auditor:    auditor,
		metrics:    metrics,
		thresholds: thresholds,
		logger:     logger,
	}

	guard.SetRefusalHook(m.recordRefusal)

	m.poller = oracle.NewPoller(balanceOracle, cfg.Provider.PollSchedule, cfg.Provider.Timeout, metrics.ObserveBalance)
	m.scheduler = audit.NewScheduler(auditor,
		time.Duration(cfg.Audit.RetentionDays)*24*time.Hour, cfg.Audit.PruneSchedule)

	return m, nil
}

// newAuditBackend creates the configured audit backend.
func newAuditBackend(cfg config.AuditConfig) (audit.Backend, error) {
	switch cfg.Backend {
	case config.AuditBackendMemory, "":
		return audit.NewMemoryBackend(), nil
	case config.AuditBackendSQLite:
		return audit.NewSQLiteBackend(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}

// Start begins the background balance poller and audit retention scheduler.
// Both stop when the context is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start balance poller: %w", err)
	}
	if err := m.scheduler.Start(ctx); err != nil {
		m.poller.Stop()
		return fmt.Errorf("failed to start audit scheduler: %w", err)
	}
	return nil
}

// CheckAdmission runs one admission check for the named action without
// enforcing the result. Callers that want enforcement use Require or
// Attempt instead.
func (m *Manager) CheckAdmission(ctx context.Context, action string) (*admission.Decision, error) {
	decision, err := m.guard.Check(ctx, action)

	switch {
	case err != nil && decision == nil:
		m.metrics.RecordAdmissionCheck(action, resultError)
	case err != nil:
		m.metrics.RecordAdmissionCheck(action, resultUnavailable)
	case !decision.CanProceed:
		m.metrics.RecordAdmissionCheck(action, resultRefused)
	default:
		m.metrics.RecordAdmissionCheck(action, resultAdmitted)
	}

	return decision, err
}

// Acquire blocks until the pacing bucket grants the named action's cost,
// debiting it. It returns early with the context error on cancellation and
// with ratelimit.ErrCostExceedsCapacity for unsatisfiable costs.
func (m *Manager) Acquire(ctx context.Context, action string) error {
	ac, err := m.registry.CostOf(action)
	if err != nil {
		return err
	}

	start := time.Now()
	err = m.bucket.Acquire(ctx, float64(ac.Cost))
	m.metrics.RecordPacingWait(time.Since(start).Seconds())
	return err
}

// Require wraps op in a hard-mode admission check plus pacing for the named
// action. On refusal, op never starts and the returned error is a
// *admission.RefusalError; an unreachable provider also refuses, returning
// the oracle error.
func (m *Manager) Require(ctx context.Context, action string, op admission.Operation) error {
	return m.guard.Require(ctx, action, func(ctx context.Context) error {
		m.metrics.RecordAdmissionCheck(action, resultAdmitted)
		if err := m.Acquire(ctx, action); err != nil {
			return err
		}
		return op(ctx)
	})
}

// Attempt wraps op in a soft-mode admission check plus pacing for the named
// action. On refusal the unit of work is skipped and the surrounding batch
// continues.
func (m *Manager) Attempt(ctx context.Context, action string, op admission.Operation) admission.Outcome {
	return m.guard.Attempt(ctx, action, func(ctx context.Context) error {
		m.metrics.RecordAdmissionCheck(action, resultAdmitted)
		if err := m.Acquire(ctx, action); err != nil {
			return err
		}
		return op(ctx)
	})
}

// Balance reads the provider's current balance through the oracle.
func (m *Manager) Balance(ctx context.Context) (int64, error) {
	balance, err := m.oracle.CurrentBalance(ctx)
	if err != nil {
		m.metrics.RecordBalanceFailure()
		return 0, err
	}
	m.metrics.ObserveBalance(balance)
	return balance, nil
}

// Actions returns the registered action costs, sorted by name.
func (m *Manager) Actions() []costs.ActionCost {
	return m.registry.Actions()
}

// RecentRefusals returns up to limit audit records, newest first.
func (m *Manager) RecentRefusals(ctx context.Context, limit int) ([]*audit.Record, error) {
	return m.auditor.Recent(ctx, limit)
}

// RegisterHealthChecks registers the subsystem's readiness checks.
func (m *Manager) RegisterHealthChecks(checker *health.Checker) {
	checker.RegisterCheck("pacing", m.bucket.HealthCheck())
	checker.RegisterCheck("provider", m.oracle.HealthCheck())
}

// Close stops background work and releases the audit backend.
func (m *Manager) Close() error {
	m.poller.Stop()
	m.scheduler.Stop()
	return m.auditor.Close()
}

// recordRefusal is the guard's refusal hook: it counts the refusal and
// appends it to the audit trail.
func (m *Manager) recordRefusal(ctx context.Context, mode admission.Mode, refusal *admission.RefusalError) {
	m.metrics.RecordAdmissionCheck(refusal.Action, resultRefused)
	m.metrics.RecordRefusal(refusal.Action, string(mode))

	rec := &audit.Record{
		Time:     time.Now(),
		Action:   refusal.Action,
		Mode:     string(mode),
		Balance:  refusal.Balance,
		Required: refusal.Required,
		Deficit:  refusal.Deficit,
	}
	if err := m.auditor.Record(ctx, rec); err != nil {
		m.logger.Error("failed to record refusal", "action", refusal.Action, "error", err)
	}
}
