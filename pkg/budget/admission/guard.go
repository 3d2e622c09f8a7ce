package admission

import (
	"context"
	"log/slog"
	"time"

	"atlas-hq/creditgate/pkg/budget/costs"
	"atlas-hq/creditgate/pkg/config"
)

// defaultRetryHint is used when the provider replenish rate is not
// configured and no better hint can be computed.
const defaultRetryHint = 15 * time.Minute

// BalanceSource supplies the provider-reported remaining balance.
// It is satisfied by oracle.Oracle.
type BalanceSource interface {
	CurrentBalance(ctx context.Context) (int64, error)
}

// RefusalHook is invoked on every refusal, after logging. The manager uses
// it to record refusals in the audit store and bump metrics.
type RefusalHook func(ctx context.Context, mode Mode, refusal *RefusalError)

// Guard decides whether a business action may begin.
//
// For every check it reads the action's cost from the registry, observes
// the balance fresh through the oracle, and applies the circuit breaker
// floor before comparing balance to cost. The floor dominates: below it,
// even an action cheaper than the remaining balance is refused, preserving
// a reserve against measurement lag and concurrent callers.
type Guard struct {
	registry   *costs.Registry
	balance    BalanceSource
	thresholds *config.Thresholds

	// replenishPerHour is the provider's credit restore rate, used for
	// retry hints. Zero means unknown.
	replenishPerHour int64

	logger    *slog.Logger
	onRefusal RefusalHook
}

// NewGuard creates an admission guard. The thresholds object is the same
// instance consumed by the pacing bucket; the guard reads only the circuit
// breaker floor from it.
func NewGuard(registry *costs.Registry, balance BalanceSource, thresholds *config.Thresholds, replenishPerHour int64, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		registry:         registry,
		balance:          balance,
		thresholds:       thresholds,
		replenishPerHour: replenishPerHour,
		logger:           logger.With("component", "budget.guard"),
	}
}

// SetRefusalHook installs the refusal callback. Call before concurrent use.
func (g *Guard) SetRefusalHook(hook RefusalHook) {
	g.onRefusal = hook
}

// Check decides whether the named action may begin right now.
//
// An unknown action is a caller bug: Check returns costs.ErrUnknownAction
// and never silently admits. A provider outage returns a refused decision
// together with the oracle error (fail closed) so callers can distinguish
// "balance is zero" from "balance is unknowable".
//
// The returned decision is computed fresh and reflects only this check;
// admission is best-effort arbitration against an externally changing
// balance, not a reservation.
func (g *Guard) Check(ctx context.Context, action string) (*Decision, error) {
	actionCost, err := g.registry.CostOf(action)
	if err != nil {
		return nil, err
	}

	balance, err := g.balance.CurrentBalance(ctx)
	if err != nil {
		g.logger.Error("balance observation failed, refusing admission",
			"action", action,
			"error", err,
		)
		return &Decision{
			CanProceed: false,
			Balance:    0,
			Required:   actionCost.Cost,
		}, err
	}

	decision := &Decision{
		Balance:  balance,
		Required: actionCost.Cost,
	}

	// Circuit breaker floor dominates individual costs.
	if floor := g.thresholds.Floor(); balance < floor {
		g.logger.Warn("balance below circuit breaker floor",
			"action", action,
			"balance", balance,
			"floor", floor,
		)
		return decision, nil
	}

	decision.CanProceed = balance >= actionCost.Cost
	return decision, nil
}

// Refusal builds the refusal payload for a decision that did not proceed.
// For circuit breaker refusals the deficit is the distance to the floor,
// since that is what must replenish before anything is admitted.
func (g *Guard) Refusal(action string, decision *Decision) *RefusalError {
	deficit := decision.Deficit()
	if floor := g.thresholds.Floor(); decision.Balance < floor {
		if floorShortfall := floor - decision.Balance; floorShortfall > deficit {
			deficit = floorShortfall
		}
	}

	return &RefusalError{
		Action:     action,
		Balance:    decision.Balance,
		Required:   decision.Required,
		Deficit:    deficit,
		RetryAfter: g.retryHint(deficit),
	}
}

// retryHint estimates how long until deficit credits have replenished.
func (g *Guard) retryHint(deficit int64) time.Duration {
	if g.replenishPerHour <= 0 || deficit <= 0 {
		return defaultRetryHint
	}

	hint := time.Duration(float64(deficit) / float64(g.replenishPerHour) * float64(time.Hour))
	if hint < time.Minute {
		hint = time.Minute
	}
	return hint.Round(time.Second)
}

// notifyRefusal logs a refusal and runs the hook.
func (g *Guard) notifyRefusal(ctx context.Context, mode Mode, refusal *RefusalError) {
	g.logger.Warn("admission refused",
		"action", refusal.Action,
		"mode", string(mode),
		"balance", refusal.Balance,
		"required", refusal.Required,
		"deficit", refusal.Deficit,
		"retry_after", refusal.RetryAfter,
	)

	if g.onRefusal != nil {
		g.onRefusal(ctx, mode, refusal)
	}
}
