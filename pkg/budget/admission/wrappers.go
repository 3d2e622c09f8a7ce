package admission

import "context"

// Operation is a unit of business work guarded by an admission check.
type Operation func(ctx context.Context) error

// Require wraps op in a hard-mode admission check for the named action.
//
// The check runs before op; on refusal, op never starts and the returned
// error is a *RefusalError (matchable with errors.Is against
// ErrInsufficientBudget). An unreachable provider also refuses, returning
// the oracle error. Wrapping stays visible at the call site:
//
//	err := guard.Require(ctx, "market_scan", func(ctx context.Context) error {
//	    return scanner.Run(ctx)
//	})
func (g *Guard) Require(ctx context.Context, action string, op Operation) error {
	decision, err := g.Check(ctx, action)
	if err != nil {
		if decision == nil {
			// Unknown action or other configuration error.
			return err
		}
		// Provider unreachable: fail closed, surface the distinct
		// transient error rather than a budget refusal.
		g.notifyRefusal(ctx, ModeHard, g.Refusal(action, decision))
		return err
	}

	if !decision.CanProceed {
		refusal := g.Refusal(action, decision)
		g.notifyRefusal(ctx, ModeHard, refusal)
		return refusal
	}

	return op(ctx)
}

// Attempt wraps op in a soft-mode admission check for the named action.
//
// On refusal the unit of work is marked skipped and the surrounding batch
// is expected to continue with its next item; nothing is raised. The skip
// is logged with action, balance, and required cost for later audit.
// Configuration errors (unknown action) are not skips and come back in
// Outcome.Err.
func (g *Guard) Attempt(ctx context.Context, action string, op Operation) Outcome {
	decision, err := g.Check(ctx, action)
	if err != nil {
		if decision == nil {
			return Outcome{Err: err}
		}
		// Provider unreachable: skip this unit, keep the batch alive.
		refusal := g.Refusal(action, decision)
		g.notifyRefusal(ctx, ModeSoft, refusal)
		return Outcome{Skipped: true, Refusal: refusal}
	}

	if !decision.CanProceed {
		refusal := g.Refusal(action, decision)
		g.notifyRefusal(ctx, ModeSoft, refusal)
		return Outcome{Skipped: true, Refusal: refusal}
	}

	return Outcome{Err: op(ctx)}
}
