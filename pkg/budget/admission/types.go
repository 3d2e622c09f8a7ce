package admission

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientBudget is the sentinel wrapped by every RefusalError.
// It marks an expected, recoverable condition: the caller may wait,
// downsize, or abandon, but nothing has crashed.
var ErrInsufficientBudget = errors.New("insufficient budget")

// Mode selects how a refusal is enforced at a call site.
type Mode string

const (
	// ModeHard aborts before side effects and surfaces the refusal.
	// Used for interactive, user-initiated operations.
	ModeHard Mode = "hard"

	// ModeSoft marks the unit of work skipped and lets the surrounding
	// batch continue. Used for unattended operations.
	ModeSoft Mode = "soft"
)

// Decision is the outcome of one admission check. It is computed fresh on
// every check and never stored; the balance it carries is the provider's
// answer at check time, not a local ledger.
type Decision struct {
	// CanProceed reports whether the action may start now.
	CanProceed bool

	// Balance is the provider-reported remaining credit balance.
	Balance int64

	// Required is the registered cost of the action.
	Required int64
}

// Deficit returns how many credits are missing for the action itself,
// never negative.
func (d *Decision) Deficit() int64 {
	if deficit := d.Required - d.Balance; deficit > 0 {
		return deficit
	}
	return 0
}

// RefusalError carries everything a refused caller needs to decide whether
// to wait, downsize, or abandon. The outermost boundary maps it to a
// too-many-requests response with this payload; it is never a stack trace.
type RefusalError struct {
	// Action is the refused action name.
	Action string

	// Balance is the provider-reported balance at check time.
	Balance int64

	// Required is the registered cost of the action.
	Required int64

	// Deficit is the credit shortfall blocking admission. For a circuit
	// breaker refusal this is the distance to the floor, which may be
	// positive even when Balance covers Required.
	Deficit int64

	// RetryAfter hints when the balance may have replenished enough to
	// retry.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RefusalError) Error() string {
	return fmt.Sprintf("action %q refused: balance %d, required %d, deficit %d (retry after %s)",
		e.Action, e.Balance, e.Required, e.Deficit, e.RetryAfter)
}

// Unwrap returns ErrInsufficientBudget so callers can match with errors.Is.
func (e *RefusalError) Unwrap() error {
	return ErrInsufficientBudget
}

// Outcome is the result of a soft-mode attempt.
type Outcome struct {
	// Skipped is true when the unit of work was not run for budget
	// reasons.
	Skipped bool

	// Refusal holds the refusal detail when Skipped is true for a
	// budget refusal.
	Refusal *RefusalError

	// Err is the error from the wrapped operation itself, or a
	// configuration error such as an unknown action. Budget refusals
	// never appear here.
	Err error
}
