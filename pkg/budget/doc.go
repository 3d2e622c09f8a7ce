// Package budget is the front door of the credit budget subsystem.
//
// The Manager wires the pieces together: the cost registry prices actions,
// the oracle reads the provider's remaining balance, the admission guard
// decides whether an action may start, the pacing bucket spreads admitted
// spend over time, and the audit trail records what was refused. Callers
// interact with the Manager; the subpackages stay usable on their own.
//
// Admission and pacing are deliberately separate questions. Admission asks
// "can we afford this at all" against the provider's live balance; pacing
// asks "how fast may we spend" against a local token bucket. An action
// passes both before its first side effect.
package budget
