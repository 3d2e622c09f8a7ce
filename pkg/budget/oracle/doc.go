// Package oracle reads the provider's remaining credit balance.
//
// The oracle is deliberately thin: the provider is the sole authority on
// consumption, so nothing here keeps local running totals. Admission checks
// re-observe on every call; the only retained state is the most recent
// successful Snapshot, used by health probes and the metrics poller.
//
// A provider outage surfaces as ErrBalanceUnavailable, which callers treat
// as "insufficient budget" (fail closed) rather than trusting stale data.
package oracle
