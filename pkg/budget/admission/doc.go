// Package admission decides whether business actions may begin.
//
// The Guard answers the pre-flight question — "can I even start?" — as
// opposed to the pacing question answered by pkg/budget/ratelimit. Each
// check reads the action's registered cost, observes the provider balance
// fresh, and applies the global circuit breaker floor before comparing
// balance to cost.
//
// Enforcement comes in two modes. Hard mode (Require) aborts before side
// effects and surfaces a RefusalError for interactive callers. Soft mode
// (Attempt) turns a refusal into a skipped outcome so unattended batches
// degrade item by item instead of erroring out.
package admission
