// Package audit records admission refusals and batch skips.
//
// Refusals are expected events, but they still need a trail: operators
// auditing an overnight batch must be able to see which items were skipped,
// at what balance, and why. Two backends are provided — a bounded in-memory
// ring (the default) and SQLite for deployments that want the trail to
// survive restarts. A cron scheduler prunes records past their retention.
//
// Note this persists the refusal trail only. Limiter and oracle state stay
// ephemeral; a restart rebuilds them from configuration and a fresh
// provider observation.
package audit
