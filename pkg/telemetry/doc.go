// Package telemetry provides observability for creditgate.
//
// # Components
//
//   - logging: structured logging via log/slog
//   - metrics: the Prometheus scrape endpoint
//   - health: liveness and readiness probes
//
// Domain metric collectors are defined next to the code that records them
// (see pkg/budget); this tree carries the shared plumbing.
package telemetry
