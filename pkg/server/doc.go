/*
Package server implements the creditgate admin HTTP server.

The admin server is an operator surface, not a data plane: business traffic
never passes through it. It exposes:

  - /health and /ready: liveness and readiness probes. Readiness degrades
    when the pacing bucket is below its warning threshold or the provider
    balance endpoint is unreachable.
  - /version: build metadata.
  - /metrics: Prometheus metrics.
  - /v1/balance: a fresh provider balance observation.
  - /v1/costs: the registered action cost table.
  - /v1/refusals: recent refusal audit records.
  - /v1/admission?action=NAME: a non-enforcing admission check. Refused
    actions answer 429 with the decision payload; a provider outage answers
    503 so callers can tell "cannot know" apart from "cannot afford".

Requests pass through request ID, logging, and panic recovery middleware.
*/
package server
