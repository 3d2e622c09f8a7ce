// Package health provides liveness and readiness checks for creditgate.
//
// Components register CheckFuncs with a Checker; the admin server exposes
// the results on /health and /ready. Readiness reflects the state of the
// pacing bucket and the provider balance endpoint, so an exhausted or
// unreachable quota shows up as a degraded probe rather than a crash.
package health
