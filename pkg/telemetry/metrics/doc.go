// Package metrics exposes the Prometheus scrape endpoint for creditgate.
//
// The domain collectors themselves (admission checks, refusals, bucket
// levels, acquire waits, balance observations) live next to the code that
// records them in pkg/budget; this package only serves the endpoint.
package metrics
