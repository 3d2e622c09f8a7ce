// Package ratelimit paces low-level calls to the data provider.
//
// The Bucket is a waiting token bucket: callers acquire tokens immediately
// before each metered call, and when tokens run short the bucket makes them
// wait for the refill instead of failing. This is deliberately separate
// from admission-level budget checks — pacing protects the request rate,
// admission protects the credit balance — and the two never share state.
package ratelimit
