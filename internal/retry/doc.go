// Package retry runs fallible upstream calls under an explicit backoff policy.
//
// # Classification
//
// IsRetryable separates transient failures (HTTP 5xx and 429, connection
// resets and refusals, DNS failures, timeouts, per-attempt deadline expiry)
// from permanent ones. Permanent failures and parent context cancellation end
// the loop immediately.
//
// # Backoff
//
// The delay before attempt k (k >= 1, attempt 0 is the first call) is
// min(InitialDelay*BackoffFactor^(k-1), MaxDelay), scaled by a uniform factor
// in [0.5, 1.0] when Jitter is set. Exhaustion returns the last error exactly
// as the operation produced it.
//
// # Entry Points
//
// Do: generic retry loop over func(ctx) (T, error).
// Policy.Delay: the backoff formula, exported for callers and tests.
// StatusError: HTTP status carrier understood by IsRetryable.
package retry
