package retry

import (
	"math"
	"time"
)

// Policy describes how many times and how patiently an operation is retried.
type Policy struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	Jitter         bool
	AttemptTimeout time.Duration
}

// DefaultPolicy mirrors the upstream defaults used when no section is configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		InitialDelay:   2 * time.Second,
		MaxDelay:       30 * time.Second,
		BackoffFactor:  2,
		Jitter:         true,
		AttemptTimeout: 30 * time.Second,
	}
}

// Attempts returns the total number of calls the policy allows.
func (p Policy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

// Delay returns the wait before attempt k (k >= 1). rnd supplies a value in
// [0,1) and is only consulted when Jitter is set; nil disables jitter.
func (p Policy) Delay(k int, rnd func() float64) time.Duration {
	if k < 1 || p.InitialDelay <= 0 {
		return 0
	}
	factor := p.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	raw := float64(p.InitialDelay) * math.Pow(factor, float64(k-1))
	if p.MaxDelay > 0 && raw > float64(p.MaxDelay) {
		raw = float64(p.MaxDelay)
	}
	if p.Jitter && rnd != nil {
		raw *= 0.5 + 0.5*rnd()
	}
	return time.Duration(raw)
}
