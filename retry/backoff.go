package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy maps a retry attempt to the delay preceding it. Attempt 1
// is the first retry after the initial failure. Implementations hold
// no mutable state and may be shared freely.
type Strategy interface {
	Delay(attempt int) time.Duration
}

// Constant waits the same Interval before every retry.
type Constant struct {
	Interval time.Duration
}

// NewConstant returns a fixed-interval strategy.
func NewConstant(interval time.Duration) *Constant {
	return &Constant{Interval: interval}
}

// Delay ignores the attempt number.
func (c *Constant) Delay(int) time.Duration { return c.Interval }

// Exponential doubles the delay with each attempt, starting at Base.
// A Max of zero means uncapped.
type Exponential struct {
	Base time.Duration
	Max  time.Duration
}

// NewExponential returns a doubling strategy capped at maxDelay.
func NewExponential(base, maxDelay time.Duration) *Exponential {
	return &Exponential{Base: base, Max: maxDelay}
}

// Delay returns Base * 2^(attempt-1), capped at Max.
func (e *Exponential) Delay(attempt int) time.Duration {
	d := time.Duration(float64(e.Base) * math.Pow(2, float64(attempt-1)))
	if e.Max > 0 && d > e.Max {
		return e.Max
	}
	return d
}

// Jittered stretches another strategy's delay by a random fraction in
// [0, Fraction). With Fraction = 0.3 the delay lands in [d, 1.3d),
// desynchronizing callers without ever shortening the base delay, so
// consecutive attempts remain strictly increasing.
type Jittered struct {
	Base     Strategy
	Fraction float64
}

// NewJittered wraps base with up to fraction (0..1) of proportional jitter.
func NewJittered(base Strategy, fraction float64) *Jittered {
	return &Jittered{Base: base, Fraction: fraction}
}

// Delay returns the base delay multiplied by 1 + rand*Fraction.
func (j *Jittered) Delay(attempt int) time.Duration {
	d := float64(j.Base.Delay(attempt))
	return time.Duration(d * (1 + rand.Float64()*j.Fraction)) //nolint:gosec // scheduling jitter, not security
}
