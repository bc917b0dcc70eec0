// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// MaxAttemptsLimit is the largest accepted attempt budget.
	MaxAttemptsLimit = 10

	// DefaultMultiplier is the exponential growth factor between delays.
	DefaultMultiplier = 2.0

	// DefaultJitterFraction bounds the random addend as a fraction of BaseDelay.
	DefaultJitterFraction = 0.1
)

// Policy configures how many times an operation is attempted and how long to
// wait between attempts. The delay before attempt n+1 (n counted from 0) is
// BaseDelay*Multiplier^n plus a random addend in [0, BaseDelay*JitterFraction).
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	Multiplier     float64
	JitterFraction float64
}

// NewPolicy returns a Policy with the default multiplier and jitter.
// maxAttempts is taken as given; callers clamp it with ClampAttempts.
func NewPolicy(maxAttempts int, baseDelay time.Duration) Policy {
	return Policy{
		MaxAttempts:    maxAttempts,
		BaseDelay:      baseDelay,
		Multiplier:     DefaultMultiplier,
		JitterFraction: DefaultJitterFraction,
	}
}

// ClampAttempts clamps n to [0, MaxAttemptsLimit].
func ClampAttempts(n int) int {
	return min(max(n, 0), MaxAttemptsLimit)
}

// Delay returns the wait before attempt n+1 for a random value r in [0, 1).
func (p Policy) Delay(n int, r float64) time.Duration {
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}
	jitter := max(p.JitterFraction, 0)

	base := float64(p.BaseDelay) * math.Pow(multiplier, float64(n))
	return time.Duration(base + r*float64(p.BaseDelay)*jitter)
}

// exponentialBackOff adapts Policy to backoff.BackOff.
type exponentialBackOff struct {
	policy  Policy
	random  func() float64
	attempt int
}

var _ backoff.BackOff = (*exponentialBackOff)(nil)

func (b *exponentialBackOff) NextBackOff() time.Duration {
	d := b.policy.Delay(b.attempt, b.random())
	b.attempt++
	return d
}

func (b *exponentialBackOff) Reset() {
	b.attempt = 0
}
