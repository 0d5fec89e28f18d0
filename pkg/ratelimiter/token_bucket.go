package ratelimiter

import (
	"sync"
	"time"
)

// TokenBucket is a RateLimiter that admits bursts up to a fixed size and
// refills at a steady per-second rate. The bucket starts full.
type TokenBucket struct {
	mu         sync.Mutex
	rate       float64
	burst      float64
	available  float64
	lastRefill time.Time
}

// NewTokenBucket creates a bucket refilling at rate tokens per second and
// holding at most burst tokens.
func NewTokenBucket(rate float64, burst int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		burst:      float64(burst),
		available:  float64(burst),
		lastRefill: time.Now(),
	}
}

// Allow consumes one token if any is available after refilling for the time
// elapsed since the last call.
func (b *TokenBucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.available += now.Sub(b.lastRefill).Seconds() * b.rate
	if b.available > b.burst {
		b.available = b.burst
	}
	b.lastRefill = now

	if b.available < 1 {
		return false
	}
	b.available--
	return true
}
