// Package ratelimit gates all outbound broker calls behind one shared token
// bucket. The bucket itself never blocks; callers are told how long to wait
// and suspend on their own so one caller's wait cannot stall another's.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result of one admission attempt. Wait is only meaningful when Allowed is
// false: it is the time until a single token will have accrued.
type Result struct {
	Allowed bool
	Wait    time.Duration
}

// Bucket is a mutex-guarded token bucket shared by every concurrent
// submission. Tokens refill with elapsed wall time and never exceed capacity.
type Bucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastCheck  time.Time
	now        func() time.Time
}

// NewBucket sizes the bucket from a per-minute request budget and starts it
// full.
func NewBucket(ratePerMinute int) *Bucket {
	if ratePerMinute <= 0 {
		ratePerMinute = 1
	}
	b := &Bucket{
		capacity:   float64(ratePerMinute),
		tokens:     float64(ratePerMinute),
		refillRate: float64(ratePerMinute) / 60.0,
		now:        time.Now,
	}
	b.lastCheck = b.now()
	return b
}

// Acquire refills from elapsed time, then either consumes one token or
// reports the wait needed for one to accrue. No token is consumed on denial.
func (b *Bucket) Acquire() Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	elapsed := now.Sub(b.lastCheck).Seconds()
	b.lastCheck = now
	b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	if b.tokens >= 1 {
		b.tokens--
		return Result{Allowed: true}
	}
	wait := time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
	return Result{Allowed: false, Wait: wait}
}

// Wait acquires a token, sleeping as advised until one is available or ctx is
// done. Abandoning the wait consumes nothing.
func (b *Bucket) Wait(ctx context.Context) error {
	for {
		res := b.Acquire()
		if res.Allowed {
			return nil
		}
		timer := time.NewTimer(res.Wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
