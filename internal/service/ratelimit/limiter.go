// Package ratelimit implements a per-key token bucket.
package ratelimit

import (
	"sync"
	"time"
)

const pruneAfter = 10 * time.Minute

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter hands out tokens per key, refilling continuously.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	capacity  float64
	refill    float64 // tokens per second
	lastPrune time.Time
}

// New creates a limiter where each key holds at most capacity tokens.
func New(capacity, refillPerSec float64) *Limiter {
	return &Limiter{
		buckets:   make(map[string]*bucket),
		capacity:  capacity,
		refill:    refillPerSec,
		lastPrune: time.Now(),
	}
}

// Allow consumes one token for key if available.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > pruneAfter {
		l.prune(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// prune drops buckets idle long enough to be full again. Called with mu held.
func (l *Limiter) prune(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) > pruneAfter {
			delete(l.buckets, key)
		}
	}
	l.lastPrune = now
}
