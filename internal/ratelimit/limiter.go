// Package ratelimit throttles repeated requests per key, such as login
// attempts per client address.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits or rejects an event for a key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a sliding-window limiter kept in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	maxReqs int
	window  time.Duration
	now     func() time.Time
	cleanup *time.Ticker
	done    chan struct{}
}

type bucket struct {
	requests []time.Time
	lastSeen time.Time
}

func NewMemoryLimiter(maxRequests int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		maxReqs: maxRequests,
		window:  window,
		now:     time.Now,
		cleanup: time.NewTicker(5 * time.Minute),
		done:    make(chan struct{}),
	}
	go l.cleanupOldBuckets()
	return l
}

// Allow records an event for key and reports whether it is within the limit.
// An empty key or a non-positive limit always allows.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if key == "" || l.maxReqs <= 0 {
		return true, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{}
		l.buckets[key] = b
	}

	cutoff := now.Add(-l.window)
	kept := b.requests[:0]
	for _, t := range b.requests {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.requests = kept
	b.lastSeen = now

	if len(b.requests) >= l.maxReqs {
		return false, nil
	}
	b.requests = append(b.requests, now)
	return true, nil
}

func (l *MemoryLimiter) cleanupOldBuckets() {
	for {
		select {
		case <-l.done:
			return
		case <-l.cleanup.C:
			l.mu.Lock()
			stale := l.now().Add(-3 * l.window)
			for key, b := range l.buckets {
				if b.lastSeen.Before(stale) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop ends the background cleanup.
func (l *MemoryLimiter) Stop() {
	l.cleanup.Stop()
	close(l.done)
}
