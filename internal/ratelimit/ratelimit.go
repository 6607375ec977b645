// Package ratelimit provides a small in-memory sliding-window limiter.
//
// State lives in process memory only, so limits reset on restart and are
// not shared between instances. That is acceptable here: the limiter is a
// brake on OTP email abuse, not a security boundary.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks event timestamps per key and answers whether another
// event is allowed within a sliding window.
type Limiter struct {
	mu      sync.Mutex
	events  map[string][]time.Time
	now     func() time.Time
	maxIdle time.Duration
}

// New creates a Limiter. maxIdle bounds how long a key's history is kept
// once it stops being touched; the periodic sweeper uses it.
func New(maxIdle time.Duration) *Limiter {
	return &Limiter{
		events:  make(map[string][]time.Time),
		now:     time.Now,
		maxIdle: maxIdle,
	}
}

// Allow records an event for key and reports whether it stayed within
// limit events per window. The event is counted even when denied, so a
// client hammering the endpoint keeps itself locked out.
func (l *Limiter) Allow(key string, limit int, window time.Duration) bool {
	now := l.now()
	cutoff := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.events[key][:0]
	for _, t := range l.events[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	allowed := len(kept) < limit
	l.events[key] = append(kept, now)
	return allowed
}

// Record notes an event for key without checking any limit. Pair it
// with LastEvent for cooldowns on things that actually happened, as
// opposed to attempts.
func (l *Limiter) Record(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[key] = append(l.events[key], l.now())
}

// LastEvent returns the time of the most recent event for key, or the
// zero time if none is recorded. Used for cooldown checks that must not
// themselves count as an event.
func (l *Limiter) LastEvent(key string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := l.events[key]
	if len(events) == 0 {
		return time.Time{}
	}
	return events[len(events)-1]
}

// Sweep drops keys whose newest event is older than maxIdle. Call it from
// a background goroutine; Start wires that up.
func (l *Limiter) Sweep() {
	cutoff := l.now().Add(-l.maxIdle)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, events := range l.events {
		if len(events) == 0 || events[len(events)-1].Before(cutoff) {
			delete(l.events, key)
		}
	}
}

// Start runs Sweep on the given interval until stop is closed.
func (l *Limiter) Start(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Sweep()
			case <-stop:
				return
			}
		}
	}()
}
