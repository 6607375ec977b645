package ratelimit

import (
	"testing"
	"time"
)

// fixedClock lets tests move time forward deterministically.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(maxIdle time.Duration) (*Limiter, *fixedClock) {
	clock := &fixedClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := New(maxIdle)
	l.now = clock.now
	return l, clock
}

func TestAllowWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(time.Hour)

	for i := 0; i < 5; i++ {
		if !l.Allow("otp:kid@example.com", 5, time.Minute) {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}
	if l.Allow("otp:kid@example.com", 5, time.Minute) {
		t.Error("sixth request allowed, want denied")
	}
}

func TestDeniedRequestsStillCount(t *testing.T) {
	l, clock := newTestLimiter(time.Hour)

	if !l.Allow("k", 1, time.Minute) {
		t.Fatal("first request denied")
	}
	clock.advance(30 * time.Second)
	if l.Allow("k", 1, time.Minute) {
		t.Fatal("second request allowed within window")
	}
	// The first event has aged out by now, but the denied retry at +30s
	// has not, so the key stays locked.
	clock.advance(40 * time.Second)
	if l.Allow("k", 1, time.Minute) {
		t.Error("hammering reset the window, want continued denial")
	}
}

func TestWindowSlides(t *testing.T) {
	l, clock := newTestLimiter(time.Hour)

	for i := 0; i < 5; i++ {
		l.Allow("k", 5, time.Minute)
	}
	if l.Allow("k", 5, time.Minute) {
		t.Fatal("expected denial at limit")
	}

	clock.advance(2 * time.Minute)
	if !l.Allow("k", 5, time.Minute) {
		t.Error("expected allowance after window expired")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Hour)

	for i := 0; i < 5; i++ {
		l.Allow("otp:a@x.com", 5, time.Minute)
	}
	if !l.Allow("otp:b@x.com", 5, time.Minute) {
		t.Error("unrelated key denied")
	}
}

func TestLastEvent(t *testing.T) {
	l, clock := newTestLimiter(time.Hour)

	if !l.LastEvent("k").IsZero() {
		t.Error("expected zero time for unseen key")
	}
	l.Allow("k", 5, time.Minute)
	if got := l.LastEvent("k"); !got.Equal(clock.t) {
		t.Errorf("LastEvent = %v, want %v", got, clock.t)
	}
}

func TestSweepDropsIdleKeys(t *testing.T) {
	l, clock := newTestLimiter(10 * time.Minute)

	l.Allow("stale", 5, time.Minute)
	clock.advance(11 * time.Minute)
	l.Allow("fresh", 5, time.Minute)

	l.Sweep()

	if _, ok := l.events["stale"]; ok {
		t.Error("stale key survived sweep")
	}
	if _, ok := l.events["fresh"]; !ok {
		t.Error("fresh key dropped by sweep")
	}
}

func TestRecordAndLastEvent(t *testing.T) {
	l, clock := newTestLimiter(time.Hour)

	if !l.LastEvent("issued:k").IsZero() {
		t.Fatal("LastEvent on unknown key should be zero")
	}

	l.Record("issued:k")
	first := clock.t
	clock.advance(10 * time.Second)
	l.Record("issued:k")

	if got := l.LastEvent("issued:k"); !got.Equal(first.Add(10 * time.Second)) {
		t.Errorf("LastEvent = %v, want the second record", got)
	}

	// Record on one key leaves another key's budget alone.
	if !l.Allow("request:k", 1, time.Minute) {
		t.Error("Allow denied on a key that only saw Records elsewhere")
	}
}
