package provider

import (
	"testing"
	"time"
)

func TestExpirationNilMeansStoreDefault(t *testing.T) {
	var e *Expiration
	now := time.Now()
	if ttl := e.TTL(now); ttl != 0 {
		t.Fatalf("nil expiration ttl=%v want 0", ttl)
	}
	if !e.Deadline(now).IsZero() {
		t.Fatalf("nil expiration must have no deadline")
	}
	if e.Expired(now) {
		t.Fatalf("nil expiration must never be expired")
	}
}

func TestExpirationRelativeToNow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := &Expiration{AbsoluteExpirationRelativeToNow: 60 * time.Second}
	if got := e.TTL(now); got != 60*time.Second {
		t.Fatalf("ttl=%v want 60s", got)
	}
	if got := e.Deadline(now); !got.Equal(now.Add(time.Minute)) {
		t.Fatalf("deadline=%v", got)
	}
}

func TestExpirationEarliestDeadlineWins(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := &Expiration{
		AbsoluteExpiration:              now.Add(10 * time.Second),
		AbsoluteExpirationRelativeToNow: time.Minute,
	}
	if got := e.TTL(now); got != 10*time.Second {
		t.Fatalf("ttl=%v want 10s", got)
	}
}

func TestExpirationSlidingCappedByDeadline(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := &Expiration{SlidingExpiration: 30 * time.Second}
	if got := e.TTL(now); got != 30*time.Second {
		t.Fatalf("sliding-only ttl=%v want 30s", got)
	}

	e.AbsoluteExpirationRelativeToNow = 10 * time.Second
	if got := e.TTL(now); got != 10*time.Second {
		t.Fatalf("capped ttl=%v want 10s", got)
	}
	// refresh later: window is limited by what is left of the deadline
	dl := e.Deadline(now)
	if got := SlideTTL(now.Add(8*time.Second), dl, e.Sliding()); got != 2*time.Second {
		t.Fatalf("refresh ttl=%v want 2s", got)
	}
}

func TestExpirationPastDeadline(t *testing.T) {
	now := time.Now()
	e := &Expiration{AbsoluteExpiration: now.Add(-time.Second)}
	if !e.Expired(now) {
		t.Fatalf("past deadline should be expired")
	}
	if got := e.TTL(now); got <= 0 {
		t.Fatalf("ttl must stay positive for providers, got %v", got)
	}
}
