package provider

import "time"

// Expiration carries the expiration policy of a single write.
// A nil *Expiration means "store default". Fields combine: the entry is gone
// at the earliest absolute deadline, and (when SlidingExpiration > 0) also
// after going unread for the sliding window.
type Expiration struct {
	// AbsoluteExpiration is a fixed wall-clock deadline.
	AbsoluteExpiration time.Time
	// AbsoluteExpirationRelativeToNow is a deadline measured from the moment
	// the provider performs the write.
	AbsoluteExpirationRelativeToNow time.Duration
	// SlidingExpiration expires the entry after this much idle time.
	// Providers that cannot refresh on read treat it as an absolute TTL.
	SlidingExpiration time.Duration
}

// Deadline returns the earliest absolute deadline for a write at now,
// or the zero time when none applies.
func (e *Expiration) Deadline(now time.Time) time.Time {
	if e == nil {
		return time.Time{}
	}
	d := e.AbsoluteExpiration
	if e.AbsoluteExpirationRelativeToNow > 0 {
		rel := now.Add(e.AbsoluteExpirationRelativeToNow)
		if d.IsZero() || rel.Before(d) {
			d = rel
		}
	}
	return d
}

// Expired reports whether the absolute deadline has already passed at now.
func (e *Expiration) Expired(now time.Time) bool {
	d := e.Deadline(now)
	return !d.IsZero() && !d.After(now)
}

// Sliding returns the sliding window, 0 when unset.
func (e *Expiration) Sliding() time.Duration {
	if e == nil {
		return 0
	}
	return e.SlidingExpiration
}

// TTL returns the initial time-to-live for a write at now. 0 means no expiry.
func (e *Expiration) TTL(now time.Time) time.Duration {
	return SlideTTL(now, e.Deadline(now), e.Sliding())
}

// SlideTTL computes the time-to-live of an entry at now given its absolute
// deadline (zero = none) and sliding window (0 = none). It is used both on
// write and when a provider refreshes a sliding entry on read.
func SlideTTL(now, deadline time.Time, sliding time.Duration) time.Duration {
	var ttl time.Duration
	if !deadline.IsZero() {
		ttl = deadline.Sub(now)
		if ttl <= 0 {
			return time.Nanosecond
		}
	}
	if sliding > 0 && (ttl == 0 || sliding < ttl) {
		ttl = sliding
	}
	return ttl
}
