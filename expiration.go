package cacheaside

import (
	"time"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

// Expiration is the policy handed to the provider with every write.
// nil means "store default".
type Expiration = pr.Expiration

// AbsoluteAfter builds a policy that expires an entry seconds after the
// provider writes it.
func AbsoluteAfter(seconds int) (*Expiration, error) {
	if seconds <= 0 {
		return nil, &ArgumentError{Arg: "seconds", Reason: "must be positive"}
	}
	return &Expiration{AbsoluteExpirationRelativeToNow: time.Duration(seconds) * time.Second}, nil
}

// AbsoluteAt builds a policy with a fixed wall-clock deadline.
func AbsoluteAt(t time.Time) (*Expiration, error) {
	if t.IsZero() {
		return nil, &ArgumentError{Arg: "deadline", Reason: "must not be zero"}
	}
	return &Expiration{AbsoluteExpiration: t}, nil
}

// SlidingFor builds a policy that expires an entry after d without reads.
func SlidingFor(d time.Duration) (*Expiration, error) {
	if d <= 0 {
		return nil, &ArgumentError{Arg: "sliding", Reason: "must be positive"}
	}
	return &Expiration{SlidingExpiration: d}, nil
}

func checkExpiration(e *Expiration) error {
	if e == nil {
		return nil
	}
	if e.AbsoluteExpirationRelativeToNow < 0 {
		return &ArgumentError{Arg: "expiration", Reason: "negative relative expiration"}
	}
	if e.SlidingExpiration < 0 {
		return &ArgumentError{Arg: "expiration", Reason: "negative sliding expiration"}
	}
	return nil
}

// EntryOptions configure a single populate call.
// Set at most one of AbsoluteExpirationSeconds and Expiration; with neither,
// Options.DefaultExpiration (or the store default) applies.
type EntryOptions struct {
	// AbsoluteExpirationSeconds expires the entry this many seconds after the write.
	AbsoluteExpirationSeconds int
	// Expiration is passed to the provider untouched.
	Expiration *Expiration
}

func (o EntryOptions) expiration() (*Expiration, error) {
	switch {
	case o.Expiration != nil && o.AbsoluteExpirationSeconds != 0:
		return nil, &ArgumentError{Arg: "options", Reason: "both AbsoluteExpirationSeconds and Expiration set"}
	case o.Expiration != nil:
		return o.Expiration, checkExpiration(o.Expiration)
	case o.AbsoluteExpirationSeconds != 0:
		return AbsoluteAfter(o.AbsoluteExpirationSeconds)
	}
	return nil, nil
}
