// Package asynchook moves hook delivery off the request path: events go to a
// bounded queue drained by worker goroutines, and are dropped when it is full.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/cacheaside"
)

type Hooks struct {
	inner   cacheaside.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

var _ cacheaside.Hooks = (*Hooks)(nil)

func New(inner cacheaside.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full
// or the hooks were closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		// send on closed channel after a racing Close
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	if h.closed.Load() {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(k string)                    { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string)                   { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) Populated(k string)              { h.try(func() { h.inner.Populated(k) }) }
func (h *Hooks) Coalesced(k string)              { h.try(func() { h.inner.Coalesced(k) }) }
func (h *Hooks) ProviderSetRejected(k string)    { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) DecodeError(k string, err error) { h.try(func() { h.inner.DecodeError(k, err) }) }
func (h *Hooks) PopulateSkipped(k, r string) {
	h.try(func() { h.inner.PopulateSkipped(k, r) })
}
func (h *Hooks) StoreError(op, k string, err error) {
	h.try(func() { h.inner.StoreError(op, k, err) })
}
