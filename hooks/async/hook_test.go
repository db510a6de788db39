package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unkn0wn-root/cacheaside"
)

type recorder struct {
	cacheaside.NopHooks
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (r *recorder) add(ev string) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) Hit(k string)                       { r.add("hit " + k) }
func (r *recorder) Miss(k string)                      { r.add("miss " + k) }
func (r *recorder) StoreError(op, k string, err error) { r.add(op + " " + k + " " + err.Error()) }

func TestDeliversAllEventsBeforeClose(t *testing.T) {
	rec := &recorder{}
	h := New(rec, 2, 16)
	h.Hit("a")
	h.Miss("b")
	h.StoreError("get", "c", errors.New("down"))
	h.Close()

	assert.ElementsMatch(t, []string{"hit a", "miss b", "get c down"}, rec.events)
	assert.Zero(t, h.Dropped())
}

func TestDropsWhenQueueFull(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	h := New(rec, 1, 1)

	for i := 0; i < 10; i++ {
		h.Hit("k")
	}
	// at most one event in the worker and one queued
	assert.GreaterOrEqual(t, h.Dropped(), uint64(8))

	close(rec.block)
	h.Close()
	h.Hit("late")
	assert.NotContains(t, rec.events, "hit late")
}
