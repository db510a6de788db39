// Package promhook counts cache events with client_golang counters.
// Keys are never used as labels; the cache name is.
package promhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkn0wn-root/cacheaside"
)

type Hooks struct {
	hits         prometheus.Counter
	misses       prometheus.Counter
	populated    prometheus.Counter
	skipped      *prometheus.CounterVec
	coalesced    prometheus.Counter
	setRejected  prometheus.Counter
	storeErrors  *prometheus.CounterVec
	decodeErrors prometheus.Counter
}

var _ cacheaside.Hooks = (*Hooks)(nil)

// New registers the counters with reg (prometheus.DefaultRegisterer when nil).
// name becomes the constant "cache" label so several caches can share reg.
func New(reg prometheus.Registerer, name string) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"cache": name}, reg))

	return &Hooks{
		hits: f.NewCounter(prometheus.CounterOpts{
			Name: "cacheaside_hits_total",
			Help: "Number of reads that found an entry",
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Name: "cacheaside_misses_total",
			Help: "Number of reads that found no entry",
		}),
		populated: f.NewCounter(prometheus.CounterOpts{
			Name: "cacheaside_populated_total",
			Help: "Number of loader results written back",
		}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cacheaside_populate_skipped_total",
			Help: "Number of loader results returned without a write",
		}, []string{"reason"}),
		coalesced: f.NewCounter(prometheus.CounterOpts{
			Name: "cacheaside_coalesced_total",
			Help: "Number of populate calls that shared an in-flight load",
		}),
		setRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "cacheaside_provider_set_rejected_total",
			Help: "Number of writes refused by the provider",
		}),
		storeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cacheaside_store_errors_total",
			Help: "Number of failed provider calls",
		}, []string{"op"}),
		decodeErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "cacheaside_decode_errors_total",
			Help: "Number of stored entries that failed to decode",
		}),
	}
}

func (h *Hooks) Hit(string)                       { h.hits.Inc() }
func (h *Hooks) Miss(string)                      { h.misses.Inc() }
func (h *Hooks) Populated(string)                 { h.populated.Inc() }
func (h *Hooks) PopulateSkipped(_, reason string) { h.skipped.WithLabelValues(reason).Inc() }
func (h *Hooks) Coalesced(string)                 { h.coalesced.Inc() }
func (h *Hooks) ProviderSetRejected(string)       { h.setRejected.Inc() }
func (h *Hooks) StoreError(op, _ string, _ error) { h.storeErrors.WithLabelValues(op).Inc() }
func (h *Hooks) DecodeError(string, error)        { h.decodeErrors.Inc() }
