// Package sloghooks logs cache events through log/slog. Storage keys are
// redacted before they are logged.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/cacheaside"
	"github.com/unkn0wn-root/cacheaside/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitMissEvery uint64
	SkipEvery    uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitMissCtr atomic.Uint64
	skipCtr    atomic.Uint64
}

var _ cacheaside.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.RedactKey(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(storageKey string) {
	if h.l == nil || !sample(h.opts.HitMissEvery, &h.hitMissCtr) {
		return
	}
	h.l.Debug("cacheaside.hit", "key", h.redact(storageKey))
}

func (h *Hooks) Miss(storageKey string) {
	if h.l == nil || !sample(h.opts.HitMissEvery, &h.hitMissCtr) {
		return
	}
	h.l.Debug("cacheaside.miss", "key", h.redact(storageKey))
}

func (h *Hooks) Populated(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Debug("cacheaside.populated", "key", h.redact(storageKey))
}

func (h *Hooks) PopulateSkipped(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SkipEvery, &h.skipCtr) {
		return
	}
	h.l.Debug("cacheaside.populate_skipped",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) Coalesced(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Debug("cacheaside.coalesced", "key", h.redact(storageKey))
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("cacheaside.provider_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) StoreError(op, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("cacheaside.store_error",
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) DecodeError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cacheaside.decode_error",
		"key", h.redact(storageKey),
		"err", err)
}
