package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/gitacache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	ErrorEvery   uint64
	ExpiredEvery uint64
	// Optional key redactor. nil logs keys verbatim; use HashKey to hide them.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	errCtr     atomic.Uint64
	expiredCtr atomic.Uint64
}

var _ gitacache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

// HashKey redacts a key to a short SHA-256 prefix.
func HashKey(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return k
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) CacheError(err *gitacache.CacheError) {
	if h.l == nil || err == nil || !sample(h.opts.ErrorEvery, &h.errCtr) {
		return
	}
	h.l.Warn("gitacache.cache_error",
		"op", err.Op,
		"key", h.redact(err.Key),
		"err", err.Err)
}

func (h *Hooks) Expired(storageKey string, age time.Duration) {
	if h.l == nil || !sample(h.opts.ExpiredEvery, &h.expiredCtr) {
		return
	}
	h.l.Debug("gitacache.expired",
		"key", h.redact(storageKey),
		"age", age)
}

func (h *Hooks) Cleared(prefix string, removed int) {
	if h.l == nil {
		return
	}
	h.l.Info("gitacache.cleared",
		"prefix", prefix,
		"removed", removed)
}
