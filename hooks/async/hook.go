// Package asynchook moves Hooks calls off the caller's goroutine.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{ErrorEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := gitacache.New[json.RawMessage](gitacache.Options[json.RawMessage]{
//	    Namespace: "bhagavad_gita_",
//	    Provider:  provider,
//	    Codec:     codec.JSON[json.RawMessage]{},
//	    Hooks:     hooks,
//	})
//
// Events are dropped, not queued, once the buffer is full.
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/gitacache"
)

type Hooks struct {
	inner   gitacache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against sends on a closed channel
	closed  bool
	dropped atomic.Uint64
}

var _ gitacache.Hooks = (*Hooks)(nil)

func New(inner gitacache.Hooks, workers, qlen int) *Hooks {
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

// Close drains queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) CacheError(err *gitacache.CacheError) { h.try(func() { h.inner.CacheError(err) }) }
func (h *Hooks) Expired(k string, age time.Duration) {
	h.try(func() { h.inner.Expired(k, age) })
}
func (h *Hooks) Cleared(prefix string, n int) { h.try(func() { h.inner.Cleared(prefix, n) }) }
