package gitacache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/unkn0wn-root/gitacache/codec"
	"github.com/unkn0wn-root/gitacache/internal/util"
	"github.com/unkn0wn-root/gitacache/internal/wire"
	pr "github.com/unkn0wn-root/gitacache/provider"
)

type cache[V any] struct {
	ns       string
	provider pr.Provider
	codec    codec.Codec[V]
	log      Logger
	hooks    Hooks
	now      func() time.Time
	ttl      time.Duration
	enabled  bool

	// background sweep
	stopCh    chan struct{}
	sweepWg   sync.WaitGroup
	closeOnce sync.Once
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("gitacache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("gitacache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("gitacache: namespace is required")
	}
	if opts.TTL < 0 {
		return nil, fmt.Errorf("gitacache: negative TTL %s", opts.TTL)
	}

	c := &cache[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.ttl = coalesce[time.Duration](opts.TTL, DefaultTTL)
	c.now = opts.Now
	if c.now == nil {
		c.now = time.Now
	}

	if c.enabled && opts.SweepInterval > 0 {
		c.stopCh = make(chan struct{})
		c.sweepWg.Add(1)
		go c.sweepLoop(opts.SweepInterval)
	}
	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		if c.stopCh != nil {
			close(c.stopCh)
			c.sweepWg.Wait()
		}
	})
	if c.provider != nil {
		return c.provider.Close(ctx)
	}
	return nil
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	if !c.enabled {
		return zero, false
	}
	k := c.storageKey(key)
	raw, ok, err := c.provider.Get(ctx, k)
	if err != nil {
		c.report(OpGet, k, err)
		return zero, false
	}
	if !ok {
		return zero, false
	}
	ts, payload, err := wire.Decode(raw)
	if err != nil {
		// left in place; the next Set overwrites it and Prune removes it
		c.report(OpDecode, k, err)
		return zero, false
	}
	if age, expired := c.expired(ts); expired {
		if err := c.provider.Del(ctx, k); err != nil {
			c.report(OpDel, k, err)
		}
		c.log.Debug("cache entry expired", Fields{"key": k, "age": age.String()})
		c.hooks.Expired(k, age)
		return zero, false
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		c.report(OpDecode, k, err)
		return zero, false
	}
	return v, true
}

func (c *cache[V]) Set(ctx context.Context, key string, value V) {
	if !c.enabled {
		return
	}
	k := c.storageKey(key)
	payload, err := c.codec.Encode(value)
	if err != nil {
		c.report(OpEncode, k, err)
		return
	}
	b, err := wire.Encode(c.now().UnixMilli(), payload)
	if err != nil {
		c.report(OpEncode, k, err)
		return
	}
	if err := c.provider.Set(ctx, k, b); err != nil {
		c.report(OpSet, k, err)
	}
}

func (c *cache[V]) Clear(ctx context.Context, prefix string) int {
	if !c.enabled {
		return 0
	}
	keys, ok := c.keys(ctx, c.ns+prefix)
	if !ok {
		return 0
	}
	removed := 0
	for _, k := range keys {
		if err := c.provider.Del(ctx, k); err != nil {
			c.report(OpDel, k, err)
			continue
		}
		removed++
	}
	c.log.Info("cache cleared", Fields{"prefix": c.ns + prefix, "removed": removed})
	c.hooks.Cleared(prefix, removed)
	return removed
}

func (c *cache[V]) Prune(ctx context.Context) int {
	if !c.enabled {
		return 0
	}
	keys, ok := c.keys(ctx, c.ns)
	if !ok {
		return 0
	}
	removed := 0
	for _, k := range keys {
		raw, ok, err := c.provider.Get(ctx, k)
		if err != nil {
			c.report(OpGet, k, err)
			continue
		}
		if !ok {
			continue // removed concurrently
		}
		ts, _, err := wire.Decode(raw)
		if err == nil {
			age, expired := c.expired(ts)
			if !expired {
				continue
			}
			c.hooks.Expired(k, age)
		}
		if err := c.provider.Del(ctx, k); err != nil {
			c.report(OpDel, k, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		c.log.Debug("cache pruned", Fields{"removed": removed})
		c.hooks.Cleared("", removed)
	}
	return removed
}

// keys lists storage keys under full, re-checking the prefix in case a
// provider matches loosely.
func (c *cache[V]) keys(ctx context.Context, full string) ([]string, bool) {
	keys, err := c.provider.Keys(ctx, full)
	if err != nil {
		c.report(OpKeys, full, err)
		return nil, false
	}
	return util.FilterPrefix(keys, full), true
}

func (c *cache[V]) sweepLoop(every time.Duration) {
	defer c.sweepWg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.Prune(context.Background())
		case <-c.stopCh:
			return
		}
	}
}

// expired reports the entry age and whether it is past the TTL.
// An entry exactly TTL old is still fresh.
func (c *cache[V]) expired(storedAtMillis int64) (time.Duration, bool) {
	age := c.now().Sub(time.UnixMilli(storedAtMillis))
	return age, age > c.ttl
}

func (c *cache[V]) report(op, storageKey string, err error) {
	ce := &CacheError{Op: op, Key: storageKey, Err: err}
	c.log.Warn("cache operation failed", Fields{"op": op, "key": storageKey, "err": err.Error()})
	c.hooks.CacheError(ce)
}

func (c *cache[V]) storageKey(userKey string) string {
	// isolate by namespace
	return c.ns + userKey
}
