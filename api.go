package gitacache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/gitacache/codec"
	pr "github.com/unkn0wn-root/gitacache/provider"
)

// DefaultTTL is the validity window of a cached entry.
const DefaultTTL = 24 * time.Hour

// Cache is the expiring key/value API. V is the caller's value type.
// Serialization is handled by a pluggable Codec[V].
//
// None of the methods return cache failures. Caching is an optimization and
// its failure must not fail the caller's request; see Hooks.
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Get returns the value stored for key, or ok=false on a miss.
	// Absent, malformed and expired entries are all misses.
	Get(ctx context.Context, key string) (v V, ok bool)

	// Set stores value stamped with the current time (best effort).
	Set(ctx context.Context, key string, value V)

	// Clear removes every entry whose key starts with prefix and returns how
	// many were removed. An empty prefix clears the whole namespace.
	Clear(ctx context.Context, prefix string) int

	// Prune removes expired and malformed entries and returns how many were removed.
	Prune(ctx context.Context) int
}

// Options tune the behavior of the cache.
// Namespace, Provider and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // key prefix owned by this cache, e.g. "bhagavad_gita_"
	Provider  pr.Provider
	Codec     c.Codec[V]

	TTL           time.Duration    // 0 => DefaultTTL
	Logger        Logger           // if nil, NopLogger is used
	Hooks         Hooks            // if nil, NopHooks is used
	Now           func() time.Time // if nil, time.Now
	SweepInterval time.Duration    // > 0 runs Prune in the background until Close
	Disabled      bool             // default false (enabled)
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
