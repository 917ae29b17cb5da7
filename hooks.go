package gitacache

import "time"

// Hooks lightweight callbacks for events the cache handles without telling the caller.
// Implementations MUST be cheap and non-blocking; wrap slow ones in hooks/async.
type Hooks interface {
	// A storage, encode or decode failure was swallowed.
	// err.Op is one of the Op* constants.
	CacheError(err *CacheError)

	// An entry older than the TTL was found and deleted.
	Expired(storageKey string, age time.Duration)

	// Clear or Prune finished. removed is the number of keys deleted.
	Cleared(prefix string, removed int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CacheError(*CacheError)        {}
func (NopHooks) Expired(string, time.Duration) {}
func (NopHooks) Cleared(string, int)           {}
