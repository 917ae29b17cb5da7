// Package provider defines the storage substrate used by gitacache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). If a store performs internal transforms
// (e.g., compression), they MUST be fully reversed so that the bytes returned by
// Get are identical to the bytes provided to Set.
//
// Expiry is not the provider's job. gitacache stamps every entry and decides
// freshness itself, so a provider may keep values forever.
//
// Important: the keyspace under a cache's namespace (e.g. "bhagavad_gita_") is
// owned by that cache. Foreign writes under it are treated as corruption.
package provider

import "context"

// Provider is a minimal string-keyed byte store that can enumerate its keys.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Keys returns every stored key starting with prefix ("" => all keys).
	// Order is unspecified.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
