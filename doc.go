// Package gitacache implements a time-expiring key/value cache over a pluggable
// byte store. It backs the chapter data access layer in package gita, but
// knows nothing about chapters: values are opaque V serialized by a Codec[V].
//
// Components:
//   - Provider: byte store that can enumerate keys (memory, SQLite, Redis, BigCache).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Hooks: observer for failures the cache swallows.
//
// Keys:
//
//	<ns><key>   - e.g. bhagavad_gita_chapter_2
//
// Entries are stored as a small JSON envelope:
//
//	{"data": <payload>, "timestamp": <unix ms>}
//
// An entry older than the TTL is never served. Get deletes it on sight and
// reports a miss. Storage and decode failures never reach the caller: they are
// logged, handed to Hooks as *CacheError, and treated as a miss (Get) or a
// no-op (Set, Clear).
package gitacache
