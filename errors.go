package gitacache

import (
	"fmt"

	"github.com/unkn0wn-root/gitacache/internal/wire"
)

// ErrCorrupt matches a CacheError caused by a stored value that is not a valid envelope.
var ErrCorrupt = wire.ErrCorrupt

// Cache operations reported in CacheError.Op.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpDel    = "del"
	OpKeys   = "keys"
	OpDecode = "decode"
	OpEncode = "encode"
)

// CacheError describes a failure the cache recovered from locally.
// It is handed to Hooks and the Logger, never returned to callers.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }
