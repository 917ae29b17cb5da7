// Package gita is the chapter data access layer of the reader.
//
// A Library holds the static table of the 18 chapters and loads chapter
// payloads from a remote JSON source, one file per chapter, through a
// gitacache.Cache. A cached payload is served until it is older than the
// cache TTL (24h by default); after that the next request refetches it.
//
//	lib, err := gita.New(gita.Options{})
//	v, err := lib.GetVerse(ctx, 2, 47)
//
// Cache failures never reach the caller. Fetch, parse and lookup failures do,
// as *FetchError, *ParseError, *StructureError and *NotFoundError.
package gita
