package gita

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/gitacache"
	"github.com/unkn0wn-root/gitacache/codec"
	"github.com/unkn0wn-root/gitacache/fetch"
	"github.com/unkn0wn-root/gitacache/provider/memory"
)

const (
	// DefaultBaseURL hosts one JSON file per chapter.
	DefaultBaseURL = "https://raw.githubusercontent.com/bhavykhatri/DharmicData/main/SrimadBhagvadGita"
	// DefaultNamespace prefixes every cache key written by a Library.
	DefaultNamespace = "bhagavad_gita_"
	// ChapterKeyPrefix prefixes the logical cache key of a chapter payload.
	ChapterKeyPrefix = "chapter_"

	// versesField names the verse sequence in a chapter payload.
	versesField = "BhagavadGitaChapter"
)

// Options configure a Library. The zero value is usable: it reads from
// DefaultBaseURL over HTTP and caches in memory.
type Options struct {
	BaseURL string
	Fetcher fetch.Fetcher
	// Cache stores chapter payloads. nil => in-memory cache under DefaultNamespace.
	Cache gitacache.Cache[json.RawMessage]
	// Chapters replaces the built-in table. nil => Chapters().
	Chapters []ChapterInfo
	Logger   gitacache.Logger
}

// Library is the chapter data access layer: the chapter table plus
// fetch-or-cache of chapter payloads. Safe for concurrent use.
//
// Concurrent FetchChapterData calls for the same chapter are not coalesced:
// each misses the cache, reads the source and writes the cache.
type Library struct {
	base     url.URL
	fetcher  fetch.Fetcher
	cache    gitacache.Cache[json.RawMessage]
	chapters []ChapterInfo
	log      gitacache.Logger
}

func New(opts Options) (*Library, error) {
	rawBase := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if rawBase == "" {
		rawBase = DefaultBaseURL
	}
	base, err := url.Parse(rawBase)
	if err != nil {
		return nil, fmt.Errorf("gita: parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gita: base URL %q must be absolute", rawBase)
	}

	l := &Library{
		base:    *base,
		fetcher: opts.Fetcher,
		cache:   opts.Cache,
		log:     opts.Logger,
	}
	if l.log == nil {
		l.log = gitacache.NopLogger{}
	}
	if l.fetcher == nil {
		l.fetcher = fetch.NewHTTP(fetch.Config{})
	}
	if l.cache == nil {
		c, err := gitacache.New[json.RawMessage](gitacache.Options[json.RawMessage]{
			Namespace: DefaultNamespace,
			Provider:  memory.New(),
			Codec:     codec.RawJSON{},
			Logger:    l.log,
		})
		if err != nil {
			return nil, err
		}
		l.cache = c
	}

	if opts.Chapters != nil {
		l.chapters = append([]ChapterInfo(nil), opts.Chapters...)
	} else {
		l.chapters = Chapters()
	}
	return l, nil
}

// Close releases the cache and its substrate.
func (l *Library) Close(ctx context.Context) error {
	return l.cache.Close(ctx)
}

// ChapterKey is the logical cache key of a chapter payload.
func ChapterKey(chapter int) string {
	return ChapterKeyPrefix + strconv.Itoa(chapter)
}

// ChapterURL is the address of a chapter payload under base.
func ChapterURL(base url.URL, chapter int) url.URL {
	u := base
	u.Path = strings.TrimRight(base.Path, "/") + "/bhagavad_gita_chapter_" + strconv.Itoa(chapter) + ".json"
	u.RawPath = ""
	return u
}

// FetchChapterData returns the payload of a chapter in compact JSON form, from
// the cache when a fresh copy exists, otherwise from the remote source. Errors are
// *FetchError or *ParseError. Cache failures never surface.
func (l *Library) FetchChapterData(ctx context.Context, chapter int) (json.RawMessage, error) {
	key := ChapterKey(chapter)
	if data, ok := l.cache.Get(ctx, key); ok {
		l.log.Debug("chapter loaded from cache", gitacache.Fields{"chapter": chapter})
		return data, nil
	}

	u := ChapterURL(l.base, chapter)
	res, err := l.fetcher.Fetch(ctx, u)
	if err != nil {
		l.log.Error("chapter fetch failed", gitacache.Fields{"chapter": chapter, "url": u.String(), "err": err.Error()})
		return nil, &FetchError{Chapter: chapter, URL: u.String(), Err: err}
	}
	if !res.OK() {
		l.log.Error("chapter fetch failed", gitacache.Fields{"chapter": chapter, "url": u.String(), "status": res.Code()})
		return nil, &FetchError{Chapter: chapter, URL: u.String(), StatusCode: res.Code()}
	}

	// compact form: a hit and a miss return the same bytes and the entry
	// is stored under "data"
	var buf bytes.Buffer
	if err := json.Compact(&buf, res.Body()); err != nil {
		l.log.Error("chapter parse failed", gitacache.Fields{"chapter": chapter, "url": u.String(), "err": err.Error()})
		return nil, &ParseError{Chapter: chapter, URL: u.String(), Err: err}
	}
	data := json.RawMessage(buf.Bytes())

	l.cache.Set(ctx, key, data)
	l.log.Info("chapter fetched", gitacache.Fields{"chapter": chapter, "bytes": len(data)})
	return data, nil
}

// GetAllChapters returns the chapter table ordered by number.
func (l *Library) GetAllChapters() []ChapterInfo {
	return append([]ChapterInfo(nil), l.chapters...)
}

// GetChapterInfo looks a chapter up by number.
func (l *Library) GetChapterInfo(chapter int) (ChapterInfo, bool) {
	for _, ch := range l.chapters {
		if ch.Number == chapter {
			return ch, true
		}
	}
	return ChapterInfo{}, false
}

// GetVerse returns the record whose "verse" field equals verse. Other fields
// are not checked: a matching record is always returned with Raw set.
// Fetch errors are returned unchanged.
func (l *Library) GetVerse(ctx context.Context, chapter, verse int) (Verse, error) {
	data, err := l.FetchChapterData(ctx, chapter)
	if err != nil {
		return Verse{}, err
	}
	records, err := verseRecords(chapter, data)
	if err != nil {
		return Verse{}, err
	}
	for _, rec := range records {
		n, ok := verseNumber(rec)
		if !ok || n != verse {
			continue
		}
		var v Verse
		if err := json.Unmarshal(rec, &v); err != nil {
			v = Verse{Verse: n, raw: append(json.RawMessage(nil), rec...)}
		}
		return v, nil
	}
	return Verse{}, &NotFoundError{Chapter: chapter, Verse: verse}
}

// VerseNumbers lists the verse numbers present in a chapter payload, in
// payload order. Records without an integer "verse" field are skipped.
func (l *Library) VerseNumbers(ctx context.Context, chapter int) ([]int, error) {
	data, err := l.FetchChapterData(ctx, chapter)
	if err != nil {
		return nil, err
	}
	records, err := verseRecords(chapter, data)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(records))
	for _, rec := range records {
		if n, ok := verseNumber(rec); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// ClearCache drops every cached entry of this library and returns how many
// were removed.
func (l *Library) ClearCache(ctx context.Context) int {
	n := l.cache.Clear(ctx, "")
	l.log.Info("cache cleared", gitacache.Fields{"removed": n})
	return n
}

// verseRecords is the shallow structural check: the payload must be an
// object whose verse field is an array.
func verseRecords(chapter int, data json.RawMessage) ([]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &StructureError{Chapter: chapter, Reason: "payload is not an object", Err: err}
	}
	field, ok := doc[versesField]
	if !ok {
		return nil, &StructureError{Chapter: chapter, Reason: "payload has no " + versesField + " field"}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(field, &records); err != nil || records == nil {
		return nil, &StructureError{Chapter: chapter, Reason: versesField + " is not an array", Err: err}
	}
	return records, nil
}

// verseNumber reads the integer "verse" field of a record. Strings, floats
// with a fraction, null and missing fields do not count.
func verseNumber(rec json.RawMessage) (int, bool) {
	var head struct {
		Verse json.RawMessage `json:"verse"`
	}
	if err := json.Unmarshal(rec, &head); err != nil || len(head.Verse) == 0 || head.Verse[0] == '"' {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(head.Verse, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
