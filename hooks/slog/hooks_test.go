package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/gitacache"
)

func newBuffered(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func TestCacheErrorLogged(t *testing.T) {
	h, buf := newBuffered(Options{})
	h.CacheError(&gitacache.CacheError{Op: gitacache.OpSet, Key: "bhagavad_gita_chapter_2", Err: errors.New("quota")})

	out := buf.String()
	for _, want := range []string{"gitacache.cache_error", "op=set", "key=bhagavad_gita_chapter_2", "err=quota"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
}

func TestRedactAndSampling(t *testing.T) {
	h, buf := newBuffered(Options{ExpiredEvery: 3, Redact: HashKey})
	for i := 0; i < 6; i++ {
		h.Expired("bhagavad_gita_chapter_1", time.Hour)
	}
	out := buf.String()
	if n := strings.Count(out, "gitacache.expired"); n != 2 {
		t.Fatalf("expected 2 sampled lines, got %d: %s", n, out)
	}
	if strings.Contains(out, "chapter_1") {
		t.Fatalf("key not redacted: %s", out)
	}
	if !strings.Contains(out, "key="+HashKey("bhagavad_gita_chapter_1")) {
		t.Fatalf("expected hashed key: %s", out)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	h := New(nil, Options{})
	h.CacheError(&gitacache.CacheError{Op: "get", Err: errors.New("x")})
	h.Expired("k", time.Second)
	h.Cleared("", 1)
}
