package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"testing"
)

func openTemp(t *testing.T) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	p, err := Open(context.Background(), Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p, path
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), Config{Path: "  "}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestSQLiteRoundTripAndOverwrite(t *testing.T) {
	ctx := context.Background()
	p, _ := openTemp(t)

	if _, ok, err := p.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	bin := []byte{0x00, 0xff, 0x10, 'x'}
	if err := p.Set(ctx, "k", bin); err != nil {
		t.Fatal(err)
	}
	got, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(got, bin) {
		t.Fatalf("Get: ok=%v err=%v got=%x", ok, err, got)
	}

	if err := p.Set(ctx, "k", []byte("second")); err != nil {
		t.Fatal(err)
	}
	got, _, _ = p.Get(ctx, "k")
	if string(got) != "second" {
		t.Fatalf("overwrite failed: %q", got)
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestSQLiteKeysPrefixIsLiteral(t *testing.T) {
	ctx := context.Background()
	p, _ := openTemp(t)

	for _, k := range []string{"bhagavad_gita_chapter_1", "bhagavad_gita_chapter_18", "bhagavadXgitaXchapter", "theme"} {
		if err := p.Set(ctx, k, []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := p.Keys(ctx, "bhagavad_gita_")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "bhagavad_gita_chapter_1" || keys[1] != "bhagavad_gita_chapter_18" {
		t.Fatalf("'_' must not act as a wildcard, got %v", keys)
	}

	all, err := p.Keys(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected all 4 keys, got %v", all)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	p, path := openTemp(t)
	if err := p.Set(ctx, "bhagavad_gita_chapter_2", []byte(`{"data":{},"timestamp":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(ctx); err != nil {
		t.Fatal(err)
	}

	p2, err := Open(ctx, Config{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer p2.Close(ctx)
	got, ok, err := p2.Get(ctx, "bhagavad_gita_chapter_2")
	if err != nil || !ok || string(got) != `{"data":{},"timestamp":1}` {
		t.Fatalf("value lost across reopen: ok=%v err=%v got=%q", ok, err, got)
	}
}

func TestSQLiteInMemory(t *testing.T) {
	ctx := context.Background()
	p, err := Open(ctx, Config{Path: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close(ctx)
	if err := p.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "a"); !ok {
		t.Fatalf("expected hit on in-memory database")
	}
}
