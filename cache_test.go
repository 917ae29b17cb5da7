package gitacache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	c "github.com/unkn0wn-root/gitacache/codec"
	"github.com/unkn0wn-root/gitacache/internal/wire"
	pr "github.com/unkn0wn-root/gitacache/provider"
	"github.com/unkn0wn-root/gitacache/provider/memory"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// flakyProvider wraps the memory provider and fails selected operations.
type flakyProvider struct {
	*memory.Memory
	failGet  error
	failSet  error
	failDel  error
	failKeys error
}

var _ pr.Provider = (*flakyProvider)(nil)

func newFlaky() *flakyProvider { return &flakyProvider{Memory: memory.New()} }

func (p *flakyProvider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if p.failGet != nil {
		return nil, false, p.failGet
	}
	return p.Memory.Get(ctx, key)
}

func (p *flakyProvider) Set(ctx context.Context, key string, value []byte) error {
	if p.failSet != nil {
		return p.failSet
	}
	return p.Memory.Set(ctx, key, value)
}

func (p *flakyProvider) Del(ctx context.Context, key string) error {
	if p.failDel != nil {
		return p.failDel
	}
	return p.Memory.Del(ctx, key)
}

func (p *flakyProvider) Keys(ctx context.Context, prefix string) ([]string, error) {
	if p.failKeys != nil {
		return nil, p.failKeys
	}
	return p.Memory.Keys(ctx, prefix)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: time.UnixMilli(1_700_000_000_000)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingHooks struct {
	mu      sync.Mutex
	errs    []*CacheError
	expired []string
	cleared []int
}

func (h *recordingHooks) CacheError(err *CacheError) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func (h *recordingHooks) Expired(k string, _ time.Duration) {
	h.mu.Lock()
	h.expired = append(h.expired, k)
	h.mu.Unlock()
}

func (h *recordingHooks) Cleared(_ string, n int) {
	h.mu.Lock()
	h.cleared = append(h.cleared, n)
	h.mu.Unlock()
}

func (h *recordingHooks) errOps() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.errs))
	for i, e := range h.errs {
		out[i] = e.Op
	}
	return out
}

const ns = "bhagavad_gita_"

type fixture struct {
	cache Cache[json.RawMessage]
	mp    *flakyProvider
	clk   *clock
	hooks *recordingHooks
}

func newFixture(t *testing.T, optsOpt func(*Options[json.RawMessage])) fixture {
	t.Helper()
	f := fixture{mp: newFlaky(), clk: newClock(), hooks: &recordingHooks{}}
	opts := Options[json.RawMessage]{
		Namespace: ns,
		Provider:  f.mp,
		Codec:     c.JSON[json.RawMessage]{},
		Hooks:     f.hooks,
		Now:       f.clk.Now,
	}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	cc, err := New[json.RawMessage](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close(context.Background()) })
	f.cache = cc
	return f
}

var payload = json.RawMessage(`{"BhagavadGitaChapter":[{"verse":1,"text":"धर्मक्षेत्रे कुरुक्षेत्रे"}]}`)

func TestNewValidatesOptions(t *testing.T) {
	mp := memory.New()
	cases := map[string]Options[json.RawMessage]{
		"no provider":  {Namespace: ns, Codec: c.JSON[json.RawMessage]{}},
		"no codec":     {Namespace: ns, Provider: mp},
		"no namespace": {Provider: mp, Codec: c.JSON[json.RawMessage]{}},
		"negative ttl": {Namespace: ns, Provider: mp, Codec: c.JSON[json.RawMessage]{}, TTL: -time.Second},
	}
	for name, opts := range cases {
		if _, err := New[json.RawMessage](opts); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

// TestSetGetFlow verifies miss, write, hit, and the stored envelope layout.
func TestSetGetFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	if _, ok := f.cache.Get(ctx, "chapter_1"); ok {
		t.Fatalf("expected miss on empty store")
	}

	f.cache.Set(ctx, "chapter_1", payload)

	got, ok := f.cache.Get(ctx, "chapter_1")
	if !ok || string(got) != string(payload) {
		t.Fatalf("Get after Set: ok=%v got=%s", ok, got)
	}

	raw, ok, _ := f.mp.Memory.Get(ctx, ns+"chapter_1")
	if !ok {
		t.Fatalf("entry not stored under namespaced key")
	}
	var env struct {
		Data      json.RawMessage `json:"data"`
		Timestamp int64           `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("stored entry is not a JSON envelope: %v (%s)", err, raw)
	}
	if env.Timestamp != f.clk.Now().UnixMilli() {
		t.Fatalf("timestamp=%d want %d", env.Timestamp, f.clk.Now().UnixMilli())
	}
	if string(env.Data) != string(payload) {
		t.Fatalf("data=%s", env.Data)
	}
	if len(f.hooks.errOps()) != 0 {
		t.Fatalf("unexpected cache errors: %v", f.hooks.errOps())
	}
}

// TestExpiry checks the TTL boundary and that an expired entry is deleted on read.
func TestExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.cache.Set(ctx, "chapter_2", payload)

	f.clk.Advance(DefaultTTL)
	if _, ok := f.cache.Get(ctx, "chapter_2"); !ok {
		t.Fatalf("entry exactly TTL old should still be served")
	}

	f.clk.Advance(time.Millisecond)
	if _, ok := f.cache.Get(ctx, "chapter_2"); ok {
		t.Fatalf("expired entry must not be served")
	}
	if _, ok, _ := f.mp.Memory.Get(ctx, ns+"chapter_2"); ok {
		t.Fatalf("expired entry was not removed")
	}
	if len(f.hooks.expired) != 1 || f.hooks.expired[0] != ns+"chapter_2" {
		t.Fatalf("expected one Expired hook, got %v", f.hooks.expired)
	}
}

func TestCustomTTL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(o *Options[json.RawMessage]) { o.TTL = time.Minute })

	f.cache.Set(ctx, "k", payload)
	f.clk.Advance(time.Minute + time.Millisecond)
	if _, ok := f.cache.Get(ctx, "k"); ok {
		t.Fatalf("entry should expire after custom TTL")
	}
}

// TestMalformedEntryIsMiss injects foreign bytes under the namespace.
func TestMalformedEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_ = f.mp.Memory.Set(ctx, ns+"chapter_3", []byte("not-json"))
	if _, ok := f.cache.Get(ctx, "chapter_3"); ok {
		t.Fatalf("malformed entry must be a miss")
	}
	ops := f.hooks.errOps()
	if len(ops) != 1 || ops[0] != OpDecode {
		t.Fatalf("expected one decode error, got %v", ops)
	}
	if !errors.Is(f.hooks.errs[0], ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", f.hooks.errs[0])
	}

	// valid envelope, payload the codec rejects
	bad, _ := wire.Encode(f.clk.Now().UnixMilli(), []byte{0xff, 0x00})
	_ = f.mp.Memory.Set(ctx, ns+"chapter_4", bad)
	if _, ok := f.cache.Get(ctx, "chapter_4"); ok {
		t.Fatalf("undecodable payload must be a miss")
	}

	// a later Set repairs the key
	f.cache.Set(ctx, "chapter_3", payload)
	if _, ok := f.cache.Get(ctx, "chapter_3"); !ok {
		t.Fatalf("Set should overwrite a malformed entry")
	}
}

// TestFailuresAreSwallowed verifies substrate errors never reach the caller.
func TestFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	boom := errors.New("quota exceeded")

	f.mp.failSet = boom
	f.cache.Set(ctx, "chapter_5", payload) // must not panic or block
	f.mp.failSet = nil

	f.mp.failGet = boom
	if _, ok := f.cache.Get(ctx, "chapter_5"); ok {
		t.Fatalf("Get with failing provider must miss")
	}
	f.mp.failGet = nil

	f.mp.failKeys = boom
	if n := f.cache.Clear(ctx, ""); n != 0 {
		t.Fatalf("Clear with failing Keys removed %d", n)
	}
	f.mp.failKeys = nil

	ops := f.hooks.errOps()
	want := []string{OpSet, OpGet, OpKeys}
	if strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Fatalf("ops=%v want %v", ops, want)
	}
	for _, e := range f.hooks.errs {
		if !errors.Is(e, boom) {
			t.Fatalf("CacheError should unwrap to the provider error, got %v", e)
		}
	}
}

func TestExpiredDeleteFailureStillMisses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.cache.Set(ctx, "chapter_6", payload)
	f.clk.Advance(DefaultTTL + time.Second)

	f.mp.failDel = errors.New("read-only")
	if _, ok := f.cache.Get(ctx, "chapter_6"); ok {
		t.Fatalf("expired entry must not be served even if delete fails")
	}
	if ops := f.hooks.errOps(); len(ops) != 1 || ops[0] != OpDel {
		t.Fatalf("expected del error, got %v", ops)
	}
}

// TestClearLeavesForeignKeys checks prefix isolation.
func TestClearLeavesForeignKeys(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	for _, k := range []string{"chapter_1", "chapter_2", "chapter_18", "settings"} {
		f.cache.Set(ctx, k, payload)
	}
	_ = f.mp.Memory.Set(ctx, "theme", []byte("dark"))
	_ = f.mp.Memory.Set(ctx, "other_app_chapter_1", []byte("x"))

	if n := f.cache.Clear(ctx, "chapter_"); n != 3 {
		t.Fatalf("Clear(chapter_) removed %d, want 3", n)
	}
	if _, ok := f.cache.Get(ctx, "settings"); !ok {
		t.Fatalf("settings should survive a chapter_ clear")
	}

	if n := f.cache.Clear(ctx, ""); n != 1 {
		t.Fatalf("Clear(\"\") removed %d, want 1", n)
	}
	for _, k := range []string{"theme", "other_app_chapter_1"} {
		if _, ok, _ := f.mp.Memory.Get(ctx, k); !ok {
			t.Fatalf("foreign key %q was removed", k)
		}
	}
	if f.mp.Len() != 2 {
		t.Fatalf("expected only foreign keys left, len=%d", f.mp.Len())
	}
}

func TestPruneRemovesExpiredAndCorrupt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.cache.Set(ctx, "old", payload)
	f.clk.Advance(DefaultTTL + time.Second)
	f.cache.Set(ctx, "fresh", payload)
	_ = f.mp.Memory.Set(ctx, ns+"garbage", []byte("{"))
	_ = f.mp.Memory.Set(ctx, "theme", []byte("{"))

	if n := f.cache.Prune(ctx); n != 2 {
		t.Fatalf("Prune removed %d, want 2", n)
	}
	if _, ok := f.cache.Get(ctx, "fresh"); !ok {
		t.Fatalf("fresh entry must survive Prune")
	}
	if _, ok, _ := f.mp.Memory.Get(ctx, "theme"); !ok {
		t.Fatalf("Prune must not touch keys outside the namespace")
	}
}

func TestPruneReportsOnlyRemovals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.cache.Set(ctx, "chapter_1", payload)
	for i := 0; i < 3; i++ {
		if n := f.cache.Prune(ctx); n != 0 {
			t.Fatalf("Prune removed %d fresh entries", n)
		}
	}
	f.hooks.mu.Lock()
	quiet := len(f.hooks.cleared)
	f.hooks.mu.Unlock()
	if quiet != 0 {
		t.Fatalf("Cleared fired %d times for empty prunes", quiet)
	}

	f.clk.Advance(DefaultTTL + time.Second)
	if n := f.cache.Prune(ctx); n != 1 {
		t.Fatalf("Prune removed %d, want 1", n)
	}
	f.hooks.mu.Lock()
	defer f.hooks.mu.Unlock()
	if len(f.hooks.cleared) != 1 || f.hooks.cleared[0] != 1 {
		t.Fatalf("cleared events = %v, want [1]", f.hooks.cleared)
	}
}

func TestDisabledIsInert(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(o *Options[json.RawMessage]) { o.Disabled = true })

	if f.cache.Enabled() {
		t.Fatalf("expected disabled cache")
	}
	f.cache.Set(ctx, "chapter_1", payload)
	if f.mp.Len() != 0 {
		t.Fatalf("disabled cache wrote to provider")
	}
	if _, ok := f.cache.Get(ctx, "chapter_1"); ok {
		t.Fatalf("disabled cache returned a hit")
	}
}

func TestBinaryCodecRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(o *Options[json.RawMessage]) { o.Codec = c.Msgpack[json.RawMessage]{} })

	f.cache.Set(ctx, "chapter_7", payload)
	got, ok := f.cache.Get(ctx, "chapter_7")
	if !ok || string(got) != string(payload) {
		t.Fatalf("msgpack round trip: ok=%v got=%s", ok, got)
	}
}

func TestSweepPrunesInBackground(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(o *Options[json.RawMessage]) { o.SweepInterval = 5 * time.Millisecond })

	f.cache.Set(ctx, "chapter_8", payload)
	f.clk.Advance(DefaultTTL + time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.mp.Len() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("sweeper did not remove the expired entry")
}

func TestCloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(o *Options[json.RawMessage]) { o.SweepInterval = time.Hour })
	if err := f.cache.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := f.cache.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
