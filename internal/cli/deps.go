package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdslog "log/slog"
	"os"
	"path/filepath"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/gitacache"
	"github.com/unkn0wn-root/gitacache/codec"
	"github.com/unkn0wn-root/gitacache/fetch"
	"github.com/unkn0wn-root/gitacache/gita"
	asynchook "github.com/unkn0wn-root/gitacache/hooks/async"
	sloghooks "github.com/unkn0wn-root/gitacache/hooks/slog"
	"github.com/unkn0wn-root/gitacache/internal/config"
	logruslog "github.com/unkn0wn-root/gitacache/log/logrus"
	sloglog "github.com/unkn0wn-root/gitacache/log/slog"
	zaplog "github.com/unkn0wn-root/gitacache/log/zap"
	pr "github.com/unkn0wn-root/gitacache/provider"
	"github.com/unkn0wn-root/gitacache/provider/bigcache"
	"github.com/unkn0wn-root/gitacache/provider/memory"
	redisprov "github.com/unkn0wn-root/gitacache/provider/redis"
	"github.com/unkn0wn-root/gitacache/provider/sqlite"
)

const component = "gita"

// deps is everything a command needs, opened from one Config.
type deps struct {
	lib   *gita.Library
	cache gitacache.Cache[json.RawMessage]
	log   gitacache.Logger

	closers []func(context.Context) error
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close(ctx context.Context) error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	d.closers = nil
	return first
}

func openDeps(ctx context.Context, cfg config.Config, logOut io.Writer, fetcher fetch.Fetcher) (*deps, error) {
	d := &deps{}
	fail := func(err error) (*deps, error) {
		_ = d.Close(ctx)
		return nil, err
	}

	log, syncLog, err := newLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}
	d.log = log
	d.closers = append(d.closers, func(context.Context) error { syncLog(); return nil })

	hooks := asynchook.New(newHookSink(cfg, logOut), 1, 256)
	d.closers = append(d.closers, func(context.Context) error { hooks.Close(); return nil })

	p, err := newProvider(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cd, err := newCodec(cfg)
	if err != nil {
		_ = p.Close(ctx)
		return fail(err)
	}
	cache, err := gitacache.New[json.RawMessage](gitacache.Options[json.RawMessage]{
		Namespace: cfg.Namespace,
		Provider:  p,
		Codec:     cd,
		TTL:       cfg.TTL,
		Logger:    log,
		Hooks:     hooks,
	})
	if err != nil {
		_ = p.Close(ctx)
		return fail(err)
	}
	d.cache = cache
	d.closers = append(d.closers, cache.Close)

	if fetcher == nil {
		fetcher = fetch.NewHTTP(fetch.Config{Timeout: cfg.HTTPTimeout, UserAgent: cfg.UserAgent})
	}
	lib, err := gita.New(gita.Options{
		BaseURL: cfg.BaseURL,
		Fetcher: fetcher,
		Cache:   cache,
		Logger:  log,
	})
	if err != nil {
		return fail(err)
	}
	d.lib = lib
	return d, nil
}

func newLogger(cfg config.Config, w io.Writer) (gitacache.Logger, func(), error) {
	switch cfg.LogBackend {
	case config.LogLogrus:
		lvl, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(lvl)
		return logruslog.New(l, component), func() {}, nil
	case config.LogSlog:
		lvl, err := slogLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		l := stdslog.New(stdslog.NewTextHandler(w, &stdslog.HandlerOptions{Level: lvl}))
		return sloglog.New(l, component), func() {}, nil
	default:
		lvl, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		l := zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
		return zaplog.New(l, component), func() { _ = l.Sync() }, nil
	}
}

// newHookSink logs cache events through slog regardless of the log backend,
// with keys hashed and expiry events sampled.
func newHookSink(cfg config.Config, w io.Writer) gitacache.Hooks {
	lvl, err := slogLevel(cfg.LogLevel)
	if err != nil {
		lvl = stdslog.LevelWarn
	}
	l := stdslog.New(stdslog.NewTextHandler(w, &stdslog.HandlerOptions{Level: lvl}))
	every := uint64(1)
	if cfg.LogSample > 1 {
		every = uint64(cfg.LogSample)
	}
	return sloghooks.New(l, sloghooks.Options{ExpiredEvery: every, Redact: sloghooks.HashKey})
}

func slogLevel(s string) (stdslog.Level, error) {
	var lvl stdslog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

func newProvider(ctx context.Context, cfg config.Config, log gitacache.Logger) (pr.Provider, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendBigcache:
		return bigcache.New(bigcache.Config{LifeWindow: cfg.TTL})
	case config.BackendRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			// the cache fails soft; commands still work against the source
			log.Warn("redis unreachable", gitacache.Fields{"addr": cfg.RedisAddr, "err": err.Error()})
		}
		return redisprov.New(redisprov.Config{Client: client, CloseClient: true})
	default:
		path, err := cfg.ResolveCachePath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		return sqlite.Open(ctx, sqlite.Config{Path: path})
	}
}

// newCodec stores json payloads as they are: already compact, they land
// inline under "data". Other codecs re-encode and go under "bin".
func newCodec(cfg config.Config) (codec.Codec[json.RawMessage], error) {
	if cfg.Codec == "" || cfg.Codec == codec.NameJSON {
		var c codec.Codec[json.RawMessage] = codec.RawJSON{}
		if cfg.MaxDecode > 0 {
			c = codec.LimitCodec[json.RawMessage]{Inner: c, MaxDecode: cfg.MaxDecode}
		}
		return c, nil
	}
	return codec.ByName[json.RawMessage](cfg.Codec, cfg.MaxDecode)
}
