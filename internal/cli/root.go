package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/gitacache/fetch"
	"github.com/unkn0wn-root/gitacache/gita"
	"github.com/unkn0wn-root/gitacache/internal/build"
	"github.com/unkn0wn-root/gitacache/internal/config"
	"github.com/unkn0wn-root/gitacache/internal/render"
)

// Options wire a root command to its surroundings. Zero values use the
// process streams and an HTTP fetcher.
type Options struct {
	Out     io.Writer
	Err     io.Writer
	Fetcher fetch.Fetcher
}

type flags struct {
	backend    string
	cachePath  string
	redisAddr  string
	baseURL    string
	logLevel   string
	logBackend string
	codec      string
}

type app struct {
	opts  Options
	flags flags
}

// NewRootCmd builds the gita command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "gita",
		Short: "Read the Bhagavad Gita from the terminal.",
		Long: `gita reads chapters and verses of the Bhagavad Gita from a remote JSON
source, one file per chapter, and keeps each chapter in a local cache for 24
hours so repeated reads work offline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.backend, "backend", "", "cache backend: memory, sqlite, redis or bigcache (env GITA_CACHE_BACKEND)")
	pf.StringVar(&a.flags.cachePath, "cache-path", "", "sqlite cache file (env GITA_CACHE_PATH)")
	pf.StringVar(&a.flags.redisAddr, "redis-addr", "", "redis address for the redis backend (env GITA_REDIS_ADDR)")
	pf.StringVar(&a.flags.baseURL, "base-url", "", "base URL of the chapter files (env GITA_BASE_URL)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error (env GITA_LOG_LEVEL)")
	pf.StringVar(&a.flags.logBackend, "log-backend", "", "zap, logrus or slog (env GITA_LOG_BACKEND)")
	pf.StringVar(&a.flags.codec, "codec", "", "cache payload codec: json, msgpack or cbor (env GITA_CACHE_CODEC)")

	root.AddCommand(
		a.chaptersCmd(),
		a.chapterCmd(),
		a.verseCmd(),
		a.cacheCmd(),
		versionCmd(),
	)
	return root
}

// Execute runs the CLI against the process environment and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd(Options{})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gita:", Describe(err))
		return 1
	}
	return 0
}

// Describe turns a command error into the one-line message shown to users.
func Describe(err error) string {
	var fe *gita.FetchError
	if errors.As(err, &fe) {
		return fe.Error() + "; check your connection and try again"
	}
	var pe *gita.ParseError
	if errors.As(err, &pe) {
		return pe.Error() + "; the source may be temporarily unavailable, try again later"
	}
	return err.Error()
}

// config loads the environment and applies the flags that were set.
func (a *app) config(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("backend", &cfg.Backend, a.flags.backend)
	set("cache-path", &cfg.CachePath, a.flags.cachePath)
	set("redis-addr", &cfg.RedisAddr, a.flags.redisAddr)
	set("base-url", &cfg.BaseURL, a.flags.baseURL)
	set("log-level", &cfg.LogLevel, a.flags.logLevel)
	set("log-backend", &cfg.LogBackend, a.flags.logBackend)
	set("codec", &cfg.Codec, a.flags.codec)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// with opens the dependencies for one command run and closes them after.
func (a *app) with(cmd *cobra.Command, fn func(context.Context, *deps) error) (err error) {
	cfg, err := a.config(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := openDeps(ctx, cfg, a.opts.Err, a.opts.Fetcher)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, d)
}

func (a *app) renderer() *render.Renderer {
	return render.New(a.opts.Out, 80)
}

func (a *app) chaptersCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "chapters",
		Short: "List the chapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.with(cmd, func(_ context.Context, d *deps) error {
				return a.renderer().Chapters(gita.FilterChapters(d.lib.GetAllChapters(), search))
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name, Sanskrit name or number")
	return cmd
}

func (a *app) chapterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chapter <number>",
		Short: "Show a chapter and the verses it contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseNumber("chapter", args[0])
			if err != nil {
				return err
			}
			return a.with(cmd, func(ctx context.Context, d *deps) error {
				info, err := chapterInfo(d.lib, n)
				if err != nil {
					return err
				}
				verses, err := d.lib.VerseNumbers(ctx, n)
				if err != nil {
					return err
				}
				return a.renderer().Chapter(info, verses)
			})
		},
	}
}

func (a *app) verseCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "verse <chapter> <verse>",
		Short: "Show one verse",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseNumber("chapter", args[0])
			if err != nil {
				return err
			}
			v, err := parseNumber("verse", args[1])
			if err != nil {
				return err
			}
			return a.with(cmd, func(ctx context.Context, d *deps) error {
				info, err := chapterInfo(d.lib, c)
				if err != nil {
					return err
				}
				verse, err := d.lib.GetVerse(ctx, c, v)
				if err != nil {
					return err
				}
				if raw {
					_, err := fmt.Fprintln(a.opts.Out, string(verse.Raw()))
					return err
				}
				pos := gita.Position{Chapter: c, Verse: v}
				var nav render.Nav
				nav.Prev, nav.HasPrev = d.lib.Previous(pos)
				nav.Next, nav.HasNext = d.lib.Next(pos)
				return a.renderer().Verse(info, verse, nav)
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "json", false, "print the verse record as JSON")
	return cmd
}

func (a *app) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the chapter cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached chapter",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.with(cmd, func(ctx context.Context, d *deps) error {
					n := d.lib.ClearCache(ctx)
					_, err := fmt.Fprintf(a.opts.Out, "removed %d cached entries\n", n)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Remove expired and unreadable cache entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.with(cmd, func(ctx context.Context, d *deps) error {
					n := d.cache.Prune(ctx)
					_, err := fmt.Fprintf(a.opts.Out, "pruned %d cache entries\n", n)
					return err
				})
			},
		},
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), build.Banner())
			return err
		},
	}
}

func parseNumber(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", what, s)
	}
	return n, nil
}

func chapterInfo(lib *gita.Library, n int) (gita.ChapterInfo, error) {
	info, ok := lib.GetChapterInfo(n)
	if !ok {
		return gita.ChapterInfo{}, fmt.Errorf("chapter %d does not exist (1-%d)", n, gita.ChapterCount)
	}
	return info, nil
}
