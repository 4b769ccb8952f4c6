// Package cli implements the diceplan command-line interface.
//
// # Commands
//
//   - solve: search for the cheapest plan simulating one die with another
//   - naive: print the naive plan and its cost
//   - render: draw the best plan as DOT, SVG, PNG or PDF
//   - serve: run the HTTP API
//   - cache: inspect or clear the local result cache
//
// Defaults come from ./diceplan.toml, or the file given with --config.
// Flags override the file.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/diceplan/internal/config"
	"github.com/matzehuels/diceplan/pkg/buildinfo"
	"github.com/matzehuels/diceplan/pkg/cache"
	"github.com/matzehuels/diceplan/pkg/dump"
	"github.com/matzehuels/diceplan/pkg/errors"
	"github.com/matzehuels/diceplan/pkg/observability"
	"github.com/matzehuels/diceplan/pkg/pipeline"
	"github.com/matzehuels/diceplan/pkg/search"
)

// appName is used for the binary, cache directory and completion scripts.
const appName = "diceplan"

// tuiReportEvery is the progress interval used by the live monitor when
// none is configured.
const tuiReportEvery = 10_000

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "diceplan finds the cheapest way to simulate one fair die with another",
		Long: `diceplan searches for the plan with the lowest expected number of throws
that simulates a fair die with T sides using only a fair die with S sides.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			observability.SetHeuristicHooks(observability.NewLogHooks(c.Logger))
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file, TOML or YAML (default ./"+config.DefaultFile+" if present)")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.naiveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or ./diceplan.toml when it exists, on top of
// the built-in defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	return config.LoadWithDefaults(config.DefaultFile)
}

// =============================================================================
// Search Flags
// =============================================================================

// searchFlags are the flags shared by every command that runs a search.
type searchFlags struct {
	source        int
	target        int
	heuristic     string
	maxIterations int
	reportEvery   int
	acceptTies    bool
	refresh       bool
	cache         string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.source, "source", "s", pipeline.DefaultSource, "sides of the die that is thrown")
	fs.IntVarP(&f.target, "target", "t", pipeline.DefaultTarget, "sides of the die to simulate")
	fs.StringVar(&f.heuristic, "heuristic", pipeline.DefaultHeuristic, "search heuristic: zero, naive")
	fs.IntVar(&f.maxIterations, "max-iterations", 0, "stop after N iterations (0 searches exhaustively)")
	fs.IntVar(&f.reportEvery, "report-every", search.DefaultReportEvery, "report progress every N iterations")
	fs.BoolVar(&f.acceptTies, "accept-ties", false, "let equally cheap plans replace the best one")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	fs.StringVar(&f.cache, "cache", "", "cache backend: none, file, redis (default from config)")
}

// overlay copies the flags the user set onto cfg and validates the result.
func (f *searchFlags) overlay(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("source") {
		cfg.Search.Source = f.source
	}
	if fs.Changed("target") {
		cfg.Search.Target = f.target
	}
	if fs.Changed("heuristic") {
		cfg.Search.Heuristic = f.heuristic
	}
	if fs.Changed("max-iterations") {
		cfg.Search.MaxIterations = f.maxIterations
	}
	if fs.Changed("report-every") {
		cfg.Search.ReportEvery = f.reportEvery
	}
	if fs.Changed("accept-ties") {
		cfg.Search.AcceptTies = f.acceptTies
	}
	if fs.Changed("cache") {
		cfg.Cache.Backend = f.cache
	}
	return cfg.Validate()
}

func (f *searchFlags) options(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Source:        cfg.Search.Source,
		Target:        cfg.Search.Target,
		Heuristic:     cfg.Search.Heuristic,
		MaxIterations: cfg.Search.MaxIterations,
		AcceptTies:    cfg.Search.AcceptTies,
		ReportEvery:   cfg.Search.ReportEvery,
		Refresh:       f.refresh,
	}
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache. The
// returned func releases the cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, func(), error) {
	store, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.TTL = cfg.Cache.TTL.Duration
	return runner, func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("close cache", "err", err)
		}
	}, nil
}

func openCache(ctx context.Context, cc config.CacheConfig) (cache.Cache, error) {
	switch cc.Backend {
	case config.CacheFile:
		dir := cc.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cc.Redis)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeBackend, err, "open redis cache")
		}
		return rc, nil
	default:
		return cache.NewNullCache(), nil
	}
}

// openDump builds the configured dump sinks. It returns a nil sink when
// none is configured. The returned func closes any database connection.
func openDump(ctx context.Context, dc config.DumpConfig) (dump.Sink, func(), error) {
	var (
		sinks   []dump.Sink
		closers []func()
	)
	if dc.File != "" {
		sinks = append(sinks, dump.NewFileSink(dc.File))
	}
	if dc.Mongo.URI != "" {
		ms, err := dump.NewMongoSink(ctx, dc.Mongo)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeBackend, err, "open mongo dump")
		}
		sinks = append(sinks, ms)
		closers = append(closers, func() { _ = ms.Close(context.WithoutCancel(ctx)) })
	}

	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}
	switch len(sinks) {
	case 0:
		return nil, closeAll, nil
	case 1:
		return sinks[0], closeAll, nil
	default:
		return dump.Multi(sinks...), closeAll, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the XDG cache directory (~/.cache/diceplan/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
