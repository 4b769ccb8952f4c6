package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diceplan/pkg/cache"
	"github.com/matzehuels/diceplan/pkg/errors"
	"github.com/matzehuels/diceplan/pkg/heuristic"
	"github.com/matzehuels/diceplan/pkg/plan"
	"github.com/matzehuels/diceplan/pkg/search"
)

// TTLResult is how long finished results stay cached.
const TTLResult = 7 * 24 * time.Hour

// Runner encapsulates search execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options as long as the cache is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Limits errors.Limits
	// TTL is the expiry of stored heuristic estimates. Zero keeps them.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute validates opts and runs the search, serving exhaustive results
// from the cache when possible. A canceled search returns the best plan
// found so far; it is never cached.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(r.Limits); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	key := r.Keyer.ResultKey(opts.Source, opts.Target, cache.ResultKeyOpts{
		Heuristic:     opts.Heuristic,
		MaxIterations: opts.MaxIterations,
		AcceptTies:    opts.AcceptTies,
	})

	if !opts.Refresh {
		if res, ok := r.cached(ctx, key); ok {
			logger.Info("using cached result", "source", opts.Source, "target", opts.Target)
			return res, nil
		}
	}

	naive := r.Heuristic(ctx, HeuristicNaive)
	var h plan.Heuristic = plan.Zero
	if opts.Heuristic == HeuristicNaive {
		h = naive
	}

	sr, err := search.Run(ctx, opts.Start(), search.Options{
		Heuristic:     h,
		MaxIterations: opts.MaxIterations,
		ReportEvery:   opts.ReportEvery,
		Hooks:         opts.Hooks,
		Dump:          opts.Dump,
		Logger:        logger,
		AcceptTies:    opts.AcceptTies,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "search d%d with d%d", opts.Target, opts.Source)
	}

	res := newResult(opts, sr)
	res.HeuristicCost = naive.Estimate(opts.Start())

	logger.Info("search finished",
		"cost", res.Cost,
		"optimal", res.Optimal,
		"iterations", res.Stats.Iterations,
		"duration", res.Stats.Elapsed)

	if sr.Stop != search.StopCanceled {
		if data, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, key, data, TTLResult); err != nil {
				logger.Warn("cache result", "err", err)
			}
		}
	}
	return res, nil
}

func (r *Runner) cached(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil || res.Plan == nil {
		return nil, false
	}
	res.Cached = true
	return &res, true
}

// Heuristic returns the named heuristic backed by the runner's cache.
// Unknown names return the zero heuristic.
func (r *Runner) Heuristic(ctx context.Context, name string) plan.Heuristic {
	if name != HeuristicNaive {
		return plan.Zero
	}
	return heuristic.New(search.NaiveSolver,
		heuristic.WithName(HeuristicNaive),
		heuristic.WithStore(r.Cache),
		heuristic.WithKeyer(r.Keyer),
		heuristic.WithTTL(r.TTL),
		heuristic.WithContext(ctx))
}

// NaiveResult is the naive plan for a problem.
type NaiveResult struct {
	Source int         `json:"source"`
	Target int         `json:"target"`
	Plan   *plan.Graph `json:"plan"`
	Cost   float64     `json:"cost"`
}

// Naive builds the naive plan without searching.
func (r *Runner) Naive(source, target int) (*NaiveResult, error) {
	if err := errors.ValidateDice(source, target, r.Limits); err != nil {
		return nil, err
	}
	g := search.Naive(plan.NewState(source, target))
	cost, _ := g.ExactCost()
	return &NaiveResult{Source: source, Target: target, Plan: g, Cost: cost}, nil
}
