// Package heuristic prices pending plan states by solving them with a
// cheaper strategy and remembering the answer.
//
// A [Cache] wraps a [Solver], any function that turns a state into a fully
// resolved plan. The first estimate for a state runs the solver and takes
// the plan's exact cost; later estimates for the same state are served
// from memory. With [WithStore] the estimates also survive the process:
//
//	store, _ := cache.NewFileCache(dir)
//	h := heuristic.New(search.NaiveSolver, heuristic.WithStore(store), heuristic.WithName("naive"))
//	res, _ := search.Run(ctx, start, search.Options{Heuristic: h})
//
// The store is an optimization only. Read and write failures are reported
// to [observability.HeuristicHooks] and otherwise ignored.
package heuristic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/diceplan/pkg/cache"
	"github.com/matzehuels/diceplan/pkg/observability"
	"github.com/matzehuels/diceplan/pkg/plan"
)

// Solver produces a resolved plan for a state.
type Solver interface {
	Solve(state plan.State) *plan.Graph
}

// SolverFunc adapts a plain function to [Solver].
type SolverFunc func(plan.State) *plan.Graph

// Solve calls f(state).
func (f SolverFunc) Solve(state plan.State) *plan.Graph { return f(state) }

// Cache memoizes solver costs per state. It implements [plan.Heuristic].
// A Cache is not safe for concurrent use.
type Cache struct {
	solver Solver
	memo   map[plan.State]float64

	ctx   context.Context
	name  string
	store cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
	hooks observability.HeuristicHooks
}

// Option configures a [Cache].
type Option func(*Cache)

// WithStore persists estimates in store.
func WithStore(store cache.Cache) Option {
	return func(c *Cache) { c.store = store }
}

// WithKeyer sets the key scheme used for the store.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Cache) { c.keyer = k }
}

// WithName sets the solver name that keys stored estimates. Caches with
// different solvers must use different names.
func WithName(name string) Option {
	return func(c *Cache) { c.name = name }
}

// WithTTL sets the expiry of stored estimates. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithHooks reports hits, misses and store failures to h instead of the
// globally registered hooks.
func WithHooks(h observability.HeuristicHooks) Option {
	return func(c *Cache) { c.hooks = h }
}

// WithContext sets the context used for store operations.
func WithContext(ctx context.Context) Option {
	return func(c *Cache) { c.ctx = ctx }
}

// New returns an empty cache over solver.
func New(solver Solver, opts ...Option) *Cache {
	c := &Cache{
		solver: solver,
		memo:   make(map[plan.State]float64),
		ctx:    context.Background(),
		name:   "solver",
		store:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hooks == nil {
		c.hooks = observability.Heuristic()
	}
	return c
}

// Estimate returns the exact cost of the solver's plan for state. The
// solver runs at most once per state; it panics if the solver returns a
// plan that still has pending states.
func (c *Cache) Estimate(state plan.State) float64 {
	if v, ok := c.memo[state]; ok {
		c.hooks.OnHeuristicHit(c.ctx, "memory")
		return v
	}
	if v, ok := c.load(state); ok {
		c.memo[state] = v
		c.hooks.OnHeuristicHit(c.ctx, "store")
		return v
	}

	began := time.Now()
	g := c.solver.Solve(state)
	v, ok := g.ExactCost()
	if !ok {
		panic(fmt.Sprintf("heuristic: solver returned an unresolved plan for %s", state))
	}
	c.hooks.OnHeuristicMiss(c.ctx, time.Since(began))

	c.memo[state] = v
	c.save(state, v)
	return v
}

// Len returns the number of states with a memoized estimate.
func (c *Cache) Len() int { return len(c.memo) }

func (c *Cache) key(s plan.State) string {
	return c.keyer.HeuristicKey(c.name, s.Source, s.Target, s.Units)
}

func (c *Cache) load(state plan.State) (float64, bool) {
	data, ok, err := c.store.Get(c.ctx, c.key(state))
	if err != nil {
		c.hooks.OnStoreError(c.ctx, "get", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		c.hooks.OnStoreError(c.ctx, "decode", err)
		return 0, false
	}
	return v, true
}

func (c *Cache) save(state plan.State, v float64) {
	data, err := json.Marshal(v)
	if err != nil {
		// Non-finite costs cannot be encoded; keep them in memory only.
		c.hooks.OnStoreError(c.ctx, "encode", err)
		return
	}
	if err := c.store.Set(c.ctx, c.key(state), data, c.ttl); err != nil {
		c.hooks.OnStoreError(c.ctx, "set", err)
	}
}

var _ plan.Heuristic = (*Cache)(nil)
