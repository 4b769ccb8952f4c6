package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/diceplan/pkg/divisor"
	"github.com/matzehuels/diceplan/pkg/dump"
	"github.com/matzehuels/diceplan/pkg/observability"
	"github.com/matzehuels/diceplan/pkg/plan"
)

// ErrInvalidStart is returned for start states the search cannot solve.
var ErrInvalidStart = errors.New("invalid start state")

// DefaultReportEvery is the default number of iterations between progress
// reports and dumps.
const DefaultReportEvery = 100_000

// cancelCheckEvery is the number of iterations between context checks.
const cancelCheckEvery = 1024

// Stop tells why a search ended.
type Stop int

const (
	// StopExhausted means every candidate was examined.
	StopExhausted Stop = iota
	// StopMaxIterations means the iteration limit was reached.
	StopMaxIterations
	// StopCanceled means the context was canceled.
	StopCanceled
)

func (s Stop) String() string {
	switch s {
	case StopExhausted:
		return "exhausted"
	case StopMaxIterations:
		return "max-iterations"
	case StopCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("Stop(%d)", int(s))
	}
}

// MarshalText encodes the stop reason by name.
func (s Stop) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Options configure a search. The zero value searches exhaustively with
// the zero heuristic.
type Options struct {
	// Heuristic prices pending states. Nil means [plan.Zero].
	Heuristic plan.Heuristic

	// MaxIterations stops the search after this many candidates. Zero
	// means no limit.
	MaxIterations int

	// ReportEvery is the number of iterations between progress reports.
	// Zero means DefaultReportEvery.
	ReportEvery int

	// Hooks receive progress events. Nil means the registered
	// [observability.Search] hooks.
	Hooks observability.SearchHooks

	// Dump, if set, receives the visited plans at every report and when
	// the search stops.
	Dump dump.Sink

	// Logger receives debug output for every step. Nil discards it.
	Logger *log.Logger

	// AcceptTies lets an exact plan replace the incumbent at equal cost
	// (within rounding), so the most recently found of several equally
	// cheap plans wins. Without it a replacement must be cheaper by more
	// than rounding error.
	AcceptTies bool
}

func (o Options) withDefaults() Options {
	if o.Heuristic == nil {
		o.Heuristic = plan.Zero
	}
	if o.ReportEvery <= 0 {
		o.ReportEvery = DefaultReportEvery
	}
	if o.Hooks == nil {
		o.Hooks = observability.Search()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Result is the outcome of a search.
type Result struct {
	RunID string `json:"run_id"`
	// Plan is the cheapest resolved plan found.
	Plan *plan.Graph `json:"-"`
	// Cost is the exact cost of Plan.
	Cost float64 `json:"cost"`
	// Initial is the cost of the naive plan the search started from.
	Initial      float64       `json:"initial_cost"`
	Iterations   int           `json:"iterations"`
	Visited      int           `json:"visited"`
	Improvements int           `json:"improvements"`
	Stop         Stop          `json:"stop"`
	Elapsed      time.Duration `json:"elapsed_ns"`
}

// Optimal reports whether the search was exhaustive, so that no plan
// cheaper than Plan exists.
func (r *Result) Optimal() bool { return r.Stop == StopExhausted }

// Validate checks that start can be searched: source at least 2, target
// and units at least 1.
func Validate(start plan.State) error {
	if start.Source < 2 || start.Target < 1 || start.Units < 1 {
		return fmt.Errorf("%w: source %d, target %d, units %d", ErrInvalidStart, start.Source, start.Target, start.Units)
	}
	return nil
}

// Run searches for the cheapest plan for start.
//
// Cancellation is not an error: a canceled search returns the best plan
// found so far with Stop set to StopCanceled.
func Run(ctx context.Context, start plan.State, opts Options) (*Result, error) {
	if err := Validate(start); err != nil {
		return nil, err
	}
	s := newSession(start, opts.withDefaults())
	return s.run(ctx), nil
}

// session is the state of one search run.
type session struct {
	opts   Options
	runID  string
	start  plan.State
	table  *divisor.Table
	queue  queue
	seen   map[string]struct{}
	began  time.Time
	logger *log.Logger

	best     *sharedPlan
	bestCost float64
	initial  float64

	iterations   int
	improvements int
}

func newSession(start plan.State, opts Options) *session {
	return &session{
		opts:  opts,
		runID: uuid.NewString(),
		start: start,
		table: divisor.NewTable(start.Target),
		seen:  make(map[string]struct{}),
	}
}

func (s *session) run(ctx context.Context) *Result {
	s.began = time.Now()
	s.logger = s.opts.Logger.With("run", s.runID)

	seed := share(plan.New(s.start))
	for _, a := range seed.graph.PossibleActions(s.table) {
		s.queue.push(candidate{plan: seed.acquire(), action: a})
	}

	naive := Naive(s.start)
	cost, ok := naive.ExactCost()
	if !ok {
		panic(fmt.Sprintf("search: naive plan for %s is unresolved", s.start))
	}
	s.best = share(naive).acquire()
	s.bestCost = cost
	s.initial = cost

	s.logger.Info("initial cost", "cost", cost)
	s.opts.Hooks.OnSearchStart(ctx, s.runID, s.start.String(), cost)

	stop := StopExhausted
	for s.queue.len() > 0 {
		if s.opts.MaxIterations > 0 && s.iterations >= s.opts.MaxIterations {
			stop = StopMaxIterations
			break
		}
		if s.iterations%cancelCheckEvery == 0 && ctx.Err() != nil {
			stop = StopCanceled
			break
		}

		s.step(ctx)
		s.iterations++

		if s.iterations%s.opts.ReportEvery == 0 {
			s.report(ctx)
		}
	}

	// The final dump must not be lost to the cancellation that stopped us.
	s.dump(context.WithoutCancel(ctx))
	s.opts.Hooks.OnSearchComplete(ctx, s.progress(), stop.String())

	return &Result{
		RunID:        s.runID,
		Plan:         s.best.graph,
		Cost:         s.bestCost,
		Initial:      s.initial,
		Iterations:   s.iterations,
		Visited:      len(s.seen),
		Improvements: s.improvements,
		Stop:         stop,
		Elapsed:      time.Since(s.began),
	}
}

// step applies the candidate at the head of the queue.
func (s *session) step(ctx context.Context) {
	c := s.queue.pop()
	g := c.plan.take()

	s.logger.Debug("apply", "move", c.action.Move, "state", c.action.State)
	if err := g.Apply(c.action.State, c.action.Move); err != nil {
		panic(fmt.Sprintf("search: candidate %s: %v", c.action, err))
	}
	cost := g.Cost(s.opts.Heuristic)
	s.logger.Debug("cost", "cost", cost)

	key := g.String()
	_, dup := s.seen[key]
	s.seen[key] = struct{}{}

	var p *sharedPlan
	if !dup && cost.Finite() && cost.Value <= s.bestCost {
		actions := g.PossibleActions(s.table)
		if len(actions) > 0 {
			p = share(g)
			for _, a := range actions {
				s.queue.push(candidate{plan: p.acquire(), action: a})
			}
		}
	}

	if s.improves(cost) {
		if p == nil {
			p = share(g)
		}
		s.best.release()
		s.best = p.acquire()
		s.bestCost = cost.Value
		s.improvements++

		s.logger.Info("found better plan", "cost", cost.Value, "iteration", s.iterations)
		s.opts.Hooks.OnImprovement(ctx, s.progress())
	}
}

// costEpsilon is the relative difference below which two plan costs are
// equal. Costs of equivalent plans evaluated in a different order differ
// in the last bits.
const costEpsilon = 1e-12

// improves reports whether an exact cost replaces the best one: strictly
// cheaper beyond rounding, or merely no worse with AcceptTies.
func (s *session) improves(c plan.Cost) bool {
	if c.Estimated || !c.Finite() {
		return false
	}
	if math.IsInf(s.bestCost, 1) {
		return true
	}
	tol := costEpsilon * max(1, math.Abs(s.bestCost))
	if s.opts.AcceptTies {
		return c.Value <= s.bestCost+tol
	}
	return c.Value < s.bestCost-tol
}

func (s *session) report(ctx context.Context) {
	p := s.progress()
	s.logger.Info("progress", "iteration", p.Iteration, "queue", p.Queue, "visited", p.Visited)
	s.opts.Hooks.OnProgress(ctx, p)
	s.dump(ctx)
}

func (s *session) dump(ctx context.Context) {
	if s.opts.Dump == nil {
		return
	}
	snap := dump.Snapshot{
		RunID:     s.runID,
		Iteration: s.iterations,
		Time:      time.Now(),
		Plans:     slices.Sorted(maps.Keys(s.seen)),
	}
	if err := s.opts.Dump.Dump(ctx, snap); err != nil {
		s.logger.Warn("dump failed", "err", err)
	}
}

func (s *session) progress() observability.Progress {
	return observability.Progress{
		RunID:     s.runID,
		Iteration: s.iterations,
		Queue:     s.queue.len(),
		Visited:   len(s.seen),
		BestCost:  s.bestCost,
		Elapsed:   time.Since(s.began),
	}
}
