package heuristic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/diceplan/pkg/cache"
	"github.com/matzehuels/diceplan/pkg/observability"
	"github.com/matzehuels/diceplan/pkg/plan"
)

// throwThenMap throws once and maps all target outcomes, which resolves
// any state with units*source == target.
func throwThenMap(s plan.State) *plan.Graph {
	g := plan.New(s)
	if s.Solved() {
		return g
	}
	if err := g.Apply(s, plan.Throw()); err != nil {
		panic(err)
	}
	next := plan.State{Source: s.Source, Target: s.Target, Units: s.Units * s.Source}
	if err := g.Apply(next, plan.Map(s.Target)); err != nil {
		panic(err)
	}
	return g
}

type countingHooks struct {
	observability.NoopHeuristicHooks
	hits, misses, storeErrors int
	sources                   []string
}

func (h *countingHooks) OnHeuristicHit(_ context.Context, source string) {
	h.hits++
	h.sources = append(h.sources, source)
}
func (h *countingHooks) OnHeuristicMiss(context.Context, time.Duration) { h.misses++ }
func (h *countingHooks) OnStoreError(context.Context, string, error)    { h.storeErrors++ }

func TestEstimateMemoizes(t *testing.T) {
	calls := map[plan.State]int{}
	c := New(SolverFunc(func(s plan.State) *plan.Graph {
		calls[s]++
		return plan.New(s)
	}))

	a := plan.State{Source: 1, Target: 1, Units: 1}
	b := plan.State{Source: 2, Target: 1, Units: 1}
	for range 2 {
		if got := c.Estimate(a); got != 0 {
			t.Errorf("Estimate(%v) = %v, want 0", a, got)
		}
		if got := c.Estimate(b); got != 0 {
			t.Errorf("Estimate(%v) = %v, want 0", b, got)
		}
	}

	if calls[a] != 1 || calls[b] != 1 {
		t.Errorf("solver calls = %v, want one per state", calls)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestEstimateUsesExactCost(t *testing.T) {
	c := New(SolverFunc(throwThenMap))
	got := c.Estimate(plan.NewState(2, 2))
	if got != 1 {
		t.Errorf("Estimate = %v, want 1", got)
	}
}

func TestEstimatePanicsOnUnresolvedPlan(t *testing.T) {
	c := New(SolverFunc(plan.New))
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unresolved solver plan")
		}
	}()
	c.Estimate(plan.NewState(2, 3))
}

func TestEstimatePersistsToStore(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	s := plan.NewState(2, 2)

	solved := 0
	solver := SolverFunc(func(s plan.State) *plan.Graph {
		solved++
		return throwThenMap(s)
	})

	first := New(solver, WithStore(store), WithName("test"))
	if got := first.Estimate(s); got != 1 {
		t.Fatalf("first Estimate = %v, want 1", got)
	}

	hooks := &countingHooks{}
	second := New(solver, WithStore(store), WithName("test"), WithHooks(hooks))
	if got := second.Estimate(s); got != 1 {
		t.Fatalf("second Estimate = %v, want 1", got)
	}
	second.Estimate(s)

	if solved != 1 {
		t.Errorf("solver ran %d times, want 1", solved)
	}
	if hooks.hits != 2 || hooks.misses != 0 {
		t.Errorf("hits=%d misses=%d, want 2 and 0", hooks.hits, hooks.misses)
	}
	if len(hooks.sources) != 2 || hooks.sources[0] != "store" || hooks.sources[1] != "memory" {
		t.Errorf("hit sources = %v, want [store memory]", hooks.sources)
	}

	other := New(solver, WithStore(store), WithName("other"))
	other.Estimate(s)
	if solved != 2 {
		t.Errorf("differently named cache should not share entries")
	}
}

type failingStore struct{ cache.NullCache }

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}

func TestStoreFailuresAreIgnored(t *testing.T) {
	hooks := &countingHooks{}
	c := New(SolverFunc(throwThenMap), WithStore(failingStore{}), WithHooks(hooks))

	if got := c.Estimate(plan.NewState(2, 2)); got != 1 {
		t.Errorf("Estimate = %v, want 1", got)
	}
	if hooks.storeErrors != 2 {
		t.Errorf("store errors = %d, want 2 (get and set)", hooks.storeErrors)
	}
	if hooks.misses != 1 {
		t.Errorf("misses = %d, want 1", hooks.misses)
	}
}
