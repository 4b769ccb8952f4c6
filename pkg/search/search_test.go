package search

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/diceplan/pkg/divisor"
	"github.com/matzehuels/diceplan/pkg/dump"
	"github.com/matzehuels/diceplan/pkg/heuristic"
	"github.com/matzehuels/diceplan/pkg/observability"
	"github.com/matzehuels/diceplan/pkg/plan"
)

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNaive(t *testing.T) {
	tests := []struct {
		source, target int
		want           float64
	}{
		{2, 1, 0},
		{2, 2, 1},
		{2, 3, 8.0 / 3},
		{3, 2, 1.5},
		{2, 4, 2},
		{6, 2, 1},
		{2, 6, 11.0 / 3},
		{3, 4, 2.25},
		{2, 5, 3.6},
	}
	for _, tt := range tests {
		g := Naive(plan.NewState(tt.source, tt.target))
		if !g.Resolved() {
			t.Errorf("Naive(%d, %d) left pending states", tt.source, tt.target)
			continue
		}
		got, ok := g.ExactCost()
		if !ok || !approxEqual(got, tt.want) {
			t.Errorf("Naive(%d, %d) cost = %v (exact %v), want %v", tt.source, tt.target, got, ok, tt.want)
		}
	}
}

func TestNaiveSolver(t *testing.T) {
	s := plan.NewState(2, 3)
	if got, want := NaiveSolver.Solve(s).String(), Naive(s).String(); got != want {
		t.Errorf("NaiveSolver plan =\n%s\nwant\n%s", got, want)
	}
}

func TestRunExhaustive(t *testing.T) {
	tests := []struct {
		source, target int
		cost           float64
		iterations     int
		visited        int
	}{
		{2, 1, 0, 0, 0},
		{2, 2, 1, 3, 3},
		{2, 3, 8.0 / 3, 4, 4},
		{3, 2, 1.5, 3, 3},
		{2, 4, 2, 9, 9},
		{6, 2, 1, 7, 7},
		{3, 4, 2.25, 23, 22},
		{2, 6, 11.0 / 3, 101, 85},
	}
	for _, tt := range tests {
		start := plan.NewState(tt.source, tt.target)
		res, err := Run(context.Background(), start, Options{})
		if err != nil {
			t.Fatalf("Run(%v): %v", start, err)
		}
		if !res.Optimal() || res.Stop != StopExhausted {
			t.Errorf("Run(%d, %d) stop = %s, want exhausted", tt.source, tt.target, res.Stop)
		}
		if !approxEqual(res.Cost, tt.cost) {
			t.Errorf("Run(%d, %d) cost = %v, want %v", tt.source, tt.target, res.Cost, tt.cost)
		}
		if res.Cost > res.Initial {
			t.Errorf("Run(%d, %d) cost %v exceeds naive cost %v", tt.source, tt.target, res.Cost, res.Initial)
		}
		if res.Iterations != tt.iterations || res.Visited != tt.visited {
			t.Errorf("Run(%d, %d) iterations=%d visited=%d, want %d and %d",
				tt.source, tt.target, res.Iterations, res.Visited, tt.iterations, tt.visited)
		}
		exact, ok := res.Plan.ExactCost()
		if !ok || exact != res.Cost {
			t.Errorf("Run(%d, %d) plan cost = %v (exact %v), result says %v", tt.source, tt.target, exact, ok, res.Cost)
		}
		if res.RunID == "" {
			t.Error("RunID is empty")
		}
	}
}

// cheapestPlan enumerates every complete plan for start whose states hold
// at most maxUnits units and returns the lowest finite exact cost.
func cheapestPlan(t *testing.T, start plan.State, maxUnits int) float64 {
	t.Helper()
	table := divisor.NewTable(start.Target)
	best := math.Inf(1)

	var walk func(g *plan.Graph)
	walk = func(g *plan.Graph) {
		if g.Resolved() {
			if cost, ok := g.ExactCost(); ok && !math.IsInf(cost, 0) && !math.IsNaN(cost) {
				best = min(best, cost)
			}
			return
		}
		state := g.Pending()[0]
		for _, a := range g.PossibleActions(table) {
			if a.State != state {
				continue
			}
			if a.Move.Kind == plan.MoveThrow && state.Units*state.Source > maxUnits {
				continue
			}
			next := g.Clone()
			if err := next.Apply(a.State, a.Move); err != nil {
				t.Fatalf("apply %s: %v", a, err)
			}
			walk(next)
		}
	}
	walk(plan.New(start))
	return best
}

func TestRunMatchesEnumeration(t *testing.T) {
	tests := []struct {
		source, target, maxUnits int
	}{
		{2, 3, 8},
		{2, 4, 16},
		{2, 6, 16},
		{3, 4, 27},
		{6, 4, 36},
	}
	for _, tt := range tests {
		start := plan.NewState(tt.source, tt.target)
		want := cheapestPlan(t, start, tt.maxUnits)
		res, err := Run(context.Background(), start, Options{})
		if err != nil {
			t.Fatalf("Run(%v): %v", start, err)
		}
		if !approxEqual(res.Cost, want) {
			t.Errorf("Run(%d, %d) cost = %v, cheapest enumerated plan costs %v", tt.source, tt.target, res.Cost, want)
		}
	}
}

func TestRunIgnoresRoundingDifferences(t *testing.T) {
	// The naive d4-from-d6 plan and an equivalent one found later differ
	// only in the last bit of their cost.
	res, err := Run(context.Background(), plan.NewState(6, 4), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Improvements != 0 {
		t.Errorf("improvements = %d, want 0", res.Improvements)
	}
	if res.Cost != res.Initial {
		t.Errorf("cost = %v, want the naive cost %v", res.Cost, res.Initial)
	}
}

func TestRunInvalidStart(t *testing.T) {
	for _, s := range []plan.State{
		{Source: 1, Target: 6, Units: 1},
		{Source: 6, Target: 0, Units: 1},
		{Source: 6, Target: 6, Units: 0},
	} {
		if _, err := Run(context.Background(), s, Options{}); !errors.Is(err, ErrInvalidStart) {
			t.Errorf("Run(%+v) error = %v, want ErrInvalidStart", s, err)
		}
	}
}

func TestRunMaxIterations(t *testing.T) {
	res, err := Run(context.Background(), plan.NewState(2, 6), Options{MaxIterations: 10})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stop != StopMaxIterations || res.Optimal() {
		t.Errorf("stop = %s, want max-iterations", res.Stop)
	}
	if res.Iterations != 10 {
		t.Errorf("iterations = %d, want 10", res.Iterations)
	}
	if _, ok := res.Plan.ExactCost(); !ok {
		t.Error("best plan is not resolved")
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := plan.NewState(2, 6)
	res, err := Run(ctx, start, Options{})
	if err != nil {
		t.Fatalf("canceled run returned error %v", err)
	}
	if res.Stop != StopCanceled {
		t.Errorf("stop = %s, want canceled", res.Stop)
	}
	if res.Iterations != 0 {
		t.Errorf("iterations = %d, want 0", res.Iterations)
	}
	if res.Plan.String() != Naive(start).String() {
		t.Error("canceled run should return the naive plan")
	}
}

func TestRunAcceptTies(t *testing.T) {
	start := plan.NewState(2, 2)

	strict, err := Run(context.Background(), start, Options{})
	if err != nil {
		t.Fatal(err)
	}
	ties, err := Run(context.Background(), start, Options{AcceptTies: true})
	if err != nil {
		t.Fatal(err)
	}

	if strict.Improvements != 0 {
		t.Errorf("strict improvements = %d, want 0", strict.Improvements)
	}
	if ties.Improvements != 1 {
		t.Errorf("ties improvements = %d, want 1", ties.Improvements)
	}
	if strict.Cost != ties.Cost {
		t.Errorf("costs differ: %v vs %v", strict.Cost, ties.Cost)
	}
}

func TestRunWithNaiveHeuristic(t *testing.T) {
	start := plan.NewState(2, 6)

	zero, err := Run(context.Background(), start, Options{})
	if err != nil {
		t.Fatal(err)
	}
	h := heuristic.New(NaiveSolver)
	guided, err := Run(context.Background(), start, Options{Heuristic: h, AcceptTies: true})
	if err != nil {
		t.Fatal(err)
	}

	if !approxEqual(guided.Cost, zero.Cost) {
		t.Errorf("guided cost = %v, want %v", guided.Cost, zero.Cost)
	}
	if guided.Iterations >= zero.Iterations {
		t.Errorf("guided search took %d iterations, zero heuristic %d", guided.Iterations, zero.Iterations)
	}
	if h.Len() == 0 {
		t.Error("heuristic was never consulted")
	}
}

type recordingHooks struct {
	observability.NoopSearchHooks
	starts, progress int
	reasons          []string
}

func (h *recordingHooks) OnSearchStart(context.Context, string, string, float64) { h.starts++ }
func (h *recordingHooks) OnProgress(context.Context, observability.Progress)    { h.progress++ }
func (h *recordingHooks) OnSearchComplete(_ context.Context, _ observability.Progress, reason string) {
	h.reasons = append(h.reasons, reason)
}

func TestRunReportsAndDumps(t *testing.T) {
	hooks := &recordingHooks{}
	var snaps []dump.Snapshot
	sink := dump.SinkFunc(func(_ context.Context, s dump.Snapshot) error {
		snaps = append(snaps, s)
		return nil
	})

	res, err := Run(context.Background(), plan.NewState(2, 2), Options{
		ReportEvery: 1,
		Hooks:       hooks,
		Dump:        sink,
	})
	if err != nil {
		t.Fatal(err)
	}

	if hooks.starts != 1 || hooks.progress != res.Iterations {
		t.Errorf("starts=%d progress=%d, want 1 and %d", hooks.starts, hooks.progress, res.Iterations)
	}
	if !slices.Equal(hooks.reasons, []string{"exhausted"}) {
		t.Errorf("completion reasons = %v", hooks.reasons)
	}

	// One dump per report plus a final one.
	if len(snaps) != res.Iterations+1 {
		t.Fatalf("got %d snapshots, want %d", len(snaps), res.Iterations+1)
	}
	last := snaps[len(snaps)-1]
	if last.RunID != res.RunID || len(last.Plans) != res.Visited {
		t.Errorf("final snapshot run=%s plans=%d, want %s and %d", last.RunID, len(last.Plans), res.RunID, res.Visited)
	}
	if !slices.IsSorted(last.Plans) {
		t.Error("snapshot plans are not sorted")
	}
}

func TestStopString(t *testing.T) {
	tests := map[Stop]string{
		StopExhausted:     "exhausted",
		StopMaxIterations: "max-iterations",
		StopCanceled:      "canceled",
		Stop(9):           "Stop(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Stop(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
