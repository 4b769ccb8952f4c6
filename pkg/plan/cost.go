package plan

import (
	"fmt"
	"math"
)

// Heuristic supplies a provisional cost for a state that has not been
// decided yet.
type Heuristic interface {
	Estimate(state State) float64
}

// HeuristicFunc adapts a plain function to [Heuristic].
type HeuristicFunc func(State) float64

// Estimate calls f(state).
func (f HeuristicFunc) Estimate(state State) float64 { return f(state) }

// Zero is the heuristic that prices every pending state at zero. It never
// overestimates, so pruning against it is always admissible.
var Zero Heuristic = HeuristicFunc(func(State) float64 { return 0 })

// Cost is the expected number of throws needed to reach a solved state.
type Cost struct {
	Value float64 `json:"value"`
	// Estimated reports whether a heuristic was used for some pending state.
	Estimated bool `json:"estimated"`
}

// Finite reports whether the cost is a usable number. Plans that loop
// without ever making progress have an infinite or NaN cost.
func (c Cost) Finite() bool { return !math.IsInf(c.Value, 0) && !math.IsNaN(c.Value) }

func (c Cost) String() string {
	if c.Estimated {
		return fmt.Sprintf("~%g", c.Value)
	}
	return fmt.Sprintf("%g", c.Value)
}

// Cost evaluates the plan from its start state.
func (g *Graph) Cost(h Heuristic) Cost { return g.CostFrom(g.start, h) }

// ExactCost returns the plan's cost if it does not depend on any heuristic,
// that is, if every state reachable from the start is resolved.
func (g *Graph) ExactCost() (float64, bool) {
	c := g.Cost(Zero)
	if c.Estimated {
		return 0, false
	}
	return c.Value, true
}

// CostFrom evaluates the plan from state, which must be part of the plan.
// The graph is only read; repeated calls give identical results.
func (g *Graph) CostFrom(state State, h Heuristic) Cost {
	e := evaluator{graph: g, heuristic: h, resolving: make(map[State]struct{})}
	c := e.cost(state)
	if c.cyclic {
		panic(fmt.Sprintf("plan: unresolved cycle through %s", c.root))
	}
	return Cost{Value: c.b, Estimated: c.estimated}
}

// linearCost is a cost that may still depend on the unknown cost x of an
// open cycle's root: cost = a*x + b. Closed costs have cyclic false and
// their value in b.
type linearCost struct {
	estimated bool
	cyclic    bool
	root      State
	a, b      float64
}

func exact(v float64) linearCost     { return linearCost{b: v} }
func estimated(v float64) linearCost { return linearCost{estimated: true, b: v} }

// cycleStart is the cost of a state reached again while it is being
// resolved: exactly x.
func cycleStart(root State) linearCost {
	return linearCost{cyclic: true, root: root, a: 1}
}

// fold computes p*c + q for the enclosing state. If state is the open
// cycle's root, the equation x = p*(a*x + b) + q is solved for x.
func (c linearCost) fold(state State, p, q float64) linearCost {
	if !c.cyclic {
		c.b = p*c.b + q
		return c
	}
	if c.root != state {
		c.a, c.b = c.a*p, c.b*p+q
		return c
	}
	return linearCost{estimated: c.estimated, b: (c.b*p + q) / (1 - c.a*p)}
}

// evaluator carries one cost computation. resolving holds the throw/map
// states on the current evaluation path; meeting one of them again closes
// a cycle.
type evaluator struct {
	graph     *Graph
	heuristic Heuristic
	resolving map[State]struct{}
}

func (e *evaluator) cost(state State) linearCost {
	b, ok := e.graph.branches[state]
	if !ok {
		panic(fmt.Sprintf("plan: dangling reference to %s", state))
	}

	switch b.Kind {
	case BranchSolved:
		return exact(0)
	case BranchPending:
		return estimated(e.heuristic.Estimate(state))
	}

	if _, open := e.resolving[state]; open {
		return cycleStart(state)
	}
	e.resolving[state] = struct{}{}
	defer delete(e.resolving, state)

	switch b.Kind {
	case BranchThrow:
		return e.cost(b.Next).fold(state, 1, 1)

	case BranchMap:
		sub := e.graph.CostFrom(b.SubProblem, e.heuristic)
		if !b.HasRemaining {
			return linearCost{estimated: sub.Estimated, b: sub.Value}
		}
		ratio := float64(b.Units) / float64(state.Units)
		rest := e.cost(b.Remaining)
		c := rest.fold(state, 1-ratio, ratio*sub.Value)
		c.estimated = sub.Estimated || rest.estimated
		return c

	default:
		panic(fmt.Sprintf("plan: unknown branch kind %s at %s", b.Kind, state))
	}
}
